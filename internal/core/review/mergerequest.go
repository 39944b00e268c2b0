package review

import "fmt"

// Grade is the seniority a set of merge requests is recommended for.
type Grade string

const (
	GradeJunior Grade = "junior"
	GradeMiddle Grade = "middle"
	GradeSenior Grade = "senior"
)

func ParseGrade(s string) (Grade, error) {
	switch g := Grade(s); g {
	case GradeJunior, GradeMiddle, GradeSenior:
		return g, nil
	}
	return "", fmt.Errorf("grade must be junior, middle or senior, got %q", s)
}

// MergeRequest is an entry of the practice catalog.
type MergeRequest struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Type             string   `json:"mr_type"`
	Language         string   `json:"language,omitempty"`
	ComplexityPoints int      `json:"complexity_points"`
	StackTags        []string `json:"stack_tags,omitempty"`
}

// MRFilter narrows a catalog listing. Zero fields are not sent.
type MRFilter struct {
	Type          string
	MinComplexity int
	MaxComplexity int
	StackTag      string
	Limit         int
}

// PRComment is a comment as it exists on the external pull request.
type PRComment struct {
	ID        int64  `json:"id"`
	User      string `json:"user"`
	Body      string `json:"body"`
	Path      string `json:"path,omitempty"`
	Line      int    `json:"line,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// PullRequest is the external pull request and its discussion.
type PullRequest struct {
	Number   int64       `json:"number"`
	Title    string      `json:"title"`
	State    string      `json:"state"`
	URL      string      `json:"pr_url"`
	Comments []PRComment `json:"comments"`
	Diff     string      `json:"diff,omitempty"`
}

// SyncResult reports a comment sync run between the platform and the PR.
type SyncResult struct {
	Synced int      `json:"synced_count"`
	Total  int      `json:"total_count"`
	Errors []string `json:"errors,omitempty"`
}
