package platform

import (
	"context"
	"net/http"

	"github.com/hay-kot/reviewdesk/internal/core/review"
)

// CreatedPR is the result of opening the external pull request.
type CreatedPR struct {
	Number int64
	URL    string
}

type giteaUser struct {
	Login string `json:"login"`
}

type giteaCommentDTO struct {
	ID        int64     `json:"id"`
	User      giteaUser `json:"user"`
	Body      string    `json:"body"`
	Path      string    `json:"path"`
	Line      int       `json:"line"`
	Position  int       `json:"position"`
	CreatedAt string    `json:"created_at"`
}

func (d giteaCommentDTO) toPRComment() review.PRComment {
	line := d.Line
	if line == 0 {
		line = d.Position
	}
	return review.PRComment{
		ID:        d.ID,
		User:      d.User.Login,
		Body:      d.Body,
		Path:      d.Path,
		Line:      line,
		CreatedAt: d.CreatedAt,
	}
}

func giteaPath(id int64, op string) string {
	return sessionPath(id) + "/gitea/" + op
}

// CreatePR opens the pull request mirroring the session.
func (c *Client) CreatePR(ctx context.Context, id int64) (CreatedPR, error) {
	var resp struct {
		Status string  `json:"status"`
		PRID   flexInt `json:"pr_id"`
		PRURL  string  `json:"pr_url"`
	}
	if err := c.doJSON(ctx, http.MethodPost, giteaPath(id, "create-pr"), nil, nil, &resp); err != nil {
		return CreatedPR{}, err
	}
	if resp.PRURL == "" {
		return CreatedPR{}, &MissingFieldError{Op: "create pr", Field: "pr_url"}
	}
	return CreatedPR{Number: resp.PRID.Value, URL: resp.PRURL}, nil
}

// PullRequest fetches the pull request with its review and issue comments.
func (c *Client) PullRequest(ctx context.Context, id int64) (review.PullRequest, error) {
	var resp struct {
		PR struct {
			Number  int64  `json:"number"`
			Title   string `json:"title"`
			State   string `json:"state"`
			HTMLURL string `json:"html_url"`
		} `json:"pr"`
		Comments      []giteaCommentDTO `json:"comments"`
		IssueComments []giteaCommentDTO `json:"issue_comments"`
		Diff          string            `json:"diff"`
		PRURL         string            `json:"pr_url"`
	}
	if err := c.doJSON(ctx, http.MethodGet, giteaPath(id, "pr"), nil, nil, &resp); err != nil {
		return review.PullRequest{}, err
	}

	pr := review.PullRequest{
		Number:   resp.PR.Number,
		Title:    resp.PR.Title,
		State:    resp.PR.State,
		URL:      resp.PRURL,
		Diff:     resp.Diff,
		Comments: make([]review.PRComment, 0, len(resp.Comments)+len(resp.IssueComments)),
	}
	if pr.URL == "" {
		pr.URL = resp.PR.HTMLURL
	}
	for _, d := range resp.Comments {
		pr.Comments = append(pr.Comments, d.toPRComment())
	}
	for _, d := range resp.IssueComments {
		pr.Comments = append(pr.Comments, d.toPRComment())
	}
	return pr, nil
}

// PushComments copies platform comments onto the pull request.
func (c *Client) PushComments(ctx context.Context, id int64) (review.SyncResult, error) {
	return c.sync(ctx, giteaPath(id, "sync-comments"))
}

// PullComments imports pull request comments into the session.
func (c *Client) PullComments(ctx context.Context, id int64) (review.SyncResult, error) {
	return c.sync(ctx, giteaPath(id, "sync-comments-from-gitea"))
}

func (c *Client) sync(ctx context.Context, path string) (review.SyncResult, error) {
	var res review.SyncResult
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil, &res); err != nil {
		return review.SyncResult{}, err
	}
	return res, nil
}
