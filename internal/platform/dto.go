package platform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
)

// flexString decodes a JSON string or number into a string. The platform is
// inconsistent about whether ids are numeric.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

// flexInt decodes a JSON number or numeric string into an int64.
type flexInt struct {
	Value int64
	Set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		*f = flexInt{}
		return nil
	}
	n, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return fmt.Errorf("expected integer, got %q", string(s))
	}
	*f = flexInt{Value: n, Set: true}
	return nil
}

type commentDTO struct {
	File      string `json:"file"`
	LineRange string `json:"line_range"`
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	Text      string `json:"text"`
}

func (d commentDTO) toComment() (review.Comment, error) {
	typ, err := review.ParseType(d.Type)
	if err != nil {
		return review.Comment{}, err
	}
	sev, err := review.ParseSeverity(d.Severity)
	if err != nil {
		return review.Comment{}, err
	}

	var lines review.LineRange
	if strings.TrimSpace(d.LineRange) != "" {
		lines, err = review.ParseLineRange(d.LineRange)
		if err != nil {
			return review.Comment{}, err
		}
	}

	return review.Comment{
		File:     d.File,
		Lines:    lines,
		Type:     typ,
		Severity: sev,
		Text:     d.Text,
	}, nil
}

func commentToDTO(c review.Comment) commentDTO {
	return commentDTO{
		File:      c.File,
		LineRange: c.Lines.String(),
		Type:      string(c.Type),
		Severity:  string(c.Severity),
		Text:      c.Text,
	}
}

type giteaDTO struct {
	Enabled bool    `json:"enabled"`
	User    string  `json:"user"`
	Repo    string  `json:"repo"`
	PRID    flexInt `json:"pr_id"`
	WebURL  string  `json:"web_url"`
	PRURL   string  `json:"pr_url"`
}

type mergeRequestDTO struct {
	ID               flexString `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Type             string     `json:"mr_type"`
	Language         string     `json:"language"`
	ComplexityPoints int        `json:"complexity_points"`
	StackTags        []string   `json:"stack_tags"`
}

func (d mergeRequestDTO) toMergeRequest() review.MergeRequest {
	return review.MergeRequest{
		ID:               string(d.ID),
		Title:            d.Title,
		Description:      d.Description,
		Type:             d.Type,
		Language:         d.Language,
		ComplexityPoints: d.ComplexityPoints,
		StackTags:        d.StackTags,
	}
}

type sessionDTO struct {
	ID               flexInt          `json:"id"`
	SessionID        flexInt          `json:"session_id"`
	Status           string           `json:"status"`
	CandidateName    string           `json:"candidate_name"`
	ReviewerName     string           `json:"reviewer_name"`
	MRPackage        string           `json:"mr_package"`
	MRID             flexString       `json:"mr_id"`
	CreatedAt        string           `json:"created_at"`
	ExpiresAt        string           `json:"expires_at"`
	CandidateReadyAt string           `json:"candidate_ready_at"`
	DeletedAt        string           `json:"deleted_at"`
	AccessToken      string           `json:"access_token"`
	Comments         []commentDTO     `json:"comments"`
	Gitea            *giteaDTO        `json:"gitea"`
	MergeRequest     *mergeRequestDTO `json:"merge_request"`
}

// toSession converts the wire shape. The id is taken from "id" or
// "session_id"; a missing status means active. Comments with unknown enum
// values are dropped and reported through skipped.
func (d sessionDTO) toSession() (s review.Session, skipped []error, err error) {
	switch {
	case d.ID.Set:
		s.ID = d.ID.Value
	case d.SessionID.Set:
		s.ID = d.SessionID.Value
	default:
		return review.Session{}, nil, &MissingFieldError{Op: "decode session", Field: "id"}
	}

	s.Status = review.StatusActive
	if d.Status != "" {
		s.Status, err = review.ParseStatus(d.Status)
		if err != nil {
			return review.Session{}, nil, fmt.Errorf("decode session %d: %w", s.ID, err)
		}
	}

	s.CandidateName = d.CandidateName
	s.ReviewerName = d.ReviewerName
	s.MRPackage = d.MRPackage
	s.MRID = string(d.MRID)
	s.AccessToken = d.AccessToken
	s.RawCreatedAt = d.CreatedAt
	s.RawExpiresAt = d.ExpiresAt

	if d.CreatedAt != "" {
		if s.CreatedAt, err = sessionclock.ParseExpiry(d.CreatedAt); err != nil {
			return review.Session{}, nil, fmt.Errorf("decode session %d created_at: %w", s.ID, err)
		}
	}
	if s.ExpiresAt, err = optionalTime(d.ExpiresAt); err != nil {
		return review.Session{}, nil, fmt.Errorf("decode session %d expires_at: %w", s.ID, err)
	}
	if s.CandidateReadyAt, err = optionalTime(d.CandidateReadyAt); err != nil {
		return review.Session{}, nil, fmt.Errorf("decode session %d candidate_ready_at: %w", s.ID, err)
	}
	if s.DeletedAt, err = optionalTime(d.DeletedAt); err != nil {
		return review.Session{}, nil, fmt.Errorf("decode session %d deleted_at: %w", s.ID, err)
	}

	s.Comments = make([]review.Comment, 0, len(d.Comments))
	for i, cd := range d.Comments {
		c, cerr := cd.toComment()
		if cerr != nil {
			skipped = append(skipped, fmt.Errorf("comment %d: %w", i, cerr))
			continue
		}
		s.Comments = append(s.Comments, c)
	}

	if d.Gitea != nil {
		s.Gitea = &review.GiteaInfo{
			Enabled: d.Gitea.Enabled,
			User:    d.Gitea.User,
			Repo:    d.Gitea.Repo,
			PRID:    d.Gitea.PRID.Value,
			WebURL:  d.Gitea.WebURL,
			PRURL:   d.Gitea.PRURL,
		}
	}

	if d.MergeRequest != nil {
		mr := d.MergeRequest.toMergeRequest()
		s.MergeRequest = &review.MergeRequestInfo{
			ID:               mr.ID,
			Title:            mr.Title,
			Description:      mr.Description,
			Type:             mr.Type,
			ComplexityPoints: mr.ComplexityPoints,
			StackTags:        mr.StackTags,
		}
	}

	return s, skipped, nil
}

func optionalTime(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := sessionclock.ParseExpiry(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
