package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hay-kot/reviewdesk/internal/core/review"
)

// CreateSessionRequest is the body of a session create call.
type CreateSessionRequest struct {
	CandidateName string   `json:"candidate_name"`
	MRPackage     string   `json:"mr_package"`
	ReviewerName  string   `json:"reviewer_name"`
	MRIDs         []string `json:"mr_ids,omitempty"`
}

func sessionPath(id int64) string {
	return fmt.Sprintf("/reviewer/sessions/%d", id)
}

func candidatePath(token string) string {
	return "/candidate/sessions/" + url.PathEscape(token)
}

// CreateSession creates a session and returns its id and tokens.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (review.Created, error) {
	var resp struct {
		SessionID     flexInt `json:"session_id"`
		ID            flexInt `json:"id"`
		AccessToken   string  `json:"access_token"`
		ReviewerToken string  `json:"reviewer_token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/reviewer/sessions", nil, req, &resp); err != nil {
		return review.Created{}, err
	}

	id := resp.SessionID
	if !id.Set {
		id = resp.ID
	}
	if !id.Set {
		return review.Created{}, &MissingFieldError{Op: "create session", Field: "session_id"}
	}

	return review.Created{
		SessionID:     id.Value,
		AccessToken:   resp.AccessToken,
		ReviewerToken: resp.ReviewerToken,
	}, nil
}

// ListSessions returns the reviewer's sessions.
func (c *Client) ListSessions(ctx context.Context) ([]review.Session, error) {
	var resp struct {
		Sessions []sessionDTO `json:"sessions"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/reviewer/sessions", nil, nil, &resp); err != nil {
		return nil, err
	}

	sessions := make([]review.Session, 0, len(resp.Sessions))
	for _, d := range resp.Sessions {
		s, err := c.convertSession(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// GetSession fetches a session by id. A missing session yields ErrNotFound.
func (c *Client) GetSession(ctx context.Context, id int64) (review.Session, error) {
	var d sessionDTO
	if err := c.doJSON(ctx, http.MethodGet, sessionPath(id), nil, nil, &d); err != nil {
		return review.Session{}, err
	}
	return c.convertSession(ctx, d)
}

// GetCandidateSession fetches a session by access token.
func (c *Client) GetCandidateSession(ctx context.Context, token string) (review.Session, error) {
	var d sessionDTO
	if err := c.doJSON(ctx, http.MethodGet, candidatePath(token), nil, nil, &d); err != nil {
		return review.Session{}, err
	}
	s, err := c.convertSession(ctx, d)
	if err != nil {
		return review.Session{}, err
	}
	if s.AccessToken == "" {
		s.AccessToken = token
	}
	return s, nil
}

// Fetch resolves a reference to a session using the matching endpoint.
func (c *Client) Fetch(ctx context.Context, ref review.Ref) (review.Session, error) {
	if ref.IsToken() {
		return c.GetCandidateSession(ctx, ref.Token)
	}
	return c.GetSession(ctx, ref.ID)
}

func (c *Client) convertSession(ctx context.Context, d sessionDTO) (review.Session, error) {
	s, skipped, err := d.toSession()
	if err != nil {
		return review.Session{}, err
	}
	for _, serr := range skipped {
		c.log.Warn().Ctx(ctx).Err(serr).Int64("session_id", s.ID).Msg("dropped comment with unknown values")
	}
	return s, nil
}

// ExtendSession asks the platform for more time and returns the new raw
// expiry. A reply without expires_at is a MissingFieldError.
func (c *Client) ExtendSession(ctx context.Context, id int64) (string, error) {
	var resp struct {
		Status    string `json:"status"`
		ExpiresAt string `json:"expires_at"`
	}
	path := fmt.Sprintf("/sessions/%d/extend", id)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil, &resp); err != nil {
		return "", err
	}
	if resp.ExpiresAt == "" {
		return "", &MissingFieldError{Op: "extend session", Field: "expires_at"}
	}
	return resp.ExpiresAt, nil
}

// FinishSession ends a session and returns the raw finish time.
func (c *Client) FinishSession(ctx context.Context, id int64) (string, error) {
	var resp struct {
		Status     string `json:"status"`
		FinishedAt string `json:"finished_at"`
	}
	if err := c.doJSON(ctx, http.MethodPost, sessionPath(id)+"/finish", nil, nil, &resp); err != nil {
		return "", err
	}
	if resp.FinishedAt == "" {
		return "", &MissingFieldError{Op: "finish session", Field: "finished_at"}
	}
	return resp.FinishedAt, nil
}

// DeleteSession soft deletes a session on the platform.
func (c *Client) DeleteSession(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, sessionPath(id), nil, nil, nil)
}

// MarkReady signals the candidate is done. Marking twice is not an error.
func (c *Client) MarkReady(ctx context.Context, token string) (review.ReadyResult, error) {
	var resp struct {
		Status  string `json:"status"`
		ReadyAt string `json:"ready_at"`
	}
	if err := c.doJSON(ctx, http.MethodPost, candidatePath(token)+"/ready", nil, nil, &resp); err != nil {
		return review.ReadyResult{}, err
	}

	readyAt, err := optionalTime(resp.ReadyAt)
	if err != nil {
		return review.ReadyResult{}, fmt.Errorf("mark ready: ready_at: %w", err)
	}

	switch resp.Status {
	case "ready":
		return review.ReadyResult{ReadyAt: readyAt}, nil
	case "already_ready":
		return review.ReadyResult{AlreadyReady: true, ReadyAt: readyAt}, nil
	case "":
		return review.ReadyResult{}, &MissingFieldError{Op: "mark ready", Field: "status"}
	}
	return review.ReadyResult{}, fmt.Errorf("mark ready: unexpected status %q", resp.Status)
}

// AssignMRs replaces the merge requests a session reviews.
func (c *Client) AssignMRs(ctx context.Context, id int64, mrIDs []string) error {
	body := struct {
		MRIDs []string `json:"mr_ids"`
	}{MRIDs: mrIDs}
	return c.doJSON(ctx, http.MethodPut, sessionPath(id)+"/mrs", nil, body, nil)
}

// Health checks the platform is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", nil, nil, nil)
}
