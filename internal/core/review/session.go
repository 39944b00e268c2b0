// Package review holds the domain model of a review session as the client
// sees it: a cached projection of server state.
package review

import (
	"errors"
	"strconv"
	"time"
)

// ErrNotFound is returned when a session id or access token does not
// resolve to a live session.
var ErrNotFound = errors.New("session not found")

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
	StatusExpired  Status = "expired"
	StatusDeleted  Status = "deleted"
)

// ParseStatus validates a status string from the wire.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusFinished, StatusExpired, StatusDeleted:
		return st, nil
	}
	return "", &UnknownValueError{Kind: "status", Value: s}
}

// Session is the client's projection of a server-owned review session.
type Session struct {
	ID               int64             `json:"id"`
	Status           Status            `json:"status"`
	CandidateName    string            `json:"candidate_name"`
	ReviewerName     string            `json:"reviewer_name"`
	MRPackage        string            `json:"mr_package"`
	MRID             string            `json:"mr_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	ExpiresAt        *time.Time        `json:"expires_at,omitempty"`
	CandidateReadyAt *time.Time        `json:"candidate_ready_at,omitempty"`
	DeletedAt        *time.Time        `json:"deleted_at,omitempty"`
	AccessToken      string            `json:"access_token,omitempty"`
	Comments         []Comment         `json:"comments"`
	Gitea            *GiteaInfo        `json:"gitea,omitempty"`
	MergeRequest     *MergeRequestInfo `json:"merge_request,omitempty"`

	// RawExpiresAt is the expiry exactly as the server sent it. It is what
	// the expiry cache stores so every window normalizes it the same way.
	RawExpiresAt string `json:"-"`
	RawCreatedAt string `json:"-"`
}

// IDString is the session id in the form used for cache keys and paths.
func (s *Session) IDString() string {
	return strconv.FormatInt(s.ID, 10)
}

// EffectiveStatus derives expired/deleted from timestamps the server may not
// have folded into status yet.
func (s *Session) EffectiveStatus(now time.Time) Status {
	switch {
	case s.DeletedAt != nil:
		return StatusDeleted
	case s.Status == StatusActive && s.ExpiresAt != nil && !now.Before(*s.ExpiresAt):
		return StatusExpired
	}
	return s.Status
}

// IsReady reports whether the candidate has signalled they are done.
func (s *Session) IsReady() bool {
	return s.CandidateReadyAt != nil
}

// AcceptsComments reports whether the candidate may still add comments.
func (s *Session) AcceptsComments(now time.Time) bool {
	return !s.IsReady() && s.EffectiveStatus(now) == StatusActive
}

// GiteaInfo is the optional external pull request metadata.
type GiteaInfo struct {
	Enabled bool   `json:"enabled"`
	User    string `json:"user,omitempty"`
	Repo    string `json:"repo,omitempty"`
	PRID    int64  `json:"pr_id,omitempty"`
	WebURL  string `json:"web_url,omitempty"`
	PRURL   string `json:"pr_url,omitempty"`
}

// URL returns the best link to the pull request page.
func (g *GiteaInfo) URL() string {
	if g == nil {
		return ""
	}
	if g.PRURL != "" {
		return g.PRURL
	}
	return g.WebURL
}

// MergeRequestInfo describes the merge request a session reviews.
type MergeRequestInfo struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Type             string   `json:"mr_type,omitempty"`
	ComplexityPoints int      `json:"complexity_points,omitempty"`
	StackTags        []string `json:"stack_tags,omitempty"`
}

// Ref addresses a session either by id (reviewer) or by access token
// (candidate). Exactly one field is set.
type Ref struct {
	ID    int64
	Token string
}

// ByID returns a reviewer reference.
func ByID(id int64) Ref { return Ref{ID: id} }

// ByToken returns a candidate reference.
func ByToken(token string) Ref { return Ref{Token: token} }

func (r Ref) IsToken() bool { return r.Token != "" }

func (r Ref) String() string {
	if r.IsToken() {
		return "token:" + r.Token
	}
	return strconv.FormatInt(r.ID, 10)
}

// Created is the result of creating a session.
type Created struct {
	SessionID     int64  `json:"session_id"`
	AccessToken   string `json:"access_token"`
	ReviewerToken string `json:"reviewer_token,omitempty"`
}

// ReadyResult is the outcome of marking a session ready.
type ReadyResult struct {
	AlreadyReady bool
	ReadyAt      *time.Time
}
