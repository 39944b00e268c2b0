package desk

import (
	"context"
	"fmt"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/platform"
	"github.com/rs/zerolog"
)

// GiteaService mirrors sessions into pull requests on the external forge.
type GiteaService struct {
	api API
	log zerolog.Logger
}

// NewGiteaService creates a new GiteaService.
func NewGiteaService(api API, log zerolog.Logger) *GiteaService {
	return &GiteaService{api: api, log: log}
}

// CreatePR opens the pull request of a session.
func (g *GiteaService) CreatePR(ctx context.Context, id int64) (platform.CreatedPR, error) {
	pr, err := g.api.CreatePR(ctx, id)
	if err != nil {
		return platform.CreatedPR{}, fmt.Errorf("create pull request for session %d: %w", id, err)
	}
	g.log.Info().Int64("session_id", id).Int64("pr", pr.Number).Msg("pull request created")
	return pr, nil
}

// PullRequest returns the pull request of a session with its discussion.
func (g *GiteaService) PullRequest(ctx context.Context, id int64) (review.PullRequest, error) {
	pr, err := g.api.PullRequest(ctx, id)
	if err != nil {
		return review.PullRequest{}, fmt.Errorf("load pull request for session %d: %w", id, err)
	}
	return pr, nil
}

// Push copies platform comments onto the pull request.
func (g *GiteaService) Push(ctx context.Context, id int64) (review.SyncResult, error) {
	res, err := g.api.PushComments(ctx, id)
	if err != nil {
		return review.SyncResult{}, fmt.Errorf("push comments of session %d: %w", id, err)
	}
	g.logSync(id, "push", res)
	return res, nil
}

// Pull copies pull request comments back onto the session.
func (g *GiteaService) Pull(ctx context.Context, id int64) (review.SyncResult, error) {
	res, err := g.api.PullComments(ctx, id)
	if err != nil {
		return review.SyncResult{}, fmt.Errorf("pull comments of session %d: %w", id, err)
	}
	g.logSync(id, "pull", res)
	return res, nil
}

func (g *GiteaService) logSync(id int64, direction string, res review.SyncResult) {
	ev := g.log.Info()
	if len(res.Errors) > 0 {
		ev = g.log.Warn().Strs("errors", res.Errors)
	}
	ev.Int64("session_id", id).
		Str("direction", direction).
		Int("synced", res.Synced).
		Int("total", res.Total).
		Msg("comment sync")
}
