package desk

import (
	"context"
	"io"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/platform"
)

// API is the part of the platform client the services use.
type API interface {
	CreateSession(ctx context.Context, req platform.CreateSessionRequest) (review.Created, error)
	ListSessions(ctx context.Context) ([]review.Session, error)
	Fetch(ctx context.Context, ref review.Ref) (review.Session, error)
	ExtendSession(ctx context.Context, id int64) (string, error)
	FinishSession(ctx context.Context, id int64) (string, error)
	DeleteSession(ctx context.Context, id int64) error
	MarkReady(ctx context.Context, token string) (review.ReadyResult, error)
	AddComment(ctx context.Context, ref review.Ref, comment review.Comment) error
	AssignMRs(ctx context.Context, id int64, mrIDs []string) error

	Evaluate(ctx context.Context, id int64) (string, error)
	Job(ctx context.Context, jobID string) (review.Job, error)
	Diff(ctx context.Context, ref review.Ref) (string, error)
	Report(ctx context.Context, id int64) (string, error)
	ReportPDFURL(id int64) string
	UploadMR(ctx context.Context, filename string, r io.Reader) (review.Created, error)

	ListMRs(ctx context.Context, filter review.MRFilter) ([]review.MergeRequest, int, error)
	RecommendMRs(ctx context.Context, grade review.Grade, stackTags []string) ([]review.MergeRequest, error)

	CreatePR(ctx context.Context, id int64) (platform.CreatedPR, error)
	PullRequest(ctx context.Context, id int64) (review.PullRequest, error)
	PushComments(ctx context.Context, id int64) (review.SyncResult, error)
	PullComments(ctx context.Context, id int64) (review.SyncResult, error)

	Health(ctx context.Context) error
}

var _ API = (*platform.Client)(nil)
