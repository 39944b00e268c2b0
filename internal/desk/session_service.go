package desk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hay-kot/reviewdesk/internal/core/config"
	"github.com/hay-kot/reviewdesk/internal/core/eventbus"
	"github.com/hay-kot/reviewdesk/internal/core/expiry"
	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
	"github.com/hay-kot/reviewdesk/internal/core/validate"
	"github.com/hay-kot/reviewdesk/internal/platform"
	"github.com/rs/zerolog"
)

// ErrPollExhausted is returned by PollJob when jobs.max_attempts polls did
// not reach a terminal status.
var ErrPollExhausted = errors.New("job did not finish in time")

// JobFailedError is returned when an evaluation job ends without a report.
type JobFailedError struct {
	JobID  string
	Status review.JobStatus
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("evaluation job %s ended with status %s", e.JobID, e.Status)
}

// CreateInput configures session creation. Blank MRPackage and ReviewerName
// fall back to the reviewer section of the config.
type CreateInput struct {
	CandidateName string
	MRPackage     string
	ReviewerName  string
	MRIDs         []string
}

// CreateResult is a created session. Session is nil when the follow-up
// fetch failed; the session exists on the platform either way.
type CreateResult struct {
	review.Created
	Session *review.Session
}

// SessionService runs session lifecycle operations against the platform
// and keeps the shared expiry cache in step with every response that
// carries an expiry.
type SessionService struct {
	api    API
	cache  *expiry.Cache
	bus    *eventbus.EventBus
	config *config.Config
	log    zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewSessionService creates a new SessionService. bus may be nil.
func NewSessionService(api API, cache *expiry.Cache, bus *eventbus.EventBus, cfg *config.Config, log zerolog.Logger) *SessionService {
	return &SessionService{
		api:    api,
		cache:  cache,
		bus:    bus,
		config: cfg,
		log:    log,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Create validates the candidate name, creates the session and caches its
// expiry. A blank name fails before any request is sent.
func (s *SessionService) Create(ctx context.Context, in CreateInput) (CreateResult, error) {
	if err := validate.CandidateName(in.CandidateName); err != nil {
		return CreateResult{}, err
	}

	req := platform.CreateSessionRequest{
		CandidateName: strings.TrimSpace(in.CandidateName),
		MRPackage:     in.MRPackage,
		ReviewerName:  in.ReviewerName,
		MRIDs:         in.MRIDs,
	}
	if req.MRPackage == "" {
		req.MRPackage = s.config.Reviewer.MRPackage
	}
	if req.ReviewerName == "" {
		req.ReviewerName = s.config.Reviewer.Name
	}

	s.log.Info().Str("candidate", req.CandidateName).Str("mr_package", req.MRPackage).Msg("creating session")

	created, err := s.api.CreateSession(ctx, req)
	if err != nil {
		return CreateResult{}, fmt.Errorf("create session: %w", err)
	}

	result := CreateResult{Created: created}
	sess, err := s.Fetch(ctx, review.ByID(created.SessionID))
	if err != nil {
		s.log.Warn().Err(err).Int64("session_id", created.SessionID).Msg("fetch after create failed")
	} else {
		result.Session = &sess
	}

	s.publish(func(bus *eventbus.EventBus) {
		bus.PublishSessionCreated(eventbus.SessionCreatedPayload{Created: created})
	})
	return result, nil
}

// Fetch loads a session and refreshes its cache entry when the response
// carries an expiry.
func (s *SessionService) Fetch(ctx context.Context, ref review.Ref) (review.Session, error) {
	sess, err := s.api.Fetch(ctx, ref)
	if err != nil {
		return review.Session{}, fmt.Errorf("load session %s: %w", ref, err)
	}

	if sess.RawExpiresAt != "" {
		entry := expiry.Entry{ExpiresAt: sess.RawExpiresAt, CreatedAt: sess.RawCreatedAt}
		if err := s.cache.Write(ctx, sess.IDString(), entry); err != nil {
			s.log.Warn().Err(err).Int64("session_id", sess.ID).Msg("expiry cache write failed")
		}
	}
	return sess, nil
}

// List returns the reviewer's sessions, newest first. Listing does not
// touch the cache.
func (s *SessionService) List(ctx context.Context) ([]review.Session, error) {
	sessions, err := s.api.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Extend adds time to a session. The new expiry is written to the cache
// before the extend is acknowledged to in-process listeners. A reply
// without a usable expiry leaves the cache untouched and is an error.
func (s *SessionService) Extend(ctx context.Context, id int64) (time.Time, error) {
	raw, err := s.api.ExtendSession(ctx, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("extend session %d: %w", id, err)
	}

	exp, err := sessionclock.ParseExpiry(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("extend session %d: %w", id, err)
	}

	if err := s.cache.MergeExpiry(ctx, cacheKey(id), raw); err != nil {
		return time.Time{}, err
	}

	s.log.Info().Int64("session_id", id).Time("expires_at", exp).Msg("session extended")
	s.publish(func(bus *eventbus.EventBus) {
		bus.PublishSessionExtended(eventbus.SessionExtendedPayload{SessionID: id, ExpiresAt: raw})
	})
	return exp, nil
}

// Finish ends a session early. finished_at is cached as the expiry so every
// open view reaches zero on its next tick.
func (s *SessionService) Finish(ctx context.Context, id int64) (time.Time, error) {
	raw, err := s.api.FinishSession(ctx, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("finish session %d: %w", id, err)
	}

	var finishedAt time.Time
	if raw != "" {
		finishedAt, err = sessionclock.ParseExpiry(raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("finish session %d: %w", id, err)
		}
		if err := s.cache.MergeExpiry(ctx, cacheKey(id), raw); err != nil {
			return time.Time{}, err
		}
	}

	s.publish(func(bus *eventbus.EventBus) {
		bus.PublishSessionFinished(eventbus.SessionFinishedPayload{SessionID: id, FinishedAt: raw})
	})
	return finishedAt, nil
}

// Delete removes a session and forgets its cache entry.
func (s *SessionService) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}
	if err := s.cache.Forget(ctx, cacheKey(id)); err != nil {
		s.log.Warn().Err(err).Int64("session_id", id).Msg("expiry cache forget failed")
	}

	s.publish(func(bus *eventbus.EventBus) {
		bus.PublishSessionDeleted(eventbus.SessionDeletedPayload{SessionID: id})
	})
	return nil
}

// MarkReady signals that the candidate is done. Marking a session that is
// already ready succeeds.
func (s *SessionService) MarkReady(ctx context.Context, token string) (review.ReadyResult, error) {
	res, err := s.api.MarkReady(ctx, token)
	if err != nil {
		return review.ReadyResult{}, fmt.Errorf("mark ready: %w", err)
	}

	s.publish(func(bus *eventbus.EventBus) {
		bus.PublishSessionReady(eventbus.SessionReadyPayload{Token: token, AlreadyReady: res.AlreadyReady})
	})
	return res, nil
}

// AddComment submits a comment. A blank file takes the configured default;
// blank text, an unset range or unknown enums fail before the request.
func (s *SessionService) AddComment(ctx context.Context, ref review.Ref, c review.Comment) (review.Comment, error) {
	c.Text = strings.TrimSpace(c.Text)
	if strings.TrimSpace(c.File) == "" {
		c.File = s.config.Candidate.DefaultFile
	}

	if err := validate.CommentInput(c); err != nil {
		return review.Comment{}, err
	}

	if err := s.api.AddComment(ctx, ref, c); err != nil {
		return review.Comment{}, fmt.Errorf("add comment: %w", err)
	}

	s.publish(func(bus *eventbus.EventBus) {
		bus.PublishCommentAdded(eventbus.CommentAddedPayload{Ref: ref, Comment: c})
	})
	return c, nil
}

// Comments returns the current comments of a session.
func (s *SessionService) Comments(ctx context.Context, ref review.Ref) ([]review.Comment, error) {
	sess, err := s.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return sess.Comments, nil
}

// Diff returns the unified diff of a session.
func (s *SessionService) Diff(ctx context.Context, ref review.Ref) (string, error) {
	diff, err := s.api.Diff(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("load diff: %w", err)
	}
	return diff, nil
}

// Report returns the evaluation report text of a session.
func (s *SessionService) Report(ctx context.Context, id int64) (string, error) {
	text, err := s.api.Report(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load report for session %d: %w", id, err)
	}
	return text, nil
}

// ReportPDFURL returns the link to the PDF report.
func (s *SessionService) ReportPDFURL(id int64) string {
	return s.api.ReportPDFURL(id)
}

// Evaluate queues an evaluation and returns the job id.
func (s *SessionService) Evaluate(ctx context.Context, id int64) (string, error) {
	jobID, err := s.api.Evaluate(ctx, id)
	if err != nil {
		return "", fmt.Errorf("evaluate session %d: %w", id, err)
	}
	s.log.Info().Int64("session_id", id).Str("job_id", jobID).Msg("evaluation queued")
	return jobID, nil
}

// PollJob polls a job every jobs.poll_interval until it reaches a terminal
// status. onUpdate, when set, sees every observed state. Transient errors
// are logged and polling continues; an unknown job id stops it.
func (s *SessionService) PollJob(ctx context.Context, jobID string, onUpdate func(review.Job)) (review.Job, error) {
	interval := s.config.Jobs.PollInterval
	maxAttempts := s.config.Jobs.MaxAttempts

	for attempt := 1; ; attempt++ {
		job, err := s.api.Job(ctx, jobID)
		switch {
		case err == nil:
			if onUpdate != nil {
				onUpdate(job)
			}
			if job.Terminal() {
				return job, nil
			}
		case platform.IsNotFound(err):
			return review.Job{}, fmt.Errorf("poll job %s: %w", jobID, err)
		case ctx.Err() != nil:
			return review.Job{}, ctx.Err()
		default:
			s.log.Warn().Err(err).Str("job_id", jobID).Int("attempt", attempt).Msg("job poll failed")
		}

		if maxAttempts > 0 && attempt >= maxAttempts {
			return review.Job{}, fmt.Errorf("poll job %s after %d attempts: %w", jobID, attempt, ErrPollExhausted)
		}
		if err := s.sleep(ctx, interval); err != nil {
			return review.Job{}, err
		}
	}
}

// EvaluateReport queues an evaluation, waits for it and returns the report.
func (s *SessionService) EvaluateReport(ctx context.Context, id int64, onUpdate func(review.Job)) (string, error) {
	jobID, err := s.Evaluate(ctx, id)
	if err != nil {
		return "", err
	}

	job, err := s.PollJob(ctx, jobID, onUpdate)
	if err != nil {
		return "", err
	}
	if !job.Succeeded() {
		return "", &JobFailedError{JobID: jobID, Status: job.Status}
	}

	return s.Report(ctx, id)
}

// Upload sends a zipped merge request package and returns the session
// created for it.
func (s *SessionService) Upload(ctx context.Context, path string) (review.Created, error) {
	f, err := os.Open(path)
	if err != nil {
		return review.Created{}, fmt.Errorf("open package: %w", err)
	}
	defer func() { _ = f.Close() }()

	created, err := s.api.UploadMR(ctx, filepath.Base(path), f)
	if err != nil {
		return review.Created{}, fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	return created, nil
}

func (s *SessionService) publish(fn func(*eventbus.EventBus)) {
	if s.bus != nil {
		fn(s.bus)
	}
}
