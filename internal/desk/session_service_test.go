package desk

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/hay-kot/reviewdesk/internal/core/eventbus"
	"github.com/hay-kot/reviewdesk/internal/core/eventbus/testbus"
	"github.com/hay-kot/reviewdesk/internal/core/expiry"
	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
	"github.com/hay-kot/reviewdesk/internal/core/validate"
	"github.com/hay-kot/reviewdesk/internal/platform"
	"github.com/hay-kot/reviewdesk/internal/platform/platformtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("blank name sends no request", func(t *testing.T) {
		env := newTestEnv(t)

		for _, name := range []string{"", "   "} {
			_, err := env.app.Sessions.Create(ctx, CreateInput{CandidateName: name})
			require.ErrorIs(t, err, validate.ErrInvalid)
		}
		assert.Empty(t, env.srv.Requests())
	})

	t.Run("caches the new session", func(t *testing.T) {
		env := newTestEnv(t)

		res, err := env.app.Sessions.Create(ctx, CreateInput{CandidateName: "  Ada "})
		require.NoError(t, err)
		require.NotNil(t, res.Session)
		assert.Equal(t, "Ada", res.Session.CandidateName)
		assert.Equal(t, "Reviewer", res.Session.ReviewerName, "reviewer defaults from config")
		assert.NotEmpty(t, res.AccessToken)

		entry, ok, err := env.app.Cache.Read(ctx, strconv.FormatInt(res.SessionID, 10))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, res.Session.RawExpiresAt, entry.ExpiresAt)
		assert.Equal(t, res.Session.RawCreatedAt, entry.CreatedAt)
	})

	t.Run("fetch failure still returns the created session", func(t *testing.T) {
		env := newTestEnv(t)
		env.srv.FailNext(http.MethodGet, "/api/reviewer/sessions/1", http.StatusInternalServerError, "boom")

		res, err := env.app.Sessions.Create(ctx, CreateInput{CandidateName: "Ada"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.SessionID)
		assert.Nil(t, res.Session)
	})
}

func TestFetch_ByToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})

	sess, err := env.app.Sessions.Fetch(ctx, review.ByToken(seeded.AccessToken))
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, sess.ID)

	raw, ok, err := env.app.Cache.ExpiresAt(ctx, sess.IDString())
	require.NoError(t, err)
	require.True(t, ok)

	exp, err := sessionclock.ParseExpiry(raw)
	require.NoError(t, err)
	assert.WithinDuration(t, seeded.ExpiresAt, exp, time.Millisecond)
}

func TestFetch_UnknownToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.app.Sessions.Fetch(context.Background(), review.ByToken("nope"))
	require.ErrorIs(t, err, review.ErrNotFound)
}

func TestExtend(t *testing.T) {
	ctx := context.Background()

	t.Run("writes through before acknowledging", func(t *testing.T) {
		env := newTestEnv(t)
		tb := testbus.New(t)
		env.app.Sessions.bus = tb.EventBus

		seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})
		before := seeded.ExpiresAt
		require.NoError(t, env.app.Cache.Write(ctx, "1", expiry.Entry{ExpiresAt: "2020-01-01T00:00:00", CreatedAt: "2020-01-01T00:00:00"}))

		exp, err := env.app.Sessions.Extend(ctx, seeded.ID)
		require.NoError(t, err)
		assert.WithinDuration(t, before.Add(30*time.Minute), exp, time.Millisecond)

		entry, ok, err := env.app.Cache.Read(ctx, "1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "2020-01-01T00:00:00", entry.CreatedAt, "created_at kept")

		cached, err := sessionclock.ParseExpiry(entry.ExpiresAt)
		require.NoError(t, err)
		assert.True(t, cached.Equal(exp))

		tb.AssertPublished(t, eventbus.EventSessionExtended)
		raw, _ := tb.Last(eventbus.EventSessionExtended)
		assert.Equal(t, entry.ExpiresAt, raw.(eventbus.SessionExtendedPayload).ExpiresAt)
	})

	t.Run("missing expiry leaves cache unchanged", func(t *testing.T) {
		env := newTestEnv(t)
		seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})
		env.srv.OmitExtendExpiry(true)

		original := expiry.Entry{ExpiresAt: "2025-01-01T12:00:00", CreatedAt: "2025-01-01T10:00:00"}
		require.NoError(t, env.app.Cache.Write(ctx, "1", original))

		_, err := env.app.Sessions.Extend(ctx, seeded.ID)
		require.Error(t, err)
		assert.True(t, platform.IsMissingField(err, "expires_at"))

		entry, _, err := env.app.Cache.Read(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, original, entry)
	})

	t.Run("server error leaves cache unchanged", func(t *testing.T) {
		env := newTestEnv(t)
		seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})
		env.srv.FailNext(http.MethodPost, "/api/sessions/1/extend", http.StatusInternalServerError, "locked")

		_, err := env.app.Sessions.Extend(ctx, seeded.ID)
		require.Error(t, err)

		_, ok, err := env.app.Cache.Read(ctx, "1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("two windows see the same expiry", func(t *testing.T) {
		env := newTestEnv(t)
		seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})

		other := NewApp(env.app.API, env.app.Config, env.app.DB, nil, env.app.Exec)

		_, err := env.app.Sessions.Extend(ctx, seeded.ID)
		require.NoError(t, err)
		_, err = other.Sessions.Extend(ctx, seeded.ID)
		require.NoError(t, err)

		stored, _ := env.srv.Session(seeded.ID)
		raw, ok, err := env.app.Cache.ExpiresAt(ctx, "1")
		require.NoError(t, err)
		require.True(t, ok)
		exp, err := sessionclock.ParseExpiry(raw)
		require.NoError(t, err)
		assert.WithinDuration(t, stored.ExpiresAt, exp, time.Millisecond, "last write wins")
	})
}

func TestFinish_ForcesExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})
	_, err := env.app.Sessions.Fetch(ctx, review.ByID(seeded.ID))
	require.NoError(t, err)

	finishedAt, err := env.app.Sessions.Finish(ctx, seeded.ID)
	require.NoError(t, err)

	raw, ok, err := env.app.Cache.ExpiresAt(ctx, "1")
	require.NoError(t, err)
	require.True(t, ok)

	snap := sessionclock.Compute(raw, finishedAt.Add(time.Second), 0)
	assert.True(t, snap.Expired())
}

func TestDelete_ForgetsCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})
	_, err := env.app.Sessions.Fetch(ctx, review.ByID(seeded.ID))
	require.NoError(t, err)

	require.NoError(t, env.app.Sessions.Delete(ctx, seeded.ID))

	_, ok, err := env.app.Cache.Read(ctx, "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkReady_Twice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})

	first, err := env.app.Sessions.MarkReady(ctx, seeded.AccessToken)
	require.NoError(t, err)
	assert.False(t, first.AlreadyReady)

	second, err := env.app.Sessions.MarkReady(ctx, seeded.AccessToken)
	require.NoError(t, err)
	assert.True(t, second.AlreadyReady)
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	valid := review.Comment{
		Lines:    review.LineRange{Start: 3, End: 5},
		Type:     review.TypeBug,
		Severity: review.SeverityHigh,
		Text:     "off by one",
	}

	tests := []struct {
		name    string
		mutate  func(*review.Comment)
		wantErr bool
	}{
		{name: "valid with default file", mutate: func(*review.Comment) {}},
		{name: "blank text", mutate: func(c *review.Comment) { c.Text = "  " }, wantErr: true},
		{name: "unset range", mutate: func(c *review.Comment) { c.Lines = review.LineRange{} }, wantErr: true},
		{name: "unknown type", mutate: func(c *review.Comment) { c.Type = "typo" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})

			c := valid
			tt.mutate(&c)

			got, err := env.app.Sessions.AddComment(ctx, review.ByToken(seeded.AccessToken), c)
			if tt.wantErr {
				require.ErrorIs(t, err, validate.ErrInvalid)
				assert.Zero(t, env.srv.Count(http.MethodPost, "/api/candidate/sessions/"+seeded.AccessToken+"/comments"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "main.py", got.File)

			comments, err := env.app.Sessions.Comments(ctx, review.ByID(seeded.ID))
			require.NoError(t, err)
			require.Len(t, comments, 1)
			assert.Equal(t, "3-5", comments[0].Lines.String())
		})
	}
}

func TestPollJob(t *testing.T) {
	ctx := context.Background()

	t.Run("reports every state until terminal", func(t *testing.T) {
		env := newTestEnv(t)
		seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})

		jobID, err := env.app.Sessions.Evaluate(ctx, seeded.ID)
		require.NoError(t, err)

		var seen []review.JobStatus
		job, err := env.app.Sessions.PollJob(ctx, jobID, func(j review.Job) { seen = append(seen, j.Status) })
		require.NoError(t, err)
		assert.Equal(t, review.JobFinished, job.Status)
		assert.Equal(t, []review.JobStatus{review.JobQueued, review.JobStarted, review.JobFinished}, seen)
	})

	t.Run("transient errors keep polling", func(t *testing.T) {
		env := newTestEnv(t)
		seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})
		jobID, err := env.app.Sessions.Evaluate(ctx, seeded.ID)
		require.NoError(t, err)

		env.srv.FailNext(http.MethodGet, "/api/jobs/"+jobID, http.StatusBadGateway, "upstream")

		job, err := env.app.Sessions.PollJob(ctx, jobID, nil)
		require.NoError(t, err)
		assert.True(t, job.Terminal())
	})

	t.Run("max attempts", func(t *testing.T) {
		env := newTestEnv(t)
		env.srv.JobSteps = []string{"queued"}
		env.app.Config.Jobs.MaxAttempts = 3
		seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})
		jobID, err := env.app.Sessions.Evaluate(ctx, seeded.ID)
		require.NoError(t, err)

		_, err = env.app.Sessions.PollJob(ctx, jobID, nil)
		require.ErrorIs(t, err, ErrPollExhausted)
		assert.Equal(t, 3, env.srv.Count(http.MethodGet, "/api/jobs/"+jobID))
	})

	t.Run("unknown job stops", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.app.Sessions.PollJob(ctx, "job-missing", nil)
		require.ErrorIs(t, err, review.ErrNotFound)
	})
}

func TestEvaluateReport(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the report", func(t *testing.T) {
		env := newTestEnv(t)
		seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})

		report, err := env.app.Sessions.EvaluateReport(ctx, seeded.ID, nil)
		require.NoError(t, err)
		assert.Contains(t, report, "Candidate: Ada")
	})

	t.Run("failed job", func(t *testing.T) {
		env := newTestEnv(t)
		env.srv.JobSteps = []string{"started", "failed"}
		seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})

		_, err := env.app.Sessions.EvaluateReport(ctx, seeded.ID, nil)
		var jobErr *JobFailedError
		require.True(t, errors.As(err, &jobErr))
		assert.Equal(t, review.JobFailed, jobErr.Status)
	})
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "package.zip")
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04"), 0o644))

	created, err := env.app.Sessions.Upload(ctx, path)
	require.NoError(t, err)
	assert.Positive(t, created.SessionID)

	_, err = env.app.Sessions.Upload(ctx, filepath.Join(t.TempDir(), "missing.zip"))
	require.Error(t, err)
}

func TestReportPDFURL(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, env.srv.URL+"/api/reviewer/sessions/4/report/pdf", env.app.Sessions.ReportPDFURL(4))
}
