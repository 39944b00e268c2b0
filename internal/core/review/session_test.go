package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_EffectiveStatus(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		s    Session
		want Status
	}{
		{"active with time left", Session{Status: StatusActive, ExpiresAt: &future}, StatusActive},
		{"active past expiry", Session{Status: StatusActive, ExpiresAt: &past}, StatusExpired},
		{"active at expiry", Session{Status: StatusActive, ExpiresAt: &now}, StatusExpired},
		{"active without expiry", Session{Status: StatusActive}, StatusActive},
		{"finished stays finished", Session{Status: StatusFinished, ExpiresAt: &past}, StatusFinished},
		{"deleted wins", Session{Status: StatusActive, ExpiresAt: &future, DeletedAt: &past}, StatusDeleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.EffectiveStatus(now))
		})
	}
}

func TestSession_AcceptsComments(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)

	s := Session{Status: StatusActive, ExpiresAt: &future}
	assert.True(t, s.AcceptsComments(now))

	s.CandidateReadyAt = &now
	assert.False(t, s.AcceptsComments(now))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("finished")
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, st)

	_, err = ParseStatus("paused")
	assert.Error(t, err)
}

func TestRef(t *testing.T) {
	assert.Equal(t, "42", ByID(42).String())
	assert.Equal(t, "token:abc", ByToken("abc").String())
	assert.True(t, ByToken("abc").IsToken())
	assert.False(t, ByID(1).IsToken())
}

func TestGiteaInfo_URL(t *testing.T) {
	var g *GiteaInfo
	assert.Empty(t, g.URL())

	g = &GiteaInfo{WebURL: "https://git.example/r"}
	assert.Equal(t, "https://git.example/r", g.URL())

	g.PRURL = "https://git.example/r/pulls/3"
	assert.Equal(t, "https://git.example/r/pulls/3", g.URL())
}

func TestJob_Terminal(t *testing.T) {
	for _, st := range []JobStatus{JobFinished, JobFailed, JobStopped, JobCanceled} {
		assert.True(t, Job{Status: st}.Terminal(), st)
	}
	for _, st := range []JobStatus{JobQueued, JobStarted, JobDeferred, JobScheduled} {
		assert.False(t, Job{Status: st}.Terminal(), st)
	}

	_, err := ParseJobStatus("exploded")
	assert.Error(t, err)
}
