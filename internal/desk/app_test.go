package desk

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/hay-kot/reviewdesk/internal/core/countdown/countdowntest"
	"github.com/hay-kot/reviewdesk/internal/core/doctor"
	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_CountdownOptions(t *testing.T) {
	env := newTestEnv(t)

	opts := env.app.CountdownOptions()
	assert.Equal(t, time.Second, opts.Interval)
	assert.Equal(t, 2*time.Hour, opts.Window)
	assert.Equal(t, 10*time.Minute, opts.Thresholds.WarnBefore)
	assert.False(t, opts.RebaseOnExtend)

	env.app.Config.Session.RebaseWindow = true
	assert.True(t, env.app.CountdownOptions().RebaseOnExtend)
}

func TestApp_CountdownReadsCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.app.Sessions.Create(ctx, CreateInput{CandidateName: "Ada"})
	require.NoError(t, err)

	sched := countdowntest.NewScheduler(time.Now())
	fx := &countdowntest.Effects{}

	var last sessionclock.Snapshot
	cd := env.app.NewCountdown(sched, fx, func(s sessionclock.Snapshot) { last = s })
	cd.Bind(res.Session.IDString())

	require.True(t, last.Known)
	assert.InDelta(t, 100, last.Percent, 1)
	assert.Equal(t, sessionclock.BandGreen, last.Band)
}

func TestApp_Desktop(t *testing.T) {
	env := newTestEnv(t)
	env.app.Config.Effects.Sound = false

	var bell bytes.Buffer
	d := env.app.Desktop(&bell)
	d.Tick()
	assert.Empty(t, bell.String())
}

func TestApp_Doctor(t *testing.T) {
	env := newTestEnv(t)

	results := env.app.Doctor(context.Background(), "")
	require.Len(t, results, 4)

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Config", "Platform", "Storage", "Tools"}, names)

	_, _, failed := doctor.Summary(results)
	assert.Zero(t, failed)
}
