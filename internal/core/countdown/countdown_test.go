package countdown_test

import (
	"context"
	"testing"
	"time"

	"github.com/hay-kot/reviewdesk/internal/core/countdown"
	"github.com/hay-kot/reviewdesk/internal/core/countdown/countdowntest"
	"github.com/hay-kot/reviewdesk/internal/core/expiry"
	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
	"github.com/hay-kot/reviewdesk/internal/data/db"
	"github.com/hay-kot/reviewdesk/internal/data/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func iso(t time.Time) string { return t.UTC().Format("2006-01-02T15:04:05") }

func openCache(t *testing.T, dir string) *expiry.Cache {
	t.Helper()
	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return expiry.NewCache(stores.NewKVStore(database))
}

type view struct {
	cd    *countdown.Countdown
	fx    *countdowntest.Effects
	shown []sessionclock.Snapshot
}

func newView(src countdown.Source, sched countdown.Scheduler, rebase bool) *view {
	v := &view{fx: &countdowntest.Effects{}}
	v.cd = countdown.New(src, sched, v.fx, countdown.Options{
		Interval:       time.Second,
		Window:         2 * time.Hour,
		RebaseOnExtend: rebase,
	}, func(s sessionclock.Snapshot) { v.shown = append(v.shown, s) })
	return v
}

func (v *view) current() sessionclock.Snapshot { return v.shown[len(v.shown)-1] }

func TestCountdown_FreshSessionIsFullAndGreen(t *testing.T) {
	ctx := context.Background()
	cache := openCache(t, t.TempDir())
	sched := countdowntest.NewScheduler(t0)

	require.NoError(t, cache.Write(ctx, "1", expiry.Entry{ExpiresAt: iso(t0.Add(2 * time.Hour)), CreatedAt: iso(t0)}))

	v := newView(cache, sched, true)
	v.cd.Bind("1")

	s := v.current()
	assert.InDelta(t, 100, s.Percent, 0.01)
	assert.Equal(t, sessionclock.BandGreen, s.Band)
	assert.Equal(t, "02:00:00", s.Format())
}

func TestCountdown_ExtendAtFiveMinutesTurnsGreenAndRearms(t *testing.T) {
	ctx := context.Background()
	cache := openCache(t, t.TempDir())
	sched := countdowntest.NewScheduler(t0)

	require.NoError(t, cache.Write(ctx, "1", expiry.Entry{ExpiresAt: iso(t0.Add(5 * time.Minute))}))

	v := newView(cache, sched, true)
	v.cd.Bind("1")

	assert.Equal(t, sessionclock.BandRed, v.current().Band)
	assert.True(t, v.cd.ControllerState().NotifiedUnderWarn)
	require.Len(t, v.fx.Notes, 1)

	require.NoError(t, cache.MergeExpiry(ctx, "1", iso(sched.Now().Add(30*time.Minute))))
	v.cd.ExtendAcknowledged()

	assert.Equal(t, sessionclock.BandGreen, v.current().Band)
	assert.False(t, v.cd.ControllerState().NotifiedUnderWarn)

	sched.Advance(3 * time.Second)
	assert.Equal(t, sessionclock.BandGreen, v.current().Band, "stays green on later ticks")
	assert.Len(t, v.fx.Notes, 1)
}

func TestCountdown_FixedWindowAfterExtend(t *testing.T) {
	ctx := context.Background()
	cache := openCache(t, t.TempDir())
	sched := countdowntest.NewScheduler(t0)

	require.NoError(t, cache.Write(ctx, "1", expiry.Entry{ExpiresAt: iso(t0.Add(5 * time.Minute))}))

	v := newView(cache, sched, false)
	v.cd.Bind("1")

	require.NoError(t, cache.MergeExpiry(ctx, "1", iso(sched.Now().Add(30*time.Minute))))
	v.cd.ExtendAcknowledged()

	assert.InDelta(t, 25, v.current().Percent, 0.01)
	assert.Equal(t, sessionclock.BandAmber, v.current().Band)
	assert.False(t, v.cd.ControllerState().NotifiedUnderWarn)
}

func TestCountdown_TwoViewsSyncWithinOneTick(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sched := countdowntest.NewScheduler(t0)

	// Separate database handles on one data dir, as two processes would have.
	reviewerCache := openCache(t, dir)
	timerCache := openCache(t, dir)

	require.NoError(t, reviewerCache.Write(ctx, "7", expiry.Entry{ExpiresAt: iso(t0.Add(20 * time.Minute))}))

	reviewer := newView(reviewerCache, sched, false)
	popup := newView(timerCache, sched, false)
	reviewer.cd.Bind("7")
	sched.Advance(400 * time.Millisecond)
	popup.cd.Bind("7")

	sched.Advance(10 * time.Second)
	extended := sched.Now().Truncate(time.Second).Add(50 * time.Minute)

	require.NoError(t, reviewerCache.MergeExpiry(ctx, "7", iso(extended)))
	reviewer.cd.ExtendAcknowledged()

	sched.Advance(time.Second)
	assert.WithinDuration(t, extended, popup.current().ExpiresAt, 0)
	assert.Equal(t, extended.Sub(sched.Now()), popup.current().Remaining)
}

func TestCountdown_ExtendRaceAcrossViews(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sched := countdowntest.NewScheduler(t0)

	writer := openCache(t, dir)
	reader := openCache(t, dir)

	require.NoError(t, writer.Write(ctx, "3", expiry.Entry{ExpiresAt: iso(t0.Add(time.Second))}))

	v := newView(reader, sched, true)
	v.cd.Bind("3")

	sched.Advance(time.Second)
	require.True(t, v.current().Expired())
	require.True(t, v.cd.ControllerState().PendingExit)

	// Another window's extend lands before the grace period ends.
	sched.Advance(300 * time.Millisecond)
	require.NoError(t, writer.MergeExpiry(ctx, "3", iso(sched.Now().Add(30*time.Minute))))

	sched.Advance(2 * time.Second)
	assert.Zero(t, v.fx.Exits)
	assert.False(t, v.current().Expired())
}

func TestCountdown_ForceExitCanUnbind(t *testing.T) {
	ctx := context.Background()
	cache := openCache(t, t.TempDir())
	sched := countdowntest.NewScheduler(t0)

	require.NoError(t, cache.Write(ctx, "4", expiry.Entry{ExpiresAt: iso(t0)}))

	v := newView(cache, sched, true)
	v.fx.OnExit = v.cd.Unbind
	v.cd.Bind("4")

	sched.Advance(2 * time.Second)
	assert.Equal(t, 1, v.fx.Exits)
	assert.Equal(t, countdown.Idle, v.cd.DriverState())
	assert.Equal(t, 0, sched.Pending(), "no dangling timers after exit")
}

func TestCountdown_ExtendAfterExitRevives(t *testing.T) {
	ctx := context.Background()
	cache := openCache(t, t.TempDir())
	sched := countdowntest.NewScheduler(t0)

	require.NoError(t, cache.Write(ctx, "4", expiry.Entry{ExpiresAt: iso(t0)}))

	v := newView(cache, sched, true)
	v.cd.Bind("4")
	sched.Advance(2 * time.Second)
	require.True(t, v.cd.ControllerState().Exited)

	require.NoError(t, cache.MergeExpiry(ctx, "4", iso(sched.Now().Add(time.Hour))))
	sched.Advance(time.Second)

	assert.False(t, v.cd.ControllerState().Exited)
	assert.Equal(t, sessionclock.BandGreen, v.current().Band)
}
