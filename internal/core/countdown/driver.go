package countdown

import (
	"context"
	"time"

	"github.com/hay-kot/reviewdesk/internal/core/logging"
	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
	"github.com/rs/zerolog"
)

// DefaultInterval is the tick period of a bound driver.
const DefaultInterval = time.Second

// Source yields the raw cached expiry of a session.
type Source interface {
	ExpiresAt(ctx context.Context, id string) (raw string, ok bool, err error)
}

// DriverState is Idle with no session bound, Running otherwise.
type DriverState int

const (
	Idle DriverState = iota
	Running
)

func (s DriverState) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Driver re-reads a session's cached expiry every interval and emits a
// snapshot to its host.
type Driver struct {
	src      Source
	sched    Scheduler
	interval time.Duration
	nominal  time.Duration
	window   time.Duration
	emit     func(sessionclock.Snapshot)
	base     zerolog.Logger
	log      zerolog.Logger

	state      DriverState
	id         string
	gen        uint64
	cancel     func()
	lastExpiry string
}

// NewDriver returns an idle driver. interval and window fall back to
// DefaultInterval and sessionclock.DefaultWindow when zero.
func NewDriver(src Source, sched Scheduler, interval, window time.Duration, emit func(sessionclock.Snapshot)) *Driver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if window <= 0 {
		window = sessionclock.DefaultWindow
	}
	d := &Driver{
		src:      src,
		sched:    sched,
		interval: interval,
		nominal:  window,
		window:   window,
		emit:     emit,
		base:     logging.Component("countdown"),
	}
	d.log = d.base
	return d
}

// Bind starts counting down id. A previous binding is cancelled before the
// first snapshot for id is emitted, which happens immediately.
func (d *Driver) Bind(id string) {
	d.Unbind()

	d.gen++
	d.id = id
	d.state = Running
	d.lastExpiry = ""
	d.window = d.nominal
	d.log = logging.ForSession(d.base, id)
	d.log.Debug().Msg("bound")

	d.tick(d.gen)
}

// Unbind stops the driver. No snapshot is emitted after it returns.
func (d *Driver) Unbind() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.state == Running {
		d.log.Debug().Msg("unbound")
	}
	d.gen++
	d.state = Idle
	d.id = ""
}

// Refresh emits a snapshot now without disturbing the tick schedule.
func (d *Driver) Refresh() {
	if d.state != Running {
		return
	}
	d.emit(d.Peek())
}

// Peek reads the cache and computes a snapshot without emitting it. A
// failed read falls back to the last expiry that was read successfully.
func (d *Driver) Peek() sessionclock.Snapshot {
	if d.state != Running {
		return sessionclock.Snapshot{}
	}

	raw, ok, err := d.src.ExpiresAt(context.Background(), d.id)
	switch {
	case err != nil:
		d.log.Warn().Err(err).Msg("read cached expiry")
		raw = d.lastExpiry
	case ok:
		d.lastExpiry = raw
	default:
		raw = ""
	}

	return sessionclock.Compute(raw, d.sched.Now(), d.window)
}

// SetWindow changes the span that maps to 100% until the next Bind.
func (d *Driver) SetWindow(w time.Duration) {
	if w > 0 {
		d.window = w
	}
}

// Window is the span currently mapped to 100%.
func (d *Driver) Window() time.Duration { return d.window }

func (d *Driver) State() DriverState { return d.state }

// SessionID is the bound session, or "" when idle.
func (d *Driver) SessionID() string { return d.id }

func (d *Driver) tick(gen uint64) {
	if gen != d.gen || d.state != Running {
		return
	}

	d.emit(d.Peek())

	// The host may have unbound or rebound from inside emit.
	if gen != d.gen || d.state != Running {
		return
	}
	d.cancel = d.sched.AfterFunc(d.interval, func() { d.tick(gen) })
}
