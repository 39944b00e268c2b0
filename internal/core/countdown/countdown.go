package countdown

import (
	"time"

	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
)

// Options configures a Countdown.
type Options struct {
	Interval   time.Duration
	Window     time.Duration
	Thresholds Thresholds

	// RebaseOnExtend makes the time left right after an extend the new
	// 100% mark, instead of measuring against Window for the whole session.
	RebaseOnExtend bool
}

// Countdown is what a view hosts: a Driver feeding a Controller and a
// render callback.
type Countdown struct {
	driver     *Driver
	controller *Controller
	render     func(sessionclock.Snapshot)
	sched      Scheduler
	rebase     bool

	last sessionclock.Snapshot
}

// New wires a driver and controller together. render receives every
// snapshot after the controller has seen it.
func New(src Source, sched Scheduler, fx Effects, opts Options, render func(sessionclock.Snapshot)) *Countdown {
	c := &Countdown{render: render, sched: sched, rebase: opts.RebaseOnExtend}
	c.driver = NewDriver(src, sched, opts.Interval, opts.Window, c.observe)
	c.controller = NewController(sched, fx, opts.Thresholds, c.driver.Peek)
	return c
}

// Bind starts counting down session id with a fresh controller.
func (c *Countdown) Bind(id string) {
	c.controller.Reset()
	c.last = sessionclock.Snapshot{}
	c.driver.Bind(id)
}

// Unbind stops all timers.
func (c *Countdown) Unbind() {
	c.driver.Unbind()
	c.controller.Stop()
	c.last = sessionclock.Snapshot{}
}

// ExtendAcknowledged is called by the host after its own extend succeeded
// and the cache was written.
func (c *Countdown) ExtendAcknowledged() {
	c.controller.ExtendAcknowledged()
	c.driver.Refresh()
}

// Refresh re-reads the cache now, e.g. after another process wrote it.
func (c *Countdown) Refresh() { c.driver.Refresh() }

// Last is the most recent snapshot delivered to render.
func (c *Countdown) Last() sessionclock.Snapshot { return c.last }

func (c *Countdown) SessionID() string { return c.driver.SessionID() }

func (c *Countdown) DriverState() DriverState { return c.driver.State() }

func (c *Countdown) ControllerState() ControllerState { return c.controller.State() }

func (c *Countdown) observe(s sessionclock.Snapshot) {
	// An expiry that moved forward was extended, possibly by another
	// window; treat it like a local acknowledgment so the warning re-arms.
	if c.last.Known && s.Known && s.ExpiresAt.After(c.last.ExpiresAt) {
		c.controller.ExtendAcknowledged()
		if c.rebase && s.Remaining > 0 {
			c.driver.SetWindow(s.Remaining)
			s = sessionclock.At(s.ExpiresAt, c.sched.Now(), s.Remaining)
		}
	}
	c.last = s

	c.controller.Observe(s)
	if c.render != nil {
		c.render(s)
	}
}
