package countdown

import (
	"fmt"
	"time"

	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
)

// Effects are the side effects a Controller triggers. ForceExit is
// surface specific: the reviewer dashboard returns to its list, the
// candidate view and timer popup show an expired state.
type Effects interface {
	Notify(msg string)
	Tick()
	ForceExit()
}

// Thresholds configures when a Controller acts.
type Thresholds struct {
	WarnBefore   time.Duration // notify once when remaining drops below
	TickBelow    time.Duration // audio cue while remaining is below
	TickInterval time.Duration // audio cue period
	ExitGrace    time.Duration // delay before confirming an expiry
}

// DefaultThresholds returns 10m / 1m / 1s / 1s.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WarnBefore:   10 * time.Minute,
		TickBelow:    time.Minute,
		TickInterval: time.Second,
		ExitGrace:    time.Second,
	}
}

func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.WarnBefore <= 0 {
		t.WarnBefore = d.WarnBefore
	}
	if t.TickBelow <= 0 {
		t.TickBelow = d.TickBelow
	}
	if t.TickInterval <= 0 {
		t.TickInterval = d.TickInterval
	}
	if t.ExitGrace <= 0 {
		t.ExitGrace = d.ExitGrace
	}
	return t
}

// ControllerState is a read-only view of a Controller's flags.
type ControllerState struct {
	NotifiedUnderWarn bool
	TickingAudio      bool
	PendingExit       bool
	Exited            bool
}

// Controller turns a snapshot stream into at-most-once side effects.
//
// An expiry is confirmed only after ExitGrace has passed and a fresh read
// still shows no time left, so an extend whose response lands just after
// the tick that saw zero does not kick the user out.
type Controller struct {
	sched   Scheduler
	fx      Effects
	th      Thresholds
	recheck func() sessionclock.Snapshot

	notified bool
	exited   bool

	ticking    bool
	tickSeq    uint64
	tickCancel func()

	exitSeq    uint64
	exitCancel func()
}

// NewController returns a controller. recheck supplies the fresh snapshot
// consulted when the exit grace period ends.
func NewController(sched Scheduler, fx Effects, th Thresholds, recheck func() sessionclock.Snapshot) *Controller {
	return &Controller{
		sched:   sched,
		fx:      fx,
		th:      th.withDefaults(),
		recheck: recheck,
	}
}

// WarnMessage is the text of the one-shot low-time notification.
func (c *Controller) WarnMessage() string {
	return fmt.Sprintf("Less than %d minutes left in your review session.", int(c.th.WarnBefore.Minutes()))
}

// Observe evaluates one snapshot.
func (c *Controller) Observe(s sessionclock.Snapshot) {
	if c.exited || !s.Known {
		return
	}

	if s.Remaining > 0 && s.Remaining < c.th.WarnBefore && !c.notified {
		c.notified = true
		c.fx.Notify(c.WarnMessage())
	}

	if s.Remaining < c.th.TickBelow {
		if !c.ticking {
			c.startTicking()
		}
	} else if c.ticking {
		c.stopTicking()
	}

	if s.Expired() {
		if c.exitCancel == nil {
			c.armExit()
		}
	} else {
		c.cancelExit()
	}
}

// ExtendAcknowledged records a successful extend: any pending exit is
// dropped and the low-time warning is re-armed.
func (c *Controller) ExtendAcknowledged() {
	c.cancelExit()
	c.notified = false
	c.exited = false
}

// Stop cancels the audio cue and any pending exit, keeping flags.
func (c *Controller) Stop() {
	c.stopTicking()
	c.cancelExit()
}

// Reset stops the controller and clears every flag, as on rebind.
func (c *Controller) Reset() {
	c.Stop()
	c.notified = false
	c.exited = false
}

func (c *Controller) State() ControllerState {
	return ControllerState{
		NotifiedUnderWarn: c.notified,
		TickingAudio:      c.ticking,
		PendingExit:       c.exitCancel != nil,
		Exited:            c.exited,
	}
}

func (c *Controller) startTicking() {
	c.ticking = true
	c.tickSeq++
	seq := c.tickSeq

	var beat func()
	beat = func() {
		if seq != c.tickSeq || !c.ticking {
			return
		}
		c.fx.Tick()
		c.tickCancel = c.sched.AfterFunc(c.th.TickInterval, beat)
	}
	beat()
}

func (c *Controller) stopTicking() {
	c.ticking = false
	c.tickSeq++
	if c.tickCancel != nil {
		c.tickCancel()
		c.tickCancel = nil
	}
}

func (c *Controller) armExit() {
	c.exitSeq++
	seq := c.exitSeq
	c.exitCancel = c.sched.AfterFunc(c.th.ExitGrace, func() { c.confirmExit(seq) })
}

func (c *Controller) cancelExit() {
	c.exitSeq++
	if c.exitCancel != nil {
		c.exitCancel()
		c.exitCancel = nil
	}
}

func (c *Controller) confirmExit(seq uint64) {
	if seq != c.exitSeq || c.exited {
		return
	}
	c.exitCancel = nil

	if fresh := c.recheck(); fresh.Known && fresh.Remaining > 0 {
		return
	}

	c.stopTicking()
	c.exited = true
	c.fx.ForceExit()
}
