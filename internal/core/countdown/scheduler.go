// Package countdown drives per-view session countdowns and fires their
// threshold side effects. Every Driver and Controller method must be called
// from the host's single event loop; a Scheduler delivers timer callbacks
// onto that same loop.
package countdown

import (
	"context"
	"sync/atomic"
	"time"
)

// Scheduler runs callbacks on the host's event loop after a delay. Once
// cancel returns, fn is guaranteed not to run.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// Loop is a Scheduler for hosts without an event loop of their own (the
// CLI watch command). Callbacks run one at a time on the goroutine that
// calls Run.
type Loop struct {
	queue chan func()
	done  chan struct{}
}

var _ Scheduler = (*Loop)(nil)

func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func(), 16),
		done:  make(chan struct{}),
	}
}

func (l *Loop) Now() time.Time { return time.Now() }

func (l *Loop) AfterFunc(d time.Duration, fn func()) func() {
	var cancelled atomic.Bool
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})
	return func() {
		cancelled.Store(true)
		t.Stop()
	}
}

// Post queues fn to run on the loop. It is safe to call from any goroutine
// and drops fn once the loop has stopped.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Run executes queued callbacks until ctx ends.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn()
		}
	}
}
