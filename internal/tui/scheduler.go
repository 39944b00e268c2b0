package tui

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/reviewdesk/internal/core/countdown"
)

// timerFiredMsg carries a due callback from a timer goroutine into Update.
type timerFiredMsg struct {
	fn        func()
	cancelled *atomic.Bool
}

// Scheduler is a countdown.Scheduler whose callbacks run inside the Bubble
// Tea Update loop. Timers post a message on an internal channel; Listen
// reads one message at a time and Handle runs the callback and listens
// again.
type Scheduler struct {
	ch   chan timerFiredMsg
	done chan struct{}
	once sync.Once
	now  func() time.Time
}

var _ countdown.Scheduler = (*Scheduler)(nil)

func NewScheduler() *Scheduler {
	return &Scheduler{
		ch:   make(chan timerFiredMsg, 16),
		done: make(chan struct{}),
		now:  time.Now,
	}
}

func (s *Scheduler) Now() time.Time { return s.now() }

func (s *Scheduler) AfterFunc(d time.Duration, fn func()) func() {
	cancelled := &atomic.Bool{}
	t := time.AfterFunc(d, func() {
		select {
		case s.ch <- timerFiredMsg{fn: fn, cancelled: cancelled}:
		case <-s.done:
		}
	})
	return func() {
		cancelled.Store(true)
		t.Stop()
	}
}

// Listen waits for the next due callback. Return it from Init.
func (s *Scheduler) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case m := <-s.ch:
			return m
		case <-s.done:
			return nil
		}
	}
}

// Handle runs a due callback. ok is false for messages that did not come
// from this scheduler.
func (s *Scheduler) Handle(msg tea.Msg) (cmd tea.Cmd, ok bool) {
	m, ok := msg.(timerFiredMsg)
	if !ok {
		return nil, false
	}
	if !m.cancelled.Load() {
		m.fn()
	}
	return s.Listen(), true
}

// Close stops delivering callbacks.
func (s *Scheduler) Close() {
	s.once.Do(func() { close(s.done) })
}
