package countdowntest

import (
	"context"
	"sync"
)

// Effects records controller side effects.
type Effects struct {
	mu     sync.Mutex
	Notes  []string
	Ticks  int
	Exits  int
	OnExit func()
}

func (e *Effects) Notify(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Notes = append(e.Notes, msg)
}

func (e *Effects) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Ticks++
}

func (e *Effects) ForceExit() {
	e.mu.Lock()
	e.Exits++
	hook := e.OnExit
	e.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// Source is an in-memory countdown.Source.
type Source struct {
	mu     sync.Mutex
	Values map[string]string
	Err    error
}

func NewSource() *Source {
	return &Source{Values: make(map[string]string)}
}

func (s *Source) Set(id, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Values[id] = raw
}

// SetErr makes every read fail with err until cleared with nil.
func (s *Source) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

func (s *Source) ExpiresAt(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", false, s.Err
	}
	raw, ok := s.Values[id]
	return raw, ok && raw != "", nil
}
