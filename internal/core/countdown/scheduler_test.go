package countdown

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RunsCallbacksOnLoopGoroutine(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	fired := make(chan struct{})
	loop.AfterFunc(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not run")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestLoop_CancelPreventsCallback(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	var calls atomic.Int32
	stop := loop.AfterFunc(20*time.Millisecond, func() { calls.Add(1) })
	stop()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestLoop_PostAfterStopDoesNotBlock(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = loop.Run(ctx)

	finished := make(chan struct{})
	go func() {
		for range 100 {
			loop.Post(func() {})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("post blocked after loop stopped")
	}
}
