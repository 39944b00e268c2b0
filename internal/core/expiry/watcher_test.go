package expiry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_SignalsOnDatabaseWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, "shared.db")
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ch := w.Subscribe(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o600))
	select {
	case <-ch:
		t.Fatal("unrelated file must not signal")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "shared.db-wal"), []byte("x"), 0o600))
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change signal")
	}
}

func TestWatcher_UnsubscribeOnContextCancel(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), "shared.db")
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	ch := w.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel should close after cancel")
	}
}

func TestWatcher_CloseClosesSubscribers(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), "shared.db")
	require.NoError(t, err)

	ch := w.Subscribe(context.Background())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-ch
	assert.False(t, ok)

	late := w.Subscribe(context.Background())
	_, ok = <-late
	assert.False(t, ok)
}
