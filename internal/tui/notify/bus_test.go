package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/reviewdesk/internal/core/notify"
)

// memStore is an in-memory notify.Store for testing.
type memStore struct {
	items  []notify.Notification
	nextID int64
	prunes int
}

func (m *memStore) Save(_ context.Context, n notify.Notification) (int64, error) {
	m.nextID++
	n.ID = m.nextID
	m.items = append(m.items, n)
	return n.ID, nil
}

func (m *memStore) List(_ context.Context) ([]notify.Notification, error) {
	out := make([]notify.Notification, len(m.items))
	for i, n := range m.items {
		out[len(m.items)-1-i] = n
	}
	return out, nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.items = nil
	return nil
}

func (m *memStore) Count(_ context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

func (m *memStore) Prune(_ context.Context, keep int) error {
	m.prunes++
	if len(m.items) > keep {
		m.items = m.items[len(m.items)-keep:]
	}
	return nil
}

func TestBus_Publish_dispatches_to_subscribers(t *testing.T) {
	bus := NewBus(&memStore{}, 0)

	var received []notify.Notification
	bus.Subscribe(func(n notify.Notification) {
		received = append(received, n)
	})

	bus.Errorf("extend failed: %d", 500)
	bus.Infof("Extended")
	bus.Warnf("session is not active")

	require.Len(t, received, 3)
	assert.Equal(t, notify.LevelError, received[0].Level)
	assert.Equal(t, "extend failed: 500", received[0].Message)
	assert.Equal(t, notify.LevelInfo, received[1].Level)
	assert.Equal(t, notify.LevelWarning, received[2].Level)
}

func TestBus_Publish_assigns_id_from_store(t *testing.T) {
	store := &memStore{}
	bus := NewBus(store, 0)

	var received notify.Notification
	bus.Subscribe(func(n notify.Notification) {
		received = n
	})

	bus.Infof("get id")

	assert.Equal(t, int64(1), received.ID)
	assert.False(t, received.CreatedAt.IsZero())
	assert.Len(t, store.items, 1)
}

func TestBus_Publish_prunes_history(t *testing.T) {
	store := &memStore{}
	bus := NewBus(store, 2)

	for range 5 {
		bus.Infof("tick")
	}

	assert.Equal(t, 2, store.prunes)
	assert.LessOrEqual(t, len(store.items), 3)
}

func TestBus_History_and_Clear(t *testing.T) {
	bus := NewBus(&memStore{}, 0)

	bus.Infof("first")
	bus.Infof("second")

	history, err := bus.History()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Message)

	require.NoError(t, bus.Clear())
	history, err = bus.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestBus_nil_store(t *testing.T) {
	bus := NewBus(nil, 10)

	var received []notify.Notification
	bus.Subscribe(func(n notify.Notification) {
		received = append(received, n)
	})

	bus.Errorf("no store")
	assert.Len(t, received, 1)

	history, err := bus.History()
	require.NoError(t, err)
	assert.Nil(t, history)
	assert.NoError(t, bus.Clear())
}
