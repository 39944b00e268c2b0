// Package expiry is the per-session expiry cache shared by every reviewdesk
// process of the same user. Countdown drivers read it on every tick, so an
// extend written by one window shows up in every other window within one
// tick interval.
package expiry

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/reviewdesk/internal/core/kv"
)

const namespace = "session"

// Entry is the cached projection of one session's timing. Values are the
// server's timestamp strings, unnormalized.
type Entry struct {
	ExpiresAt string `json:"expires_at"`
	CreatedAt string `json:"created_at"`
}

// Cache reads and writes Entry values keyed by session id. Last write wins.
type Cache struct {
	entries *kv.TypedKV[Entry]
}

// NewCache returns a cache stored in the "session" namespace of store.
func NewCache(store kv.KV) *Cache {
	return &Cache{entries: kv.Scoped[Entry](store, namespace)}
}

// Write replaces the entry for id.
func (c *Cache) Write(ctx context.Context, id string, e Entry) error {
	if err := c.entries.Set(ctx, id, e); err != nil {
		return fmt.Errorf("write expiry for session %s: %w", id, err)
	}
	return nil
}

// Read returns the entry for id. A missing entry is reported as ok=false
// with a nil error.
func (c *Cache) Read(ctx context.Context, id string) (Entry, bool, error) {
	e, err := c.entries.Get(ctx, id)
	switch {
	case err == nil:
		return e, true, nil
	case errors.Is(err, kv.ErrNotFound):
		return Entry{}, false, nil
	default:
		return Entry{}, false, fmt.Errorf("read expiry for session %s: %w", id, err)
	}
}

// MergeExpiry updates only the expiry of id, keeping a previously cached
// creation time. Used for extend and finish responses, which carry no
// created_at.
func (c *Cache) MergeExpiry(ctx context.Context, id, expiresAt string) error {
	cur, _, err := c.Read(ctx, id)
	if err != nil {
		return err
	}
	cur.ExpiresAt = expiresAt
	return c.Write(ctx, id, cur)
}

// Forget drops the entry for id.
func (c *Cache) Forget(ctx context.Context, id string) error {
	if err := c.entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("forget expiry for session %s: %w", id, err)
	}
	return nil
}

// ExpiresAt returns the raw cached expiry for id.
func (c *Cache) ExpiresAt(ctx context.Context, id string) (string, bool, error) {
	e, ok, err := c.Read(ctx, id)
	if err != nil || !ok {
		return "", false, err
	}
	return e.ExpiresAt, e.ExpiresAt != "", nil
}

// IDs lists the session ids that have a cached entry.
func (c *Cache) IDs(ctx context.Context) ([]string, error) {
	return c.entries.Keys(ctx)
}
