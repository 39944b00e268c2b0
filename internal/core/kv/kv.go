// Package kv defines the durable key/value contract shared by every
// reviewdesk process on a machine. Values are JSON documents.
package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// ErrNotFound is wrapped by reads of a key that is missing or has lapsed.
var ErrNotFound = sql.ErrNoRows

// Entry is a raw stored value with its bookkeeping timestamps.
type Entry struct {
	Key       string
	Value     json.RawMessage
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Lapsed reports whether the entry carried a TTL that has passed at now.
func (e Entry) Lapsed(now time.Time) bool {
	return e.ExpiresAt != nil && e.ExpiresAt.Before(now)
}

// Reader is the read half of a store.
type Reader interface {
	Get(ctx context.Context, key string, dest any) error
	GetRaw(ctx context.Context, key string) (Entry, error)
	Has(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context) ([]string, error)
}

// Writer is the write half of a store. Writes replace the whole value;
// concurrent writers race and the last one wins.
type Writer interface {
	Set(ctx context.Context, key string, value any) error
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// KV is a persistent key/value store shared across processes.
type KV interface {
	Reader
	Writer
}
