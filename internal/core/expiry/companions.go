package expiry

import (
	"context"
	"fmt"
	"time"

	"github.com/hay-kot/reviewdesk/internal/core/kv"
)

// Kind names a companion surface that a view may auto-open.
type Kind string

const (
	KindTimer Kind = "timer"
	KindPR    Kind = "gitea"
)

// DefaultCompanionTTL bounds how long an "already opened" flag survives
// when its companion never clears it.
const DefaultCompanionTTL = 12 * time.Hour

// Companions records, per (kind, token), that a companion window has already
// been opened so reloading a view does not spawn it again.
type Companions struct {
	flags *kv.TypedKV[time.Time]
	ttl   time.Duration
	now   func() time.Time
}

// NewCompanions stores flags in the "companion" namespace of store.
func NewCompanions(store kv.KV, ttl time.Duration) *Companions {
	if ttl <= 0 {
		ttl = DefaultCompanionTTL
	}
	return &Companions{
		flags: kv.Scoped[time.Time](store, "companion"),
		ttl:   ttl,
		now:   time.Now,
	}
}

func companionKey(kind Kind, token string) string {
	return string(kind) + "-opened-" + token
}

// Claim marks (kind, token) as opened and reports whether the caller should
// open it, i.e. whether it was not already marked.
func (c *Companions) Claim(ctx context.Context, kind Kind, token string) (bool, error) {
	key := companionKey(kind, token)

	opened, err := c.flags.Has(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check %s companion: %w", kind, err)
	}
	if opened {
		return false, nil
	}

	if err := c.flags.SetTTL(ctx, key, c.now(), c.ttl); err != nil {
		return false, fmt.Errorf("mark %s companion: %w", kind, err)
	}
	return true, nil
}

// Opened reports whether (kind, token) is marked.
func (c *Companions) Opened(ctx context.Context, kind Kind, token string) (bool, error) {
	return c.flags.Has(ctx, companionKey(kind, token))
}

// Release clears the flag so the companion may be opened again. The timer
// popup calls this when it exits.
func (c *Companions) Release(ctx context.Context, kind Kind, token string) error {
	if err := c.flags.Delete(ctx, companionKey(kind, token)); err != nil {
		return fmt.Errorf("release %s companion: %w", kind, err)
	}
	return nil
}
