// Package cache implements the analytics cache layer: string-keyed
// entries stamped with their write time, validated against a TTL on
// read, and invalidated per user+period on mutation. Backing stores are
// best-effort and ephemeral; every failure degrades to a miss.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Store is a backing medium for cache entries. Implementations swallow
// their own errors (logging them) and report misses instead; a cache
// that is empty or broken only ever costs a recompute.
type Store interface {
	// Get returns the stored payload and its write time.
	Get(ctx context.Context, key string) (payload []byte, ts time.Time, ok bool)

	// Set stores a payload stamped with the given write time,
	// overwriting unconditionally.
	Set(ctx context.Context, key string, payload []byte, ts time.Time)

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string)

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string)

	// DeleteOlderThan removes entries written before cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) int
}

// Cache wraps a Store with TTL validation and JSON payload codec.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// New creates a cache over the given store.
func New(store Store, ttl time.Duration) *Cache {
	return NewWithClock(store, ttl, time.Now)
}

// NewWithClock is New with an injected clock, for TTL tests.
func NewWithClock(store Store, ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{store: store, ttl: ttl, now: now}
}

// Get loads the entry under key into dst. It reports a miss when the
// key is absent, the entry has outlived the TTL, or the stored payload
// does not decode (corruption is a miss, never an error).
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	payload, ts, ok := c.store.Get(ctx, key)
	if !ok {
		return false
	}
	if c.now().Sub(ts) >= c.ttl {
		c.store.Delete(ctx, key)
		return false
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		slog.Warn("dropping corrupt cache entry", "key", key, "error", err)
		c.store.Delete(ctx, key)
		return false
	}
	return true
}

// Put stores v under key, stamped with the current time. Values that do
// not marshal are skipped.
func (c *Cache) Put(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Warn("skipping unmarshalable cache value", "key", key, "error", err)
		return
	}
	c.store.Set(ctx, key, payload, c.now())
}

// Invalidate removes exactly the entries of one user+year+month: the
// raw list, the derived summary, and both analytics-view variants.
func (c *Cache) Invalidate(ctx context.Context, userID string, year, month int) {
	c.store.Delete(ctx, PeriodKeys(userID, year, month)...)
}

// InvalidateUser removes every entry of the user, across all periods
// and view types.
func (c *Cache) InvalidateUser(ctx context.Context, userID string) {
	for _, prefix := range UserPrefixes(userID) {
		c.store.DeletePrefix(ctx, prefix)
	}
}

// CleanExpired removes entries that have outlived the TTL. It satisfies
// the Manager's Cleaner interface.
func (c *Cache) CleanExpired() int {
	return c.store.DeleteOlderThan(context.Background(), c.now().Add(-c.ttl))
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
