// Package cache is the read-through cache in front of property-base reads.
//
// Entries are stored as JSON with a TTL. Every key carries a staleness
// guard: a fill that began before Invalidate is dropped instead of written,
// so a slow upstream read cannot resurrect data a mutation just replaced.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a Store on a cache miss.
var ErrNotFound = errors.New("cache entry not found")

// Store persists raw cache entries.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
