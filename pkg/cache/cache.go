// Package cache provides a generic TTL key-value cache with in-memory
// and Redis backends. It backs the provider-config read-through cache.
package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a TTL-bounded key-value cache.
//
// TTL semantics for Set: a positive duration expires the entry after
// that duration; zero uses the backend's default TTL.
type Cache[V any] interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key is absent or expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

var sfGroup singleflight.Group

type loaded[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key, or computes it with fn on a
// miss. Concurrent misses on the same key are collapsed into a single fn
// call via singleflight. Errors from fn are returned and nothing is cached.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := sfGroup.Do(key, func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return loaded[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	r := v.(loaded[V])

	// Best-effort write back.
	_ = c.Set(ctx, key, r.val, r.ttl)

	return r.val, nil
}
