package config

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oauthkit/baiduauth/pkg/cache"
)

const (
	cacheTTL            = time.Hour
	cacheKeyActive      = "baiduauth:valid_config"
	cacheKeyClientIDFmt = "baiduauth:client_config:%s"
)

// CachedStore is a read-through cache decorator over a Store. Lookups are
// served from the cache when possible; Save and Delete write through to
// the underlying store and invalidate. Invalidation is explicit and local
// to this component, never a shared global.
type CachedStore struct {
	store Store
	cache cache.Cache[*Config]
}

// NewCachedStore wraps store with the given cache backend.
func NewCachedStore(store Store, c cache.Cache[*Config]) *CachedStore {
	return &CachedStore{store: store, cache: c}
}

func (s *CachedStore) FindActive(ctx context.Context) (*Config, error) {
	return cache.GetOrSet(ctx, s.cache, cacheKeyActive, func(ctx context.Context) (*Config, time.Duration, error) {
		cfg, err := s.store.FindActive(ctx)
		if err != nil {
			return nil, 0, err
		}
		return cfg, cacheTTL, nil
	})
}

func (s *CachedStore) FindByClientID(ctx context.Context, clientID string) (*Config, error) {
	key := fmt.Sprintf(cacheKeyClientIDFmt, clientID)
	return cache.GetOrSet(ctx, s.cache, key, func(ctx context.Context) (*Config, time.Duration, error) {
		cfg, err := s.store.FindByClientID(ctx, clientID)
		if err != nil {
			return nil, 0, err
		}
		return cfg, cacheTTL, nil
	})
}

func (s *CachedStore) Save(ctx context.Context, cfg *Config) error {
	if err := s.store.Save(ctx, cfg); err != nil {
		return err
	}
	s.invalidate(ctx, cfg)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	// The client id of the deleted row is unknown here; drop only the
	// active-config key and let per-client entries age out with the TTL.
	_ = s.cache.Delete(ctx, cacheKeyActive)
	return nil
}

// Invalidate drops cached entries for the given config. Exposed for
// callers that mutate configs outside this store.
func (s *CachedStore) Invalidate(ctx context.Context, cfg *Config) {
	s.invalidate(ctx, cfg)
}

func (s *CachedStore) invalidate(ctx context.Context, cfg *Config) {
	_ = s.cache.Delete(ctx, cacheKeyActive)
	if cfg != nil && cfg.ClientID != "" {
		_ = s.cache.Delete(ctx, fmt.Sprintf(cacheKeyClientIDFmt, cfg.ClientID))
	}
}
