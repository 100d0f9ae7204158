package config

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store, for tests and
// single-process deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Config
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[uuid.UUID]*Config)}
}

func (s *MemoryStore) FindActive(_ context.Context) (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Config
	for _, c := range s.items {
		if !c.Active {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *MemoryStore) FindByClientID(_ context.Context, clientID string) (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.items {
		if c.ClientID == clientID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Save(_ context.Context, cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *cfg
	s.items[cfg.ID] = &cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	return nil
}
