package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory Store. The mutex makes
// Consume atomic: concurrent calls racing on one value see exactly one
// winner.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*Token
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*Token)}
}

func (s *MemoryStore) Save(_ context.Context, t *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	s.items[t.Value] = &cp
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, value string, now time.Time) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.items[value]
	if !ok || !t.IsValid(now) {
		return nil, ErrNotFound
	}
	t.Used = true

	cp := *t
	return &cp, nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for v, t := range s.items {
		if t.ExpiresAt.Before(now) {
			delete(s.items, v)
			n++
		}
	}
	return n, nil
}

// Get returns a copy of the stored token, used by tests to inspect
// persisted state without touching the consume path.
func (s *MemoryStore) Get(value string) (*Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.items[value]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}
