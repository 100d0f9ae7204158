package user

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory Store keyed by BaiduUID, for
// tests and single-process deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*Record)}
}

func (s *MemoryStore) FindByBaiduUID(_ context.Context, uid string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.items[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(r), nil
}

func (s *MemoryStore) FindExpired(_ context.Context, now time.Time) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	for _, r := range s.items {
		if !now.Before(r.ExpireTime) {
			out = append(out, cloneRecord(r))
		}
	}
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[r.BaiduUID]; ok {
		// Upsert: the stored row keeps its identity.
		r.ID = existing.ID
		r.CreatedAt = existing.CreatedAt
	}
	r.UpdatedAt = time.Now()
	s.items[r.BaiduUID] = cloneRecord(r)
	return nil
}

// Len reports the number of stored records, used by tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func cloneRecord(r *Record) *Record {
	cp := *r
	if r.RawProfile != nil {
		cp.RawProfile = maps.Clone(r.RawProfile)
	}
	return &cp
}
