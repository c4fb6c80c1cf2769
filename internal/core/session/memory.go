package session

import (
	"context"
	"sync"
	"time"

	"github.com/duynhne/profile-web/internal/core/domain"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore is an in-process Store for single-replica deployments and tests.
// Expired entries are dropped when read and swept from Set at most once per TTL.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	entries   map[string]memoryEntry
	locks     map[string]struct{}
	now       func() time.Time
	nextSweep time.Time
}

// NewMemoryStore creates an empty store whose entries expire after ttl of inactivity.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		locks:   make(map[string]struct{}),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if now.After(e.expires) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	e.expires = now.Add(s.ttl)
	s.entries[id] = e

	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, id string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !now.Before(s.nextSweep) {
		s.sweep(now)
	}
	s.entries[id] = memoryEntry{data: buf, expires: now.Add(s.ttl)}
	return nil
}

// sweep deletes every expired entry. Callers hold s.mu.
func (s *MemoryStore) sweep(now time.Time) {
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}
	s.nextSweep = now.Add(s.ttl)
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) Lock(_ context.Context, id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.locks[id]; held {
		return nil, domain.ErrBusy
	}
	s.locks[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.locks, id)
			s.mu.Unlock()
		})
	}, nil
}

func (s *MemoryStore) Close() error { return nil }
