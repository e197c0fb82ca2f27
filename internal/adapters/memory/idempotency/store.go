package idempotency

import (
	"context"
	"sync"

	"github.com/starclock/starclock-api/internal/ports/out/idempotency"
)

// DefaultMaxEntries bounds the store so a long-running host does not grow without limit.
const DefaultMaxEntries = 1024

// Store is an in-memory implementation of idempotency.Store.
// When full, the oldest inserted fingerprint is evicted first.
// It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	m     map[idempotency.Fingerprint]idempotency.Record
	order []idempotency.Fingerprint

	max int
}

func NewStore() *Store {
	return NewStoreWithLimit(DefaultMaxEntries)
}

// NewStoreWithLimit returns a store holding at most max records (unbounded when max <= 0).
func NewStoreWithLimit(max int) *Store {
	return &Store{
		m:   make(map[idempotency.Fingerprint]idempotency.Record),
		max: max,
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[fp]
	return rec, ok, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.m[fp]; !exists {
		s.order = append(s.order, fp)
	}
	s.m[fp] = rec
	for s.max > 0 && len(s.order) > s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.m, oldest)
	}
	return nil
}
