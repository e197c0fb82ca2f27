package preference

import (
	"context"
	"sync"

	"github.com/starclock/starclock-api/internal/domain"
)

// Store is an in-memory implementation of preference.Store.
// The preference survives only as long as the process.
type Store struct {
	mu  sync.RWMutex
	f   domain.HourFormat
	set bool
}

func NewStore() *Store { return &Store{} }

func (s *Store) Get(ctx context.Context) (domain.HourFormat, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f, s.set, nil
}

func (s *Store) Set(ctx context.Context, f domain.HourFormat) error {
	_ = ctx
	if _, err := domain.ParseHourFormat(string(f)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f = f
	s.set = true
	return nil
}
