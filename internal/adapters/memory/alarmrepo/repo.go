package alarmrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/starclock/starclock-api/internal/domain"
	"github.com/starclock/starclock-api/internal/ports/out/alarmrepo"
)

type entry struct {
	alarm domain.Alarm
	seq   uint64
}

// Repo is an in-memory implementation of alarmrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu      sync.RWMutex
	byID    map[domain.AlarmID]entry
	nextSeq uint64
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.AlarmID]entry)}
}

func (r *Repo) Create(ctx context.Context, a domain.Alarm) error {
	_ = ctx
	if a.ID == "" {
		return alarmrepo.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; ok {
		return alarmrepo.ErrAlreadyExists
	}
	r.nextSeq++
	r.byID[a.ID] = entry{alarm: a, seq: r.nextSeq}
	return nil
}

func (r *Repo) Update(ctx context.Context, a domain.Alarm) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[a.ID]
	if !ok {
		return alarmrepo.ErrNotFound
	}
	a.CreatedAt = existing.alarm.CreatedAt
	r.byID[a.ID] = entry{alarm: a, seq: existing.seq}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.AlarmID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return alarmrepo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.AlarmID) (domain.Alarm, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok {
		return domain.Alarm{}, alarmrepo.ErrNotFound
	}
	return e.alarm, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Alarm, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]entry, 0, len(r.byID))
	for _, e := range r.byID {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]domain.Alarm, len(entries))
	for i, e := range entries {
		out[i] = e.alarm
	}
	return out, nil
}
