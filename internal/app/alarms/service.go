package alarms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starclock/starclock-api/internal/domain"
	"github.com/starclock/starclock-api/internal/ports/out/alarmrepo"
	clockport "github.com/starclock/starclock-api/internal/ports/out/clock"
)

// Service owns the alarm collection. The repository is the single store of
// record; every mutation goes through here.
type Service struct {
	repo alarmrepo.Repository
	clk  clockport.Clock

	newAlarmID func() domain.AlarmID
}

func NewService(repo alarmrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo: repo,
		clk:  clk,
		newAlarmID: func() domain.AlarmID {
			return domain.AlarmID(uuid.NewString())
		},
	}
}

// Add creates an active alarm for the "HH:MM" time hhmm.
func (s *Service) Add(ctx context.Context, hhmm string) (domain.Alarm, error) {
	t := strings.TrimSpace(hhmm)
	if !domain.ValidAlarmTime(t) {
		return domain.Alarm{}, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "invalid time",
			Details: map[string]any{"time": "must be HH:MM in 24-hour form"},
		}
	}
	a := domain.Alarm{
		ID:        s.newAlarmID(),
		Time:      t,
		IsActive:  true,
		CreatedAt: s.clk.Now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return domain.Alarm{}, fmt.Errorf("create alarm: %w", err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Alarm, error) {
	return s.repo.List(ctx)
}

// Toggle flips IsActive and returns the updated alarm.
func (s *Service) Toggle(ctx context.Context, id domain.AlarmID) (domain.Alarm, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, alarmrepo.ErrNotFound) {
			return domain.Alarm{}, notFound(string(id))
		}
		return domain.Alarm{}, err
	}
	a.IsActive = !a.IsActive
	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, alarmrepo.ErrNotFound) {
			return domain.Alarm{}, notFound(string(id))
		}
		return domain.Alarm{}, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id domain.AlarmID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, alarmrepo.ErrNotFound) {
			return notFound(string(id))
		}
		return err
	}
	return nil
}

// Due returns the alarms matching the minute of now. It reports the same
// alarms on every call within that minute.
func (s *Service) Due(ctx context.Context, now time.Time) ([]domain.Alarm, error) {
	as, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.MatchAlarms(domain.MinuteKey(now), as), nil
}
