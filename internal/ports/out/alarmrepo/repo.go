package alarmrepo

import (
	"context"

	"github.com/starclock/starclock-api/internal/domain"
)

// Repository holds the alarm collection of the running host.
//
// Result ordering expectations:
// - List returns alarms in the order they were created. Update keeps an
//   alarm in its original position.
type Repository interface {
	Create(ctx context.Context, a domain.Alarm) error
	// Update replaces the stored alarm with the same ID.
	Update(ctx context.Context, a domain.Alarm) error
	Delete(ctx context.Context, id domain.AlarmID) error

	GetByID(ctx context.Context, id domain.AlarmID) (domain.Alarm, error)
	List(ctx context.Context) ([]domain.Alarm, error)
}
