package preference

import (
	"context"

	"github.com/starclock/starclock-api/internal/domain"
)

// Store persists the 24h/12h display preference across sessions.
type Store interface {
	// Get returns the stored format. ok is false when nothing has been stored yet.
	Get(ctx context.Context) (f domain.HourFormat, ok bool, err error)
	Set(ctx context.Context, f domain.HourFormat) error
}
