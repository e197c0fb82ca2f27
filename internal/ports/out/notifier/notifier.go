package notifier

import (
	"context"
	"time"

	"github.com/starclock/starclock-api/internal/domain"
)

// Firing is one alarm reaching its minute.
type Firing struct {
	Alarm domain.Alarm
	At    time.Time
}

// Notifier delivers alarm firings to the user. Whether and how the user is
// alerted is up to the implementation.
type Notifier interface {
	Notify(ctx context.Context, f Firing) error
}
