package notify

import (
	"context"
	"errors"

	"github.com/starclock/starclock-api/internal/ports/out/notifier"
)

// Multi delivers to every notifier and joins their errors.
type Multi []notifier.Notifier

func (m Multi) Notify(ctx context.Context, f notifier.Firing) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
