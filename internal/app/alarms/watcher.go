package alarms

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/starclock/starclock-api/internal/domain"
	"github.com/starclock/starclock-api/internal/ports/out/notifier"
)

// Watcher is the host side of alarm matching: on every tick it asks the
// service which alarms are due and notifies each of them once per minute.
type Watcher struct {
	svc    *Service
	notify notifier.Notifier

	mu sync.Mutex
	// fired holds the alarms already notified during minute.
	minute string
	fired  map[domain.AlarmID]struct{}
}

func NewWatcher(svc *Service, n notifier.Notifier) *Watcher {
	return &Watcher{
		svc:    svc,
		notify: n,
		fired:  make(map[domain.AlarmID]struct{}),
	}
}

// Tick notifies alarms due at now that have not been notified in this minute yet.
// It returns the firings it delivered.
func (w *Watcher) Tick(ctx context.Context, now time.Time) ([]notifier.Firing, error) {
	due, err := w.svc.Due(ctx, now)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	minute := now.Format("2006-01-02 " + domain.AlarmTimeLayout)
	if minute != w.minute {
		w.minute = minute
		w.fired = make(map[domain.AlarmID]struct{})
	}
	pending := make([]domain.Alarm, 0, len(due))
	for _, a := range due {
		if _, ok := w.fired[a.ID]; ok {
			continue
		}
		pending = append(pending, a)
	}
	w.mu.Unlock()

	out := make([]notifier.Firing, 0, len(pending))
	for _, a := range pending {
		f := notifier.Firing{Alarm: a, At: now}
		if w.notify != nil {
			if err := w.notify.Notify(ctx, f); err != nil {
				// Left unmarked so the next tick in this minute retries it.
				log.Printf("alarm %s (%s): notify failed: %v", a.ID, a.Time, err)
				continue
			}
		}
		w.markFired(minute, a.ID)
		out = append(out, f)
	}
	return out, nil
}

// markFired records id as notified, unless a later tick already moved on.
func (w *Watcher) markFired(minute string, id domain.AlarmID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if minute == w.minute {
		w.fired[id] = struct{}{}
	}
}
