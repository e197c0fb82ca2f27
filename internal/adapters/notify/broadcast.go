package notify

import (
	"context"
	"sync"

	"github.com/starclock/starclock-api/internal/ports/out/notifier"
)

// Broadcaster fans firings out to live subscribers (e.g. SSE streams).
// Slow subscribers miss firings rather than blocking the tick.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan notifier.Firing]struct{}
	buf  int
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 8
	}
	return &Broadcaster{subs: make(map[chan notifier.Firing]struct{}), buf: buffer}
}

// Subscribe registers a listener. The returned cancel func closes the channel
// and must be called when the listener goes away.
func (b *Broadcaster) Subscribe() (<-chan notifier.Firing, func()) {
	ch := make(chan notifier.Firing, b.buf)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broadcaster) Notify(_ context.Context, f notifier.Firing) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- f:
		default:
		}
	}
	return nil
}

func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
