package tick

import (
	"sync/atomic"
	"testing"
	"time"

	memclock "github.com/starclock/starclock-api/internal/adapters/memory/clock"
)

func TestScheduler_SubSecondDeliversUntilStopped(t *testing.T) {
	t.Parallel()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewScheduler(clk)

	var n atomic.Int64
	sub := s.Every(5*time.Millisecond, func(now time.Time) {
		if !now.Equal(clk.Now()) {
			t.Errorf("now=%v, want clock time %v", now, clk.Now())
		}
		n.Add(1)
	})

	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	sub.Stop()
	if n.Load() < 3 {
		t.Fatalf("deliveries=%d, want at least 3", n.Load())
	}

	after := n.Load()
	time.Sleep(30 * time.Millisecond)
	if n.Load() != after {
		t.Fatalf("delivered %d times after Stop", n.Load()-after)
	}
	sub.Stop() // idempotent
}

func TestScheduler_WholeSecondUsesCron(t *testing.T) {
	t.Parallel()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewScheduler(clk)

	fired := make(chan time.Time, 4)
	sub := s.Every(time.Second, func(now time.Time) {
		select {
		case fired <- now:
		default:
		}
	})
	defer sub.Stop()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatalf("no delivery within 3s")
	}
}

func TestScheduler_DeliveriesDoNotOverlap(t *testing.T) {
	t.Parallel()

	s := NewScheduler(memclock.NewManualClock(time.Unix(0, 0)))

	var inFlight, maxInFlight atomic.Int64
	var n atomic.Int64
	sub := s.Every(time.Millisecond, func(time.Time) {
		cur := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if cur <= m || maxInFlight.CompareAndSwap(m, cur) {
				break
			}
		}
		time.Sleep(3 * time.Millisecond)
		inFlight.Add(-1)
		n.Add(1)
	})
	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 5 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	sub.Stop()

	if maxInFlight.Load() != 1 {
		t.Fatalf("max concurrent deliveries=%d, want 1", maxInFlight.Load())
	}
}
