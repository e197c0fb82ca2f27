// Package tick provides scoped periodic callbacks for the host loop.
//
// A subscription is acquired with Every and released with Stop. Deliveries of
// one subscription never overlap, and none start after Stop has returned.
package tick

import (
	"sync"
	"time"

	"github.com/robfig/cron"

	clockport "github.com/starclock/starclock-api/internal/ports/out/clock"
)

// Func receives the current time of the scheduler's clock.
type Func func(now time.Time)

// Subscription is a running periodic callback.
type Subscription interface {
	// Stop cancels the subscription. It is safe to call more than once and
	// waits for an in-flight delivery to finish.
	Stop()
}

// Scheduler hands out periodic subscriptions.
//
// Whole-second intervals run on a robfig/cron scheduler aligned to second
// boundaries; any other interval (e.g. the 10ms stopwatch cadence) runs on a
// time.Ticker.
type Scheduler struct {
	clk clockport.Clock
}

func NewScheduler(clk clockport.Clock) *Scheduler {
	return &Scheduler{clk: clk}
}

func (s *Scheduler) Every(d time.Duration, fn Func) Subscription {
	if d <= 0 {
		panic("tick: non-positive interval")
	}
	sub := &subscription{clk: s.clk, fn: fn}
	if d >= time.Second && d%time.Second == 0 {
		c := cron.New()
		c.Schedule(cron.Every(d), cron.FuncJob(sub.deliver))
		c.Start()
		sub.release = c.Stop
		return sub
	}

	t := time.NewTicker(d)
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-quit:
				return
			case <-t.C:
				sub.deliver()
			}
		}
	}()
	sub.release = func() {
		t.Stop()
		close(quit)
		<-done
	}
	return sub
}

type subscription struct {
	clk clockport.Clock
	fn  Func

	// mu serializes deliveries with each other and with Stop.
	mu      sync.Mutex
	stopped bool
	release func()
}

func (s *subscription) deliver() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.fn(s.clk.Now())
}

func (s *subscription) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	release := s.release
	s.mu.Unlock()

	if release != nil {
		release()
	}
}
