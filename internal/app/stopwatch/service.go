package stopwatch

import (
	"sync"
	"time"

	"github.com/starclock/starclock-api/internal/domain"
	clockport "github.com/starclock/starclock-api/internal/ports/out/clock"
	"github.com/starclock/starclock-api/internal/platform/tick"
)

// Ticker is the subset of tick.Scheduler the service needs.
type Ticker interface {
	Every(d time.Duration, fn tick.Func) tick.Subscription
}

// Snapshot is the stopwatch as the widget renders it.
type Snapshot struct {
	IsRunning bool
	Elapsed   time.Duration
	StartTime *time.Time
	Display   string
}

// Service owns the single stopwatch of the host.
//
// While running it holds a tick subscription at the configured cadence; the
// subscription is released on Stop, Reset and Close.
type Service struct {
	clk      clockport.Clock
	ticker   Ticker
	interval time.Duration

	mu    sync.Mutex
	state domain.TimerState
	sub   tick.Subscription
}

// NewService returns a stopped stopwatch. A nil ticker disables background
// ticking; Snapshot still ticks on read.
func NewService(clk clockport.Clock, ticker Ticker, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	return &Service{clk: clk, ticker: ticker, interval: interval}
}

func (s *Service) Start() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsRunning {
		s.state.Start(s.clk.Now())
		if s.ticker != nil && s.sub == nil {
			s.sub = s.ticker.Every(s.interval, s.onTick)
		}
	}
	return s.snapshotLocked()
}

func (s *Service) Stop() Snapshot {
	s.mu.Lock()
	if s.state.IsRunning {
		s.state.Tick(s.clk.Now())
		s.state.Stop()
	}
	sub := s.detachLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	// Released outside the lock: an in-flight onTick may be waiting for it.
	if sub != nil {
		sub.Stop()
	}
	return snap
}

func (s *Service) Reset() Snapshot {
	s.mu.Lock()
	s.state.Reset()
	sub := s.detachLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if sub != nil {
		sub.Stop()
	}
	return snap
}

// Snapshot returns the current state, folding in a tick at the read instant.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Tick(s.clk.Now())
	return s.snapshotLocked()
}

// Close releases the tick subscription. The stopwatch state is kept.
func (s *Service) Close() {
	s.mu.Lock()
	sub := s.detachLocked()
	s.mu.Unlock()
	if sub != nil {
		sub.Stop()
	}
}

func (s *Service) onTick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Tick(now)
}

func (s *Service) detachLocked() tick.Subscription {
	sub := s.sub
	s.sub = nil
	return sub
}

func (s *Service) snapshotLocked() Snapshot {
	var start *time.Time
	if s.state.IsRunning && s.state.StartTime != nil {
		v := *s.state.StartTime
		start = &v
	}
	return Snapshot{
		IsRunning: s.state.IsRunning,
		Elapsed:   s.state.Elapsed,
		StartTime: start,
		Display:   domain.FormatElapsed(s.state.Elapsed),
	}
}
