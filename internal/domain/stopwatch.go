package domain

import (
	"fmt"
	"time"
)

// TimerState is the stopwatch accumulator.
//
// While running, Elapsed is now-StartTime as of the last Tick. While stopped,
// Elapsed is frozen and StartTime is meaningless until the next Start.
// The zero value is a stopped stopwatch at 00:00.00.
type TimerState struct {
	IsRunning bool
	Elapsed   time.Duration
	StartTime *time.Time
}

// Start resumes the stopwatch so that the accumulated Elapsed carries over.
func (s *TimerState) Start(now time.Time) {
	if s.IsRunning {
		return
	}
	start := now.Add(-s.Elapsed)
	s.StartTime = &start
	s.IsRunning = true
}

// Stop freezes Elapsed at its last ticked value.
func (s *TimerState) Stop() {
	if !s.IsRunning {
		return
	}
	s.IsRunning = false
}

// Tick recomputes Elapsed while running.
func (s *TimerState) Tick(now time.Time) {
	if !s.IsRunning || s.StartTime == nil {
		return
	}
	s.Elapsed = now.Sub(*s.StartTime)
}

func (s *TimerState) Reset() {
	*s = TimerState{}
}

// FormatElapsed renders d as "MM:SS.cc". Minutes are not wrapped at 60.
func FormatElapsed(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	centis := (ms % 1000) / 10
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, centis)
}
