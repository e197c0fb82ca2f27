package clockface

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/starclock/starclock-api/internal/domain"
	clockport "github.com/starclock/starclock-api/internal/ports/out/clock"
	"github.com/starclock/starclock-api/internal/ports/out/preference"
)

// Face is everything the clock widget renders for one tick.
type Face struct {
	At         time.Time
	Time       string
	Date       string
	Locale     domain.Locale
	HourFormat domain.HourFormat
	Moon       domain.MoonPhase
}

// Service renders the clock face and owns the 24h/12h preference.
//
// The preference is read from the store once (LoadPreference) and cached;
// every change is written through.
type Service struct {
	prefs preference.Store
	clk   clockport.Clock

	defaultLocale domain.Locale
	moonEpoch     time.Time

	mu     sync.RWMutex
	format domain.HourFormat
}

func NewService(prefs preference.Store, clk clockport.Clock, loc *time.Location, defaultLocale domain.Locale) *Service {
	if defaultLocale == "" {
		defaultLocale = domain.DefaultLocale
	}
	return &Service{
		prefs:         prefs,
		clk:           clk,
		defaultLocale: defaultLocale,
		moonEpoch:     domain.NewMoonEpoch(loc),
		format:        domain.DefaultHourFormat,
	}
}

// LoadPreference reads the stored format. A missing preference keeps the default.
func (s *Service) LoadPreference(ctx context.Context) (domain.HourFormat, error) {
	f, ok, err := s.prefs.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("load hour format: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.format = f
	}
	log.Printf("clock face: hour format %s", s.format)
	return s.format, nil
}

func (s *Service) HourFormat() domain.HourFormat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.format
}

// Display renders the face for the current instant. An empty locale uses the default.
func (s *Service) Display(locale string) Face {
	return s.DisplayAt(s.clk.Now(), locale)
}

func (s *Service) DisplayAt(now time.Time, locale string) Face {
	loc := s.defaultLocale
	if locale != "" {
		loc = domain.MatchLocale(locale)
	}
	f := s.HourFormat()
	return Face{
		At:         now,
		Time:       domain.FormatTime(now, f.Use24Hour()),
		Date:       domain.FormatDate(now, loc),
		Locale:     loc,
		HourFormat: f,
		Moon:       s.MoonAt(now),
	}
}

// Now is the current instant in the face's location.
func (s *Service) Now() time.Time {
	return s.clk.Now()
}

func (s *Service) MoonAt(t time.Time) domain.MoonPhase {
	return domain.CalculateMoonPhase(t, s.moonEpoch)
}

// ToggleHourFormat flips the preference and persists it.
func (s *Service) ToggleHourFormat(ctx context.Context) (domain.HourFormat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.format.Toggled()
	if err := s.prefs.Set(ctx, next); err != nil {
		return "", fmt.Errorf("store hour format: %w", err)
	}
	s.format = next
	return next, nil
}

// SetHourFormat stores an explicit "24" or "12" token.
func (s *Service) SetHourFormat(ctx context.Context, token string) (domain.HourFormat, error) {
	f, err := domain.ParseHourFormat(token)
	if err != nil {
		return "", &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "invalid hourFormat",
			Details: map[string]any{"hourFormat": `must be "24" or "12"`},
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.prefs.Set(ctx, f); err != nil {
		return "", fmt.Errorf("store hour format: %w", err)
	}
	s.format = f
	return f, nil
}
