package weather

import (
	"context"
	"log"
	"math"

	weatherport "github.com/starclock/starclock-api/internal/ports/out/weather"
)

// Status of a badge lookup.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
)

const defaultLocationName = "Unknown location"

// Badge is what the weather widget renders.
type Badge struct {
	Status       Status
	TemperatureC int
	Description  string
	IconCode     string
	Emoji        string
	Location     string
}

var iconEmoji = map[string]string{
	"01d": "☀️",
	"01n": "🌙",
	"02d": "⛅",
	"02n": "☁️",
	"03d": "☁️",
	"03n": "☁️",
	"04d": "☁️",
	"04n": "☁️",
	"09d": "🌧️",
	"09n": "🌧️",
	"10d": "🌦️",
	"10n": "🌧️",
	"11d": "⛈️",
	"11n": "⛈️",
	"13d": "❄️",
	"13n": "❄️",
	"50d": "🌫️",
	"50n": "🌫️",
}

// EmojiForIcon maps a provider icon code to the badge emoji (🌡️ when unknown).
func EmojiForIcon(code string) string {
	if e, ok := iconEmoji[code]; ok {
		return e
	}
	return "🌡️"
}

// Service turns provider readings into badges. Provider failures become an
// unavailable badge; they are never returned to the caller.
type Service struct {
	provider weatherport.Provider
}

// NewService accepts a nil provider, in which case every lookup is unavailable.
func NewService(p weatherport.Provider) *Service {
	return &Service{provider: p}
}

func (s *Service) Badge(ctx context.Context, at weatherport.Coordinates) Badge {
	if s.provider == nil {
		return Badge{Status: StatusUnavailable}
	}
	r, err := s.provider.Current(ctx, at)
	if err != nil {
		log.Printf("weather lookup (%.4f,%.4f) failed: %v", at.Latitude, at.Longitude, err)
		return Badge{Status: StatusUnavailable}
	}
	loc := r.LocationName
	if loc == "" {
		loc = defaultLocationName
	}
	return Badge{
		Status:       StatusOK,
		TemperatureC: roundHalfUp(r.TemperatureC),
		Description:  r.Description,
		IconCode:     r.IconCode,
		Emoji:        EmojiForIcon(r.IconCode),
		Location:     loc,
	}
}

// roundHalfUp rounds halves toward positive infinity, so -2.5 reads as -2.
func roundHalfUp(c float64) int {
	return int(math.Floor(c + 0.5))
}
