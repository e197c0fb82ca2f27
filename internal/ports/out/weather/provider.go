package weather

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the provider could not produce a reading.
var ErrUnavailable = errors.New("weather unavailable")

// Coordinates is a geolocation fix supplied by the caller.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Reading is the current weather at a location.
type Reading struct {
	TemperatureC float64
	Description  string
	IconCode     string
	LocationName string
}

// Provider looks up the current weather. Implementations do not retry or cache.
type Provider interface {
	Current(ctx context.Context, at Coordinates) (Reading, error)
}
