package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port string

	StorageBackend string
	DatabaseURL    string

	Location *time.Location
	Locale   string

	AlarmTickInterval     time.Duration
	StopwatchTickInterval time.Duration

	WeatherAPIKey      string
	WeatherBaseURL     string
	WeatherHTTPTimeout time.Duration

	AccessLog bool
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Port:                  getenv("PORT", "8080"),
		StorageBackend:        strings.ToLower(getenv("STORAGE_BACKEND", StorageMemory)),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		Locale:                getenv("CLOCK_LOCALE", "ko-KR"),
		AlarmTickInterval:     time.Second,
		StopwatchTickInterval: 10 * time.Millisecond,
		WeatherAPIKey:         os.Getenv("WEATHER_API_KEY"),
		WeatherBaseURL:        getenv("WEATHER_BASE_URL", "https://api.openweathermap.org"),
		WeatherHTTPTimeout:    5 * time.Second,
		AccessLog:             true,
	}

	switch cfg.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("STORAGE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND must be memory or postgres, got %q", cfg.StorageBackend)
	}

	loc, err := time.LoadLocation(getenv("CLOCK_TIMEZONE", "Local"))
	if err != nil {
		return Config{}, fmt.Errorf("CLOCK_TIMEZONE must be an IANA zone name (e.g. Asia/Seoul): %w", err)
	}
	cfg.Location = loc

	if cfg.AlarmTickInterval, err = durationFromEnv("ALARM_TICK_INTERVAL", cfg.AlarmTickInterval); err != nil {
		return Config{}, err
	}
	if cfg.StopwatchTickInterval, err = durationFromEnv("STOPWATCH_TICK_INTERVAL", cfg.StopwatchTickInterval); err != nil {
		return Config{}, err
	}
	if cfg.WeatherHTTPTimeout, err = durationFromEnv("WEATHER_HTTP_TIMEOUT", cfg.WeatherHTTPTimeout); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("HTTP_ACCESS_LOG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("HTTP_ACCESS_LOG must be a boolean: %w", err)
		}
		cfg.AccessLog = b
	}

	return cfg, nil
}

// WeatherEnabled reports whether a weather provider should be wired.
func (c Config) WeatherEnabled() bool {
	return c.WeatherAPIKey != ""
}

func durationFromEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. %s): %w", k, def, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", k, d)
	}
	return d, nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
