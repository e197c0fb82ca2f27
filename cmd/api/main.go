package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/starclock/starclock-api/internal/adapters/httpapi"
	memalarmrepo "github.com/starclock/starclock-api/internal/adapters/memory/alarmrepo"
	memidempotency "github.com/starclock/starclock-api/internal/adapters/memory/idempotency"
	mempreference "github.com/starclock/starclock-api/internal/adapters/memory/preference"
	"github.com/starclock/starclock-api/internal/adapters/notify"
	"github.com/starclock/starclock-api/internal/adapters/openweather"
	postgres "github.com/starclock/starclock-api/internal/adapters/postgres"
	pgpreference "github.com/starclock/starclock-api/internal/adapters/postgres/preference"
	"github.com/starclock/starclock-api/internal/app/alarms"
	"github.com/starclock/starclock-api/internal/app/clockface"
	"github.com/starclock/starclock-api/internal/app/stopwatch"
	"github.com/starclock/starclock-api/internal/app/weather"
	"github.com/starclock/starclock-api/internal/domain"
	platformclock "github.com/starclock/starclock-api/internal/platform/clock"
	"github.com/starclock/starclock-api/internal/platform/config"
	"github.com/starclock/starclock-api/internal/platform/tick"
	preferenceport "github.com/starclock/starclock-api/internal/ports/out/preference"
	weatherport "github.com/starclock/starclock-api/internal/ports/out/weather"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	clk := platformclock.NewSystemClock(cfg.Location)

	var (
		prefs   preferenceport.Store
		cleanup func()
	)

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Fatalf("invalid postgres config: %v", err)
		}
		cleanup = pool.Close

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = postgres.Migrate(migrateCtx, pool)
		cancel()
		if err != nil {
			pool.Close()
			log.Fatalf("migrate: %v", err)
		}
		prefs = pgpreference.NewStore(pool)
	default:
		prefs = mempreference.NewStore()
	}

	if cleanup != nil {
		defer cleanup()
	}

	clockSvc := clockface.NewService(prefs, clk, cfg.Location, domain.MatchLocale(cfg.Locale))
	if _, err := clockSvc.LoadPreference(context.Background()); err != nil {
		log.Fatalf("load preference: %v", err)
	}

	// Weather stays unavailable without an API key.
	var provider weatherport.Provider
	if cfg.WeatherEnabled() {
		provider = openweather.New(cfg.WeatherBaseURL, cfg.WeatherAPIKey, nil, cfg.WeatherHTTPTimeout)
	} else {
		log.Printf("WEATHER_API_KEY not set; weather badge disabled")
	}

	scheduler := tick.NewScheduler(clk)
	events := notify.NewBroadcaster(16)

	alarmSvc := alarms.NewService(memalarmrepo.NewRepo(), clk)
	watcher := alarms.NewWatcher(alarmSvc, notify.Multi{notify.NewLog(nil), events})

	stopwatchSvc := stopwatch.NewService(clk, scheduler, cfg.StopwatchTickInterval)
	defer stopwatchSvc.Close()

	api := httpapi.NewServer(httpapi.Services{
		Clock:     clockSvc,
		Alarms:    alarmSvc,
		Stopwatch: stopwatchSvc,
		Weather:   weather.NewService(provider),
		Events:    events,
		Idem:      memidempotency.NewStore(),
	})

	handler := httpapi.NewRouterWithOptions(
		api,
		httpapi.RouterOptions{AccessLog: cfg.AccessLog},
	)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		// Event streams end when the process is signalled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	alarmTicks := scheduler.Every(cfg.AlarmTickInterval, func(now time.Time) {
		if _, err := watcher.Tick(ctx, now); err != nil {
			log.Printf("alarm tick: %v", err)
		}
	})
	defer alarmTicks.Stop()

	go func() {
		log.Printf("api listening on :%s (storage=%s, zone=%s)", cfg.Port, cfg.StorageBackend, cfg.Location)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
