package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions configures optional router behavior.
type RouterOptions struct {
	// AccessLog enables chi's request logger.
	AccessLog bool
}

// NewRouter constructs the API HTTP router.
func NewRouter(s *Server) http.Handler {
	return NewRouterWithOptions(s, RouterOptions{})
}

func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/clock", s.GetClock)
	r.Put("/clock/preference", s.SetHourFormat)
	r.Post("/clock/preference/toggle", s.ToggleHourFormat)
	r.Get("/moon", s.GetMoonPhase)

	r.Get("/alarms", s.ListAlarms)
	r.Post("/alarms", s.CreateAlarm)
	r.Get("/alarms/events", s.AlarmEvents)
	r.Post("/alarms/{alarmId}/toggle", s.ToggleAlarm)
	r.Delete("/alarms/{alarmId}", s.DeleteAlarm)

	r.Get("/stopwatch", s.GetStopwatch)
	r.Post("/stopwatch/start", s.StartStopwatch)
	r.Post("/stopwatch/stop", s.StopStopwatch)
	r.Post("/stopwatch/reset", s.ResetStopwatch)

	r.Get("/weather", s.GetWeather)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
	return r
}
