package httpapi

import (
	"net/http"

	"github.com/oapi-codegen/runtime"

	weatherport "github.com/starclock/starclock-api/internal/ports/out/weather"
)

// GetWeather always answers 200; a failed lookup is reported in the body.
func (s *Server) GetWeather(w http.ResponseWriter, r *http.Request) {
	var at weatherport.Coordinates
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "lat", q, &at.Latitude); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid lat parameter", map[string]any{"lat": err.Error()})
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "lon", q, &at.Longitude); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid lon parameter", map[string]any{"lon": err.Error()})
		return
	}
	if at.Latitude < -90 || at.Latitude > 90 || at.Longitude < -180 || at.Longitude > 180 {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "coordinates out of range", map[string]any{
			"lat": at.Latitude,
			"lon": at.Longitude,
		})
		return
	}
	writeJSON(w, http.StatusOK, weatherFromBadge(s.Weather.Badge(r.Context(), at)))
}
