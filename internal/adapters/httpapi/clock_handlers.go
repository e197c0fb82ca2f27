package httpapi

import (
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime"
)

func (s *Server) GetClock(w http.ResponseWriter, r *http.Request) {
	var locale *string
	if err := runtime.BindQueryParameter("form", true, false, "locale", r.URL.Query(), &locale); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid locale parameter", map[string]any{"locale": err.Error()})
		return
	}
	tag := ""
	if locale != nil {
		tag = *locale
	}
	writeJSON(w, http.StatusOK, clockFromFace(s.Clock.Display(tag)))
}

func (s *Server) SetHourFormat(w http.ResponseWriter, r *http.Request) {
	var req HourFormatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	f, err := s.Clock.SetHourFormat(r.Context(), req.HourFormat)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hourFormatFromDomain(f))
}

func (s *Server) ToggleHourFormat(w http.ResponseWriter, r *http.Request) {
	f, err := s.Clock.ToggleHourFormat(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hourFormatFromDomain(f))
}

// GetMoonPhase reports the phase at ?at= (RFC 3339), or now when absent.
func (s *Server) GetMoonPhase(w http.ResponseWriter, r *http.Request) {
	var raw *string
	if err := runtime.BindQueryParameter("form", true, false, "at", r.URL.Query(), &raw); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid at parameter", map[string]any{"at": err.Error()})
		return
	}
	at := s.Clock.Now()
	if raw != nil {
		t, err := time.Parse(time.RFC3339, *raw)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "at must be an RFC 3339 timestamp", map[string]any{"at": *raw})
			return
		}
		at = t
	}
	writeJSON(w, http.StatusOK, moonPhaseFromDomain(s.Clock.MoonAt(at)))
}
