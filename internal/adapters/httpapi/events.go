package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// AlarmEvents streams alarm firings as server-sent events until the client
// goes away.
func (s *Server) AlarmEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || s.Events == nil {
		writeError(w, r, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "event stream unavailable", nil)
		return
	}

	events, cancel := s.Events.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	clientGone := r.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case f, ok := <-events:
			if !ok {
				return
			}
			b, err := json.Marshal(alarmEventFromFiring(f))
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "event: alarm\ndata: %s\n\n", b)
			flusher.Flush()
		}
	}
}
