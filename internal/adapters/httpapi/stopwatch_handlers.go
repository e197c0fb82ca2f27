package httpapi

import (
	"net/http"
)

func (s *Server) GetStopwatch(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, stopwatchFromSnapshot(s.Stopwatch.Snapshot()))
}

func (s *Server) StartStopwatch(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, stopwatchFromSnapshot(s.Stopwatch.Start()))
}

func (s *Server) StopStopwatch(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, stopwatchFromSnapshot(s.Stopwatch.Stop()))
}

func (s *Server) ResetStopwatch(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, stopwatchFromSnapshot(s.Stopwatch.Reset()))
}
