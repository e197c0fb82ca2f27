package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starclock/starclock-api/internal/domain"
	"github.com/starclock/starclock-api/internal/ports/out/idempotency"
)

const idempotencyKeyHeader = "Idempotency-Key"

func (s *Server) ListAlarms(w http.ResponseWriter, r *http.Request) {
	as, err := s.Alarms.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]Alarm, 0, len(as))
	for _, a := range as {
		out = append(out, alarmFromDomain(a))
	}
	writeJSON(w, http.StatusOK, AlarmListResponse{Alarms: out})
}

// CreateAlarm adds an active alarm. With an Idempotency-Key header a retry
// of the same body replays the first response instead of adding a duplicate.
func (s *Server) CreateAlarm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateAlarmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}

	bodyHash, err := hashCreateAlarmBody(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	useIdem := key != "" && s.Idem != nil
	respFP := idempotency.Fingerprint{
		Key:      idempotency.Key(key),
		Method:   http.MethodPost,
		Route:    "/alarms",
		BodyHash: bodyHash,
	}

	if useIdem {
		// Requests sharing a key run one at a time so a retry sees the first result.
		unlock := s.idemLocks.lock(key)
		defer unlock()

		metaFP := respFP
		metaFP.BodyHash = ""
		if meta, ok, err := s.Idem.Get(ctx, metaFP); err != nil {
			writeServiceError(w, r, err)
			return
		} else if ok {
			if string(meta.Body) != bodyHash {
				writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSED", "idempotency key reuse with different payload", nil)
				return
			}
		} else {
			_ = s.Idem.Put(ctx, metaFP, idempotency.Record{
				StatusCode:  0,
				ContentType: "text/plain",
				Body:        []byte(bodyHash),
				CreatedAt:   s.now(),
			})
		}

		if rec, ok, err := s.Idem.Get(ctx, respFP); err != nil {
			writeServiceError(w, r, err)
			return
		} else if ok && rec.StatusCode == http.StatusCreated && strings.HasPrefix(rec.ContentType, "application/json") {
			w.Header().Set("Content-Type", rec.ContentType)
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.Body)
			return
		}
	}

	a, err := s.Alarms.Add(ctx, req.Time)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	b, err := json.Marshal(AlarmResponse{Alarm: alarmFromDomain(a)})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	b = append(b, '\n')

	// Store successful response for replay.
	if useIdem {
		_ = s.Idem.Put(ctx, respFP, idempotency.Record{
			StatusCode:  http.StatusCreated,
			ContentType: "application/json",
			Body:        b,
			CreatedAt:   s.now(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(b)
}

func (s *Server) ToggleAlarm(w http.ResponseWriter, r *http.Request) {
	a, err := s.Alarms.Toggle(r.Context(), domain.AlarmID(chi.URLParam(r, "alarmId")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AlarmResponse{Alarm: alarmFromDomain(a)})
}

func (s *Server) DeleteAlarm(w http.ResponseWriter, r *http.Request) {
	if err := s.Alarms.Delete(r.Context(), domain.AlarmID(chi.URLParam(r, "alarmId"))); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func hashCreateAlarmBody(b CreateAlarmRequest) (string, error) {
	// The service trims the time, so " 07:00" and "07:00" are the same request.
	canon := b
	canon.Time = strings.TrimSpace(canon.Time)

	raw, err := json.Marshal(canon)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
