package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starclock/starclock-api/internal/adapters/httpapi"
	memalarmrepo "github.com/starclock/starclock-api/internal/adapters/memory/alarmrepo"
	memclock "github.com/starclock/starclock-api/internal/adapters/memory/clock"
	memidempotency "github.com/starclock/starclock-api/internal/adapters/memory/idempotency"
	mempreference "github.com/starclock/starclock-api/internal/adapters/memory/preference"
	"github.com/starclock/starclock-api/internal/adapters/notify"
	pgpreference "github.com/starclock/starclock-api/internal/adapters/postgres/preference"
	postgres_testutil "github.com/starclock/starclock-api/internal/adapters/postgres/testutil"
	"github.com/starclock/starclock-api/internal/app/alarms"
	"github.com/starclock/starclock-api/internal/app/clockface"
	"github.com/starclock/starclock-api/internal/app/stopwatch"
	"github.com/starclock/starclock-api/internal/app/weather"
	"github.com/starclock/starclock-api/internal/domain"
	preferenceport "github.com/starclock/starclock-api/internal/ports/out/preference"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client

	clk    *memclock.ManualClock
	alarms *alarms.Service
	events *notify.Broadcaster
	prefs  preferenceport.Store
}

func openPreferenceStore(t *testing.T, b backend) preferenceport.Store {
	t.Helper()
	switch b {
	case backendPostgres:
		return pgpreference.NewStore(postgres_testutil.OpenMigratedPool(t))
	case backendMemory:
		return mempreference.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
		return nil
	}
}

// newTestServer boots the full stack on prefs, the way cmd/api does.
func newTestServer(t *testing.T, prefs preferenceport.Store) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 6, 6, 59, 30, 0, time.UTC))
	events := notify.NewBroadcaster(8)

	clockSvc := clockface.NewService(prefs, clk, time.UTC, domain.LocaleKorean)
	if _, err := clockSvc.LoadPreference(context.Background()); err != nil {
		t.Fatalf("LoadPreference: %v", err)
	}
	alarmSvc := alarms.NewService(memalarmrepo.NewRepo(), clk)
	stopwatchSvc := stopwatch.NewService(clk, nil, 0)
	t.Cleanup(stopwatchSvc.Close)

	api := httpapi.NewServer(httpapi.Services{
		Clock:     clockSvc,
		Alarms:    alarmSvc,
		Stopwatch: stopwatchSvc,
		Weather:   weather.NewService(nil),
		Events:    events,
		Idem:      memidempotency.NewStore(),
	})
	srv := httptest.NewServer(httpapi.NewRouter(api))
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
		clk:     clk,
		alarms:  alarmSvc,
		events:  events,
		prefs:   prefs,
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, body any, headers map[string]string) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireStatus(t *testing.T, status int, body []byte, want int) {
	t.Helper()
	if status != want {
		t.Fatalf("status=%d want=%d body=%s", status, want, string(body))
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, status, body, wantStatus)
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
