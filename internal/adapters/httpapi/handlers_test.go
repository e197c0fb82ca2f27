package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	memalarmrepo "github.com/starclock/starclock-api/internal/adapters/memory/alarmrepo"
	memclock "github.com/starclock/starclock-api/internal/adapters/memory/clock"
	memidempotency "github.com/starclock/starclock-api/internal/adapters/memory/idempotency"
	mempreference "github.com/starclock/starclock-api/internal/adapters/memory/preference"
	"github.com/starclock/starclock-api/internal/adapters/notify"
	"github.com/starclock/starclock-api/internal/app/alarms"
	"github.com/starclock/starclock-api/internal/app/clockface"
	"github.com/starclock/starclock-api/internal/app/stopwatch"
	"github.com/starclock/starclock-api/internal/app/weather"
	"github.com/starclock/starclock-api/internal/domain"
	"github.com/starclock/starclock-api/internal/ports/out/idempotency"
	"github.com/starclock/starclock-api/internal/ports/out/notifier"
	weatherport "github.com/starclock/starclock-api/internal/ports/out/weather"
)

type fakeWeather struct {
	reading weatherport.Reading
	err     error
}

func (f fakeWeather) Current(context.Context, weatherport.Coordinates) (weatherport.Reading, error) {
	return f.reading, f.err
}

type testAPI struct {
	h      http.Handler
	clk    *memclock.ManualClock
	events *notify.Broadcaster
	idem   *memidempotency.Store
}

// Saturday, 09:30 UTC.
var testNow = time.Date(2024, 1, 6, 9, 30, 0, 0, time.UTC)

func newTestAPI(t *testing.T, provider weatherport.Provider) *testAPI {
	t.Helper()

	clk := memclock.NewManualClock(testNow)
	events := notify.NewBroadcaster(4)
	idem := memidempotency.NewStore()
	api := NewServer(Services{
		Clock:     clockface.NewService(mempreference.NewStore(), clk, time.UTC, domain.LocaleKorean),
		Alarms:    alarms.NewService(memalarmrepo.NewRepo(), clk),
		Stopwatch: stopwatch.NewService(clk, nil, 0),
		Weather:   weather.NewService(provider),
		Events:    events,
		Idem:      idem,
	})
	return &testAPI{h: NewRouter(api), clk: clk, events: events, idem: idem}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d want %d body=%s", rec.Code, want, rec.Body.String())
	}
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	requireStatus(t, rec, status)
	er := decodeBody[ErrorResponse](t, rec)
	if er.Error.Code != code {
		t.Fatalf("code: got %q want %q", er.Error.Code, code)
	}
	if rid, err := er.Error.RequestId.Get(); err != nil || rid == "" {
		t.Fatalf("expected requestId to be a non-empty string")
	}
	return er
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	rec := a.do(t, http.MethodGet, "/healthz", nil, nil)
	requireStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "ok" {
		t.Fatalf("body=%q", rec.Body.String())
	}
}

func TestUnknownRoute_404JSON(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	requireErrorCode(t, a.do(t, http.MethodGet, "/nope", nil, nil), http.StatusNotFound, "NOT_FOUND")
}

func TestClock_DefaultFace(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	rec := a.do(t, http.MethodGet, "/clock", nil, nil)
	requireStatus(t, rec, http.StatusOK)

	got := decodeBody[ClockResponse](t, rec)
	if got.Time != "09:30:00" || !got.Use24Hour || got.HourFormat != "24" {
		t.Fatalf("time fields: %+v", got)
	}
	if got.DateText != "2024년 1월 6일 토요일" || got.Locale != "ko-KR" {
		t.Fatalf("date fields: %+v", got)
	}
	if got.Date.Format("2006-01-02") != "2024-01-06" {
		t.Fatalf("date=%v", got.Date)
	}
	if got.Moon.Symbol == "" || got.Moon.Phase < 0 || got.Moon.Phase >= 1 {
		t.Fatalf("moon=%+v", got.Moon)
	}
}

func TestClock_LocaleQuery(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	rec := a.do(t, http.MethodGet, "/clock?locale=en-US", nil, nil)
	requireStatus(t, rec, http.StatusOK)

	got := decodeBody[ClockResponse](t, rec)
	if got.DateText != "Saturday, January 6, 2024" || got.Locale != "en-US" {
		t.Fatalf("got %+v", got)
	}
}

func TestClock_SetAndToggleHourFormat(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodPut, "/clock/preference", HourFormatRequest{HourFormat: "12"}, nil)
	requireStatus(t, rec, http.StatusOK)
	if diff := cmp.Diff(HourFormatResponse{HourFormat: "12", Use24Hour: false}, decodeBody[HourFormatResponse](t, rec)); diff != "" {
		t.Fatalf("set (-want +got):\n%s", diff)
	}

	face := decodeBody[ClockResponse](t, a.do(t, http.MethodGet, "/clock", nil, nil))
	if face.Time != "09:30:00 AM" {
		t.Fatalf("12h time=%q", face.Time)
	}

	rec = a.do(t, http.MethodPost, "/clock/preference/toggle", nil, nil)
	requireStatus(t, rec, http.StatusOK)
	if got := decodeBody[HourFormatResponse](t, rec); got.HourFormat != "24" || !got.Use24Hour {
		t.Fatalf("toggle=%+v", got)
	}
}

func TestClock_SetHourFormat_Invalid_422(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	rec := a.do(t, http.MethodPut, "/clock/preference", HourFormatRequest{HourFormat: "13"}, nil)
	er := requireErrorCode(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR")
	if !er.Error.Details.IsSpecified() {
		t.Fatalf("expected details")
	}
}

func TestClock_SetHourFormat_BadJSON_400(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	req := httptest.NewRequest(http.MethodPut, "/clock/preference", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	requireErrorCode(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestMoon_AtEpochIsNew(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	rec := a.do(t, http.MethodGet, "/moon?at=2000-01-06T18:14:00Z", nil, nil)
	requireStatus(t, rec, http.StatusOK)

	got := decodeBody[MoonPhase](t, rec)
	want := MoonPhase{Phase: 0, Bucket: "new", Symbol: "🌑", Illumination: 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("moon (-want +got):\n%s", diff)
	}
}

func TestMoon_BadAt_422(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	requireErrorCode(t, a.do(t, http.MethodGet, "/moon?at=yesterday", nil, nil), http.StatusUnprocessableEntity, "VALIDATION_ERROR")
}

func TestAlarms_Lifecycle(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodPost, "/alarms", CreateAlarmRequest{Time: "07:00"}, nil)
	requireStatus(t, rec, http.StatusCreated)
	created := decodeBody[AlarmResponse](t, rec).Alarm
	if created.ID == "" || created.Time != "07:00" || !created.IsActive || !created.CreatedAt.Equal(testNow) {
		t.Fatalf("created=%+v", created)
	}

	list := decodeBody[AlarmListResponse](t, a.do(t, http.MethodGet, "/alarms", nil, nil))
	if diff := cmp.Diff([]Alarm{created}, list.Alarms); diff != "" {
		t.Fatalf("list (-want +got):\n%s", diff)
	}

	rec = a.do(t, http.MethodPost, "/alarms/"+created.ID+"/toggle", nil, nil)
	requireStatus(t, rec, http.StatusOK)
	if got := decodeBody[AlarmResponse](t, rec).Alarm; got.IsActive {
		t.Fatalf("expected inactive after toggle: %+v", got)
	}

	requireStatus(t, a.do(t, http.MethodDelete, "/alarms/"+created.ID, nil, nil), http.StatusNoContent)
	requireErrorCode(t, a.do(t, http.MethodDelete, "/alarms/"+created.ID, nil, nil), http.StatusNotFound, "ALARM_NOT_FOUND")
	requireErrorCode(t, a.do(t, http.MethodPost, "/alarms/missing/toggle", nil, nil), http.StatusNotFound, "ALARM_NOT_FOUND")

	list = decodeBody[AlarmListResponse](t, a.do(t, http.MethodGet, "/alarms", nil, nil))
	if list.Alarms == nil || len(list.Alarms) != 0 {
		t.Fatalf("expected empty non-null list, got %#v", list.Alarms)
	}
}

func TestAlarms_Create_InvalidTime_422(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	for _, in := range []string{"", "24:00", "7:00", "07:60"} {
		requireErrorCode(t, a.do(t, http.MethodPost, "/alarms", CreateAlarmRequest{Time: in}, nil), http.StatusUnprocessableEntity, "VALIDATION_ERROR")
	}
}

func TestAlarms_Create_IdempotencyReplay(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	hdr := map[string]string{"Idempotency-Key": "k-1"}

	first := a.do(t, http.MethodPost, "/alarms", CreateAlarmRequest{Time: "07:00"}, hdr)
	requireStatus(t, first, http.StatusCreated)

	// Whitespace is canonicalized before hashing.
	second := a.do(t, http.MethodPost, "/alarms", CreateAlarmRequest{Time: " 07:00"}, hdr)
	requireStatus(t, second, http.StatusCreated)
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replayed response")
	}
	if decodeBody[AlarmResponse](t, first).Alarm.ID != decodeBody[AlarmResponse](t, second).Alarm.ID {
		t.Fatalf("replay returned a different alarm")
	}

	list := decodeBody[AlarmListResponse](t, a.do(t, http.MethodGet, "/alarms", nil, nil))
	if len(list.Alarms) != 1 {
		t.Fatalf("expected one alarm, got %d", len(list.Alarms))
	}

	requireErrorCode(t, a.do(t, http.MethodPost, "/alarms", CreateAlarmRequest{Time: "08:00"}, hdr), http.StatusConflict, "IDEMPOTENCY_KEY_REUSED")

	// Without a key every POST creates an alarm.
	requireStatus(t, a.do(t, http.MethodPost, "/alarms", CreateAlarmRequest{Time: "07:00"}, nil), http.StatusCreated)
	list = decodeBody[AlarmListResponse](t, a.do(t, http.MethodGet, "/alarms", nil, nil))
	if len(list.Alarms) != 2 {
		t.Fatalf("expected two alarms, got %d", len(list.Alarms))
	}
}

func TestAlarms_Create_IdempotencyConcurrentRetries(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)

	const n = 8
	codes := make([]int, n)
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/alarms", strings.NewReader(`{"time":"07:00"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Idempotency-Key", "k-race")
			rec := httptest.NewRecorder()
			a.h.ServeHTTP(rec, req)
			codes[i] = rec.Code
			var body AlarmResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err == nil {
				ids[i] = body.Alarm.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if codes[i] != http.StatusCreated || ids[i] == "" || ids[i] != ids[0] {
			t.Fatalf("request %d: status=%d id=%q, want 201 with id %q", i, codes[i], ids[i], ids[0])
		}
	}
	list := decodeBody[AlarmListResponse](t, a.do(t, http.MethodGet, "/alarms", nil, nil))
	if len(list.Alarms) != 1 {
		t.Fatalf("expected one alarm, got %d", len(list.Alarms))
	}
}

func TestAlarms_Create_IdempotencyRecordUsesServiceClock(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	requireStatus(t, a.do(t, http.MethodPost, "/alarms", CreateAlarmRequest{Time: "07:00"}, map[string]string{"Idempotency-Key": "k-clock"}), http.StatusCreated)

	hash, err := hashCreateAlarmBody(CreateAlarmRequest{Time: "07:00"})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	fp := idempotency.Fingerprint{Key: "k-clock", Method: http.MethodPost, Route: "/alarms", BodyHash: hash}
	rec, ok, err := a.idem.Get(context.Background(), fp)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !rec.CreatedAt.Equal(testNow) {
		t.Fatalf("CreatedAt=%v, want %v", rec.CreatedAt, testNow)
	}
}

func TestStopwatch_StartStopReset(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodGet, "/stopwatch", nil, nil)
	requireStatus(t, rec, http.StatusOK)
	got := decodeBody[StopwatchResponse](t, rec)
	if got.IsRunning || got.ElapsedMs != 0 || got.Display != "00:00.00" || !got.StartTime.IsNull() {
		t.Fatalf("initial=%+v", got)
	}

	got = decodeBody[StopwatchResponse](t, a.do(t, http.MethodPost, "/stopwatch/start", nil, nil))
	if !got.IsRunning {
		t.Fatalf("expected running: %+v", got)
	}
	if st, err := got.StartTime.Get(); err != nil || !st.Equal(testNow) {
		t.Fatalf("startTime=%v err=%v", st, err)
	}

	a.clk.Advance(1500 * time.Millisecond)
	got = decodeBody[StopwatchResponse](t, a.do(t, http.MethodGet, "/stopwatch", nil, nil))
	if got.ElapsedMs != 1500 || got.Display != "00:01.50" {
		t.Fatalf("running=%+v", got)
	}

	a.clk.Advance(500 * time.Millisecond)
	got = decodeBody[StopwatchResponse](t, a.do(t, http.MethodPost, "/stopwatch/stop", nil, nil))
	if got.IsRunning || got.ElapsedMs != 2000 || got.Display != "00:02.00" {
		t.Fatalf("stopped=%+v", got)
	}

	a.clk.Advance(time.Minute)
	got = decodeBody[StopwatchResponse](t, a.do(t, http.MethodGet, "/stopwatch", nil, nil))
	if got.ElapsedMs != 2000 {
		t.Fatalf("elapsed moved while stopped: %+v", got)
	}

	got = decodeBody[StopwatchResponse](t, a.do(t, http.MethodPost, "/stopwatch/reset", nil, nil))
	if got.IsRunning || got.ElapsedMs != 0 || got.Display != "00:00.00" || !got.StartTime.IsNull() {
		t.Fatalf("reset=%+v", got)
	}
}

func TestWeather_Badge(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, fakeWeather{reading: weatherport.Reading{
		TemperatureC: 21.6,
		Description:  "clear sky",
		IconCode:     "01d",
		LocationName: "Seoul",
	}})
	rec := a.do(t, http.MethodGet, "/weather?lat=37.57&lon=126.98", nil, nil)
	requireStatus(t, rec, http.StatusOK)

	got := decodeBody[WeatherResponse](t, rec)
	if temp, err := got.TemperatureC.Get(); err != nil || temp != 22 {
		t.Fatalf("temperature=%v err=%v", temp, err)
	}
	if got.Status != "ok" || got.Emoji != "☀️" || got.Location != "Seoul" || got.Description != "clear sky" {
		t.Fatalf("badge=%+v", got)
	}
}

func TestWeather_Unavailable(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, fakeWeather{err: errors.New("boom")})
	rec := a.do(t, http.MethodGet, "/weather?lat=0&lon=0", nil, nil)
	requireStatus(t, rec, http.StatusOK)
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"unavailable"}` {
		t.Fatalf("body=%s", got)
	}
}

func TestWeather_BadCoordinates(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	requireErrorCode(t, a.do(t, http.MethodGet, "/weather?lon=0", nil, nil), http.StatusBadRequest, "BAD_REQUEST")
	requireErrorCode(t, a.do(t, http.MethodGet, "/weather?lat=abc&lon=0", nil, nil), http.StatusBadRequest, "BAD_REQUEST")
	requireErrorCode(t, a.do(t, http.MethodGet, "/weather?lat=91&lon=0", nil, nil), http.StatusUnprocessableEntity, "VALIDATION_ERROR")
}

func TestAlarmEvents_StreamsFirings(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, nil)
	srv := httptest.NewServer(a.h)
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/alarms/events")
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type=%q", ct)
	}

	br := bufio.NewReader(resp.Body)
	// The comment line is written after the subscription exists.
	if line, err := br.ReadString('\n'); err != nil || line != ": connected\n" {
		t.Fatalf("first line=%q err=%v", line, err)
	}

	f := notifier.Firing{
		Alarm: domain.Alarm{ID: "a-1", Time: "07:00", IsActive: true},
		At:    time.Date(2024, 1, 6, 7, 0, 0, 0, time.UTC),
	}
	if err := a.events.Notify(context.Background(), f); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	var data string
	for data == "" {
		line, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}
	var ev AlarmEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		t.Fatalf("decode event %q: %v", data, err)
	}
	want := AlarmEvent{AlarmID: "a-1", Time: "07:00", FiredAt: f.At, Title: "알람", Body: "설정한 시간입니다! (07:00)"}
	if diff := cmp.Diff(want, ev); diff != "" {
		t.Fatalf("event (-want +got):\n%s", diff)
	}
}
