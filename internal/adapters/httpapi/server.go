package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/starclock/starclock-api/internal/adapters/notify"
	"github.com/starclock/starclock-api/internal/app/alarms"
	"github.com/starclock/starclock-api/internal/app/clockface"
	"github.com/starclock/starclock-api/internal/app/stopwatch"
	"github.com/starclock/starclock-api/internal/app/weather"
	"github.com/starclock/starclock-api/internal/domain"
	"github.com/starclock/starclock-api/internal/ports/out/idempotency"
	"github.com/starclock/starclock-api/internal/ports/out/notifier"
)

// Services are the application services the HTTP adapter delegates to.
type Services struct {
	Clock     *clockface.Service
	Alarms    *alarms.Service
	Stopwatch *stopwatch.Service
	Weather   *weather.Service
	Events    *notify.Broadcaster
	Idem      idempotency.Store
}

// Server is the HTTP adapter. Each exported method is one route handler.
type Server struct {
	Services

	idemLocks *keyLocks
}

func NewServer(svc Services) *Server {
	return &Server{Services: svc, idemLocks: newKeyLocks()}
}

// now reads the clock the services run on.
func (s *Server) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

type MoonPhase struct {
	Phase        float64 `json:"phase"`
	Bucket       string  `json:"bucket"`
	Symbol       string  `json:"symbol"`
	Illumination float64 `json:"illumination"`
}

type ClockResponse struct {
	At         time.Time          `json:"at"`
	Time       string             `json:"time"`
	Date       openapi_types.Date `json:"date"`
	DateText   string             `json:"dateText"`
	Locale     string             `json:"locale"`
	HourFormat string             `json:"hourFormat"`
	Use24Hour  bool               `json:"use24Hour"`
	Moon       MoonPhase          `json:"moon"`
}

type HourFormatRequest struct {
	HourFormat string `json:"hourFormat"`
}

type HourFormatResponse struct {
	HourFormat string `json:"hourFormat"`
	Use24Hour  bool   `json:"use24Hour"`
}

type Alarm struct {
	ID        string    `json:"id"`
	Time      string    `json:"time"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateAlarmRequest struct {
	Time string `json:"time"`
}

type AlarmResponse struct {
	Alarm Alarm `json:"alarm"`
}

type AlarmListResponse struct {
	Alarms []Alarm `json:"alarms"`
}

// AlarmEvent is the payload of one server-sent alarm event.
type AlarmEvent struct {
	AlarmID string    `json:"alarmId"`
	Time    string    `json:"time"`
	FiredAt time.Time `json:"firedAt"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
}

type StopwatchResponse struct {
	IsRunning bool                         `json:"isRunning"`
	ElapsedMs int64                        `json:"elapsedMs"`
	Display   string                       `json:"display"`
	StartTime nullable.Nullable[time.Time] `json:"startTime,omitempty"`
}

type WeatherResponse struct {
	Status       string                 `json:"status"`
	TemperatureC nullable.Nullable[int] `json:"temperatureC,omitempty"`
	Description  string                 `json:"description,omitempty"`
	Icon         string                 `json:"icon,omitempty"`
	Emoji        string                 `json:"emoji,omitempty"`
	Location     string                 `json:"location,omitempty"`
}

func moonPhaseFromDomain(p domain.MoonPhase) MoonPhase {
	return MoonPhase{
		Phase:        p.Phase,
		Bucket:       string(p.Bucket),
		Symbol:       p.Bucket.Symbol(),
		Illumination: p.Illumination(),
	}
}

func clockFromFace(f clockface.Face) ClockResponse {
	return ClockResponse{
		At:         f.At,
		Time:       f.Time,
		Date:       openapi_types.Date{Time: f.At},
		DateText:   f.Date,
		Locale:     string(f.Locale),
		HourFormat: string(f.HourFormat),
		Use24Hour:  f.HourFormat.Use24Hour(),
		Moon:       moonPhaseFromDomain(f.Moon),
	}
}

func hourFormatFromDomain(f domain.HourFormat) HourFormatResponse {
	return HourFormatResponse{HourFormat: string(f), Use24Hour: f.Use24Hour()}
}

func alarmFromDomain(a domain.Alarm) Alarm {
	return Alarm{
		ID:        string(a.ID),
		Time:      a.Time,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

func alarmEventFromFiring(f notifier.Firing) AlarmEvent {
	return AlarmEvent{
		AlarmID: string(f.Alarm.ID),
		Time:    f.Alarm.Time,
		FiredAt: f.At,
		Title:   "알람",
		Body:    "설정한 시간입니다! (" + f.Alarm.Time + ")",
	}
}

func stopwatchFromSnapshot(s stopwatch.Snapshot) StopwatchResponse {
	return StopwatchResponse{
		IsRunning: s.IsRunning,
		ElapsedMs: s.Elapsed.Milliseconds(),
		Display:   s.Display,
		StartTime: nullableTime(s.StartTime),
	}
}

func weatherFromBadge(b weather.Badge) WeatherResponse {
	if b.Status != weather.StatusOK {
		return WeatherResponse{Status: string(b.Status)}
	}
	return WeatherResponse{
		Status:       string(b.Status),
		TemperatureC: nullable.NewNullableWithValue(b.TemperatureC),
		Description:  b.Description,
		Icon:         b.IconCode,
		Emoji:        b.Emoji,
		Location:     b.Location,
	}
}

func nullableTime(p *time.Time) nullable.Nullable[time.Time] {
	if p == nil {
		return nullable.NewNullNullable[time.Time]()
	}
	return nullable.NewNullableWithValue(*p)
}
