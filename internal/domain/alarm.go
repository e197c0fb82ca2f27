package domain

import (
	"regexp"
	"time"
)

// AlarmTimeLayout is the time.Format layout of an alarm time and of the
// minute key it is compared against.
const AlarmTimeLayout = "15:04"

var alarmTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Alarm is a user-defined wall-clock alarm.
// Two alarms with the same Time are independent.
type Alarm struct {
	ID       AlarmID
	Time     string // "HH:MM", 24-hour
	IsActive bool

	CreatedAt time.Time
}

// ValidAlarmTime reports whether s is a zero-padded 24-hour "HH:MM" string.
func ValidAlarmTime(s string) bool {
	return alarmTimePattern.MatchString(s)
}

// MinuteKey formats t as the "HH:MM" key alarms are matched against.
func MinuteKey(t time.Time) string {
	return t.Format(AlarmTimeLayout)
}

// MatchAlarms returns the active alarms whose Time equals current, in input order.
//
// The match is stateless: every call within the same minute reports the same
// alarms. Callers that must fire once per minute de-duplicate on their side.
func MatchAlarms(current string, alarms []Alarm) []Alarm {
	out := make([]Alarm, 0)
	for _, a := range alarms {
		if a.IsActive && a.Time == current {
			out = append(out, a)
		}
	}
	return out
}
