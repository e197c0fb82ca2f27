package domain

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

const (
	layout24Hour = "15:04:05"
	// Go renders hour 0 as "12" under the "03" verb, which is the 12-hour rule we want.
	layout12Hour = "03:04:05 PM"
)

// FormatTime renders t as "HH:MM:SS" or, when use24Hour is false, "HH:MM:SS AM|PM".
func FormatTime(t time.Time, use24Hour bool) string {
	if use24Hour {
		return t.Format(layout24Hour)
	}
	return t.Format(layout12Hour)
}

// Locale selects the long-form date rendering.
type Locale string

const (
	LocaleKorean    Locale = "ko-KR"
	LocaleEnglishUS Locale = "en-US"
)

// DefaultLocale is the locale used when nothing better matches.
const DefaultLocale = LocaleKorean

var (
	supportedLocales = []Locale{LocaleKorean, LocaleEnglishUS}
	localeMatcher    = language.NewMatcher([]language.Tag{
		language.MustParse(string(LocaleKorean)),
		language.MustParse(string(LocaleEnglishUS)),
	})
)

// MatchLocale maps an arbitrary BCP 47 tag (or Accept-Language value) onto a
// supported Locale.
func MatchLocale(tag string) Locale {
	if tag == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(tag)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return DefaultLocale
	}
	return supportedLocales[idx]
}

var (
	koreanWeekdays = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}
)

// FormatDate renders the long-form calendar date of t (year, month name, day, weekday).
func FormatDate(t time.Time, loc Locale) string {
	y, m, d := t.Date()
	switch loc {
	case LocaleEnglishUS:
		return fmt.Sprintf("%s, %s %d, %d", t.Weekday(), m, d, y)
	default:
		return fmt.Sprintf("%d년 %d월 %d일 %s", y, int(m), d, koreanWeekdays[t.Weekday()])
	}
}
