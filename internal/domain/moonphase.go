package domain

import (
	"math"
	"time"
)

// SynodicMonthDays is the mean length of a lunation.
const SynodicMonthDays = 29.53058867

const synodicMonthSeconds = SynodicMonthDays * 86400

// MoonBucket is one of the eight named phase categories.
type MoonBucket string

const (
	MoonNew            MoonBucket = "new"
	MoonWaxingCrescent MoonBucket = "waxing-crescent"
	MoonFirstQuarter   MoonBucket = "first-quarter"
	MoonWaxingGibbous  MoonBucket = "waxing-gibbous"
	MoonFull           MoonBucket = "full"
	MoonWaningGibbous  MoonBucket = "waning-gibbous"
	MoonLastQuarter    MoonBucket = "last-quarter"
	MoonWaningCrescent MoonBucket = "waning-crescent"
)

var moonSymbols = map[MoonBucket]string{
	MoonNew:            "🌑",
	MoonWaxingCrescent: "🌒",
	MoonFirstQuarter:   "🌓",
	MoonWaxingGibbous:  "🌔",
	MoonFull:           "🌕",
	MoonWaningGibbous:  "🌖",
	MoonLastQuarter:    "🌗",
	MoonWaningCrescent: "🌘",
}

// Symbol returns the emoji used by the moon badge.
func (b MoonBucket) Symbol() string { return moonSymbols[b] }

// moonBuckets is sorted by ascending upper bound; the first bound >= phase wins.
var moonBuckets = [...]struct {
	max    float64
	bucket MoonBucket
}{
	{0.0625, MoonNew},
	{0.1875, MoonWaxingCrescent},
	{0.3125, MoonFirstQuarter},
	{0.4375, MoonWaxingGibbous},
	{0.5625, MoonFull},
	{0.6875, MoonWaningGibbous},
	{0.8125, MoonLastQuarter},
	{0.9375, MoonWaningCrescent},
	{1.0, MoonNew},
}

// MoonPhase is the lunar phase derived from a single timestamp.
type MoonPhase struct {
	// Phase is the fraction of the synodic month elapsed since the last new moon, in [0,1).
	Phase  float64
	Bucket MoonBucket
}

// Illumination approximates the lit fraction of the disc.
func (p MoonPhase) Illumination() float64 {
	return (1 - math.Cos(2*math.Pi*p.Phase)) / 2
}

// NewMoonEpoch returns the reference new moon, 2000-01-06 18:14:00 wall time in loc.
func NewMoonEpoch(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(2000, time.January, 6, 18, 14, 0, 0, loc)
}

// CalculateMoonPhase returns the phase of t relative to epoch.
//
// Timestamps before epoch are normalized into [0,1) rather than producing a
// negative fraction.
func CalculateMoonPhase(t, epoch time.Time) MoonPhase {
	seconds := float64(t.UnixMilli()-epoch.UnixMilli()) / 1000
	r := math.Mod(seconds, synodicMonthSeconds)
	if r < 0 {
		r += synodicMonthSeconds
	}
	phase := r / synodicMonthSeconds
	if phase >= 1 {
		phase = 0
	}
	return MoonPhase{Phase: phase, Bucket: MoonBucketFor(phase)}
}

// MoonBucketFor maps a phase fraction onto its bucket.
func MoonBucketFor(phase float64) MoonBucket {
	for _, b := range moonBuckets {
		if phase <= b.max {
			return b.bucket
		}
	}
	return MoonNew
}
