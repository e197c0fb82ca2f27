package clock

import "time"

// SystemClock returns the current wall-clock time in a fixed display location.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock returns a clock reporting time in loc (time.Local when nil).
func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return SystemClock{loc: loc}
}

func (c SystemClock) Now() time.Time {
	if c.loc == nil {
		return time.Now()
	}
	return time.Now().In(c.loc)
}

