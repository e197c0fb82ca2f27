package clock

import "time"

// Clock provides time to the application.
// Implementations return wall-clock time in the host's display location, so
// Hour/Minute/Date reflect what the user sees on the clock face.
type Clock interface {
	Now() time.Time
}
