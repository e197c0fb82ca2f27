package notify

import (
	"context"
	"log"

	"github.com/starclock/starclock-api/internal/ports/out/notifier"
)

// Log writes each firing to a logger.
type Log struct {
	l *log.Logger
}

// NewLog returns a notifier writing to l, or to the standard logger when l is nil.
func NewLog(l *log.Logger) *Log {
	return &Log{l: l}
}

func (n *Log) Notify(_ context.Context, f notifier.Firing) error {
	const format = "alarm %s: it is %s (fired at %s)"
	at := f.At.Format("Mon Jan 2 2006 at 3:04:05 PM")
	if n.l == nil {
		log.Printf(format, f.Alarm.ID, f.Alarm.Time, at)
		return nil
	}
	n.l.Printf(format, f.Alarm.ID, f.Alarm.Time, at)
	return nil
}
