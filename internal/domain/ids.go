package domain

// AlarmID is an opaque identifier for an alarm record.
type AlarmID string
