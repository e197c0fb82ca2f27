package alarmrepo

import "errors"

var (
	// ErrNotFound indicates the requested alarm does not exist.
	ErrNotFound = errors.New("alarm not found")

	// ErrAlreadyExists indicates an alarm already exists with the provided ID.
	ErrAlreadyExists = errors.New("alarm already exists")

	// ErrInvalidID indicates an alarm was created without an ID.
	ErrInvalidID = errors.New("alarm id is required")
)
