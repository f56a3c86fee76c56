package repl

import "errors"

var (
	// ErrOutOfBounds is returned for a history index with no entry.
	ErrOutOfBounds = errors.New("history index out of range")

	// ErrEditDeclined is returned when the user declines to fix data that
	// failed to decode after editing.
	ErrEditDeclined = errors.New("data edit declined")
)
