package registry

import "errors"

var (
	// ErrNotFound is returned when no paper has the given ID.
	ErrNotFound = errors.New("paper not found")

	// ErrInvalidTransition is returned when a status change violates
	// the paper lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
)
