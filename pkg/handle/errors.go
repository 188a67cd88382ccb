package handle

import "errors"

// Handle package errors.
var (
	// ErrInvalidHandle is returned for handles that are unknown, closed, or stale.
	ErrInvalidHandle = errors.New("handle: invalid handle")

	// ErrTooManyHandles is returned when the table is at capacity.
	ErrTooManyHandles = errors.New("handle: too many open handles")
)
