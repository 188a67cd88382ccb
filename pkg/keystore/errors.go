package keystore

import "errors"

// Keystore errors.
var (
	// ErrNotFound is returned when no live key matches an ID and version.
	ErrNotFound = errors.New("keystore: key not found")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("keystore: store closed")

	// ErrNoManager is returned by New when Config.Manager is nil.
	ErrNoManager = errors.New("keystore: manager required")
)
