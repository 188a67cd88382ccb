package provider

import (
	"errors"

	"github.com/backkem/symcrypto/pkg/handle"
)

// Provider errors. Errors from pkg/algorithm (unsupported algorithm, key,
// nonce and output length violations) are returned unchanged.
var (
	// ErrInvalidHandle is returned for unknown, stale or closed handles.
	ErrInvalidHandle = handle.ErrInvalidHandle

	// ErrTooManyHandles is returned when a handle table is full.
	ErrTooManyHandles = handle.ErrTooManyHandles

	// ErrInvalidOperation is returned when a state does not support an operation.
	ErrInvalidOperation = errors.New("provider: operation not supported by this state")

	// ErrFinalized is returned when a state is used after its finalize operation.
	ErrFinalized = errors.New("provider: state already finalized")

	// ErrKeyMismatch is returned when a key is bound to an incompatible algorithm.
	ErrKeyMismatch = errors.New("provider: key algorithm mismatch")

	// ErrKeyRequired is returned when a keyed algorithm is opened without a key.
	ErrKeyRequired = errors.New("provider: key required")

	// ErrUnsupportedOption is returned for unknown or inapplicable options.
	ErrUnsupportedOption = errors.New("provider: unsupported option")

	// ErrAuthenticationFailed is returned when a tag does not verify.
	ErrAuthenticationFailed = errors.New("provider: authentication failed")

	// ErrInvalidTagLength is returned when a detached tag has the wrong size.
	ErrInvalidTagLength = errors.New("provider: invalid tag length")

	// ErrRandom is returned when the random source fails.
	ErrRandom = errors.New("provider: random source failed")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("provider: closed")
)
