package symmetric

import (
	"errors"
	"fmt"

	"github.com/backkem/symcrypto/pkg/algorithm"
	"github.com/backkem/symcrypto/pkg/provider"
)

// Error kinds. Every error returned by this package is an *Error whose Kind
// is one of these; errors.Is(err, ErrX) matches on the kind.
var (
	ErrUnsupportedAlgorithm = errors.New("symmetric: unsupported algorithm")
	ErrAlgorithmMismatch    = errors.New("symmetric: operation not valid for this algorithm or key")
	ErrMissingNonce         = errors.New("symmetric: nonce required")
	ErrInvalidInputLength   = errors.New("symmetric: invalid input length")
	ErrInvalidKeyLength     = errors.New("symmetric: invalid key length")
	ErrAuthenticationFailed = errors.New("symmetric: authentication failed")
	ErrProvider             = errors.New("symmetric: provider error")
	ErrInvalidState         = errors.New("symmetric: invalid state")
	ErrUnsupportedOption    = errors.New("symmetric: unsupported option")

	// ErrEncryptionFailed is a provider failure during encryption.
	// errors.Is(err, ErrProvider) also matches it.
	ErrEncryptionFailed = fmt.Errorf("symmetric: encryption failed: %w", ErrProvider)
)

// errForeignKey is the cause when a key from another provider is used.
var errForeignKey = errors.New("symmetric: key belongs to a different provider")

// Error describes a failed operation.
type Error struct {
	// Op is the operation that failed, e.g. "open" or "decrypt".
	Op string

	// Kind is one of the Err* kinds of this package.
	Kind error

	// Err is the underlying cause, usually a provider or algorithm error.
	// May be nil.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Is reports whether target is the kind of e, or a kind it wraps.
func (e *Error) Is(target error) bool {
	return target == e.Kind || errors.Is(e.Kind, target)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// wrap converts a provider or algorithm error into an *Error.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return newError(op, kindOf(err), err)
}

// kindOf maps a provider or algorithm error to an error kind.
func kindOf(err error) error {
	switch {
	case errors.Is(err, algorithm.ErrUnsupportedAlgorithm):
		return ErrUnsupportedAlgorithm
	case errors.Is(err, algorithm.ErrKeyNotSupported),
		errors.Is(err, provider.ErrKeyMismatch),
		errors.Is(err, provider.ErrKeyRequired),
		errors.Is(err, provider.ErrInvalidOperation):
		return ErrAlgorithmMismatch
	case errors.Is(err, algorithm.ErrNonceRequired):
		return ErrMissingNonce
	case errors.Is(err, algorithm.ErrInvalidNonceLength),
		errors.Is(err, algorithm.ErrInvalidOutputLength),
		errors.Is(err, algorithm.ErrPlaintextTooLong),
		errors.Is(err, provider.ErrInvalidTagLength):
		return ErrInvalidInputLength
	case errors.Is(err, algorithm.ErrInvalidKeyLength):
		return ErrInvalidKeyLength
	case errors.Is(err, provider.ErrAuthenticationFailed):
		return ErrAuthenticationFailed
	case errors.Is(err, provider.ErrInvalidHandle),
		errors.Is(err, provider.ErrFinalized):
		return ErrInvalidState
	case errors.Is(err, provider.ErrUnsupportedOption),
		errors.Is(err, algorithm.ErrNonceNotSupported):
		return ErrUnsupportedOption
	default:
		return ErrProvider
	}
}
