package algorithm

import "errors"

// Algorithm package errors.
var (
	// ErrUnsupportedAlgorithm is returned when a name is not in the registry.
	ErrUnsupportedAlgorithm = errors.New("algorithm: unsupported algorithm")

	// ErrKeyNotSupported is returned when a key is used with a keyless algorithm.
	ErrKeyNotSupported = errors.New("algorithm: algorithm does not take a key")

	// ErrInvalidKeyLength is returned when a key is outside the allowed size range.
	ErrInvalidKeyLength = errors.New("algorithm: invalid key length")

	// ErrInvalidOutputLength is returned when a squeeze length exceeds the maximum.
	ErrInvalidOutputLength = errors.New("algorithm: invalid output length")

	// ErrPlaintextTooLong is returned when a message exceeds the cipher's limit.
	ErrPlaintextTooLong = errors.New("algorithm: plaintext too long")

	// ErrNonceRequired is returned when a nonce is missing.
	ErrNonceRequired = errors.New("algorithm: nonce required")

	// ErrNonceNotSupported is returned when a nonce is given to an algorithm without one.
	ErrNonceNotSupported = errors.New("algorithm: algorithm does not take a nonce")

	// ErrInvalidNonceLength is returned when a nonce has the wrong size.
	ErrInvalidNonceLength = errors.New("algorithm: invalid nonce length")
)
