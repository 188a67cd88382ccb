package crypto

import "errors"

// Crypto package errors.
var (
	// ErrInvalidKeySize is returned when a key has the wrong length for a primitive.
	ErrInvalidKeySize = errors.New("crypto: invalid key size")

	// ErrInvalidNonceSize is returned when a nonce sequence is created with a bad size.
	ErrInvalidNonceSize = errors.New("crypto: invalid nonce size")

	// ErrHKDFLength is returned when HKDF-Expand is asked for too much output.
	ErrHKDFLength = errors.New("crypto: invalid HKDF output length")

	// ErrInvalidTagSize is returned when a detached tag has the wrong length.
	ErrInvalidTagSize = errors.New("crypto: invalid tag size")

	// ErrNonceExhausted is returned when a nonce sequence wraps around.
	ErrNonceExhausted = errors.New("crypto: nonce sequence exhausted")
)
