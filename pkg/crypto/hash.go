// Package crypto provides the symmetric primitives behind the session model:
// hash functions and XOFs, HMAC, HKDF and AEAD ciphers.
//
// Every constructor returns a standard library interface (hash.Hash,
// cipher.AEAD) or the small XOF interface below, so the provider can treat
// all algorithms of one shape alike.
package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Digest sizes in bytes.
const (
	SHA256Size     = sha256.Size
	SHA384Size     = sha512.Size384
	SHA512Size     = sha512.Size
	SHA512_256Size = sha512.Size256
	BLAKE2b512Size = blake2b.Size

	// BLAKE2bMaxKeySize is the largest key accepted by keyed BLAKE2b.
	BLAKE2bMaxKeySize = 64
)

// HashFunc constructs a fresh hash state.
type HashFunc func() hash.Hash

// XOF is an extendable-output function. Writes absorb input, reads squeeze
// output; once reading has started further writes are invalid.
type XOF interface {
	io.Writer
	io.Reader
	Reset()
}

// NewSHA256 returns a new hash.Hash computing SHA-256.
func NewSHA256() hash.Hash { return sha256.New() }

// NewSHA384 returns a new hash.Hash computing SHA-384.
func NewSHA384() hash.Hash { return sha512.New384() }

// NewSHA512 returns a new hash.Hash computing SHA-512.
func NewSHA512() hash.Hash { return sha512.New() }

// NewSHA512_256 returns a new hash.Hash computing SHA-512/256.
func NewSHA512_256() hash.Hash { return sha512.New512_256() }

// NewSHA3_256 returns a new hash.Hash computing SHA3-256.
func NewSHA3_256() hash.Hash { return sha3.New256() }

// NewSHA3_512 returns a new hash.Hash computing SHA3-512.
func NewSHA3_512() hash.Hash { return sha3.New512() }

// NewSHAKE128 returns a new SHAKE-128 XOF.
func NewSHAKE128() XOF { return sha3.NewShake128() }

// NewSHAKE256 returns a new SHAKE-256 XOF.
func NewSHAKE256() XOF { return sha3.NewShake256() }

// NewBLAKE2b512 returns a BLAKE2b hash with a 64-byte digest.
// A nil or empty key yields the unkeyed hash; keys longer than 64 bytes are rejected.
func NewBLAKE2b512(key []byte) (hash.Hash, error) {
	if len(key) > BLAKE2bMaxKeySize {
		return nil, ErrInvalidKeySize
	}
	return blake2b.New512(key)
}

