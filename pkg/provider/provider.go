// Package provider defines the boundary between the symmetric session model
// and the code that does the math.
//
// A Provider owns every key, session state and tag it creates and hands out
// opaque handles to them. The session layer never sees key material or
// primitive state; it only drives handles through the operations below and
// maps the sentinel errors of this package into its own taxonomy.
package provider

import (
	"github.com/backkem/symcrypto/pkg/algorithm"
	"github.com/backkem/symcrypto/pkg/handle"
)

// OptionNonce is the name of the nonce option.
const OptionNonce = "nonce"

// Options are named byte options passed to SessionOpen and KeyGenerate.
// The only recognized name is OptionNonce.
type Options map[string][]byte

// Provider performs symmetric primitives on provider-owned resources.
//
// Implementations must be safe for concurrent use across handles. Calls on
// the same session handle are serialized by the caller.
type Provider interface {
	// Describe returns the descriptor of a supported algorithm.
	Describe(alg string) (algorithm.Descriptor, error)

	// KeyGenerate creates a random key of the algorithm's generated size.
	KeyGenerate(alg string, opts Options) (handle.Handle, error)

	// KeyImport stores a copy of raw as a key for alg.
	KeyImport(alg string, raw []byte) (handle.Handle, error)

	// KeyExport returns a fresh copy of the key bytes.
	KeyExport(key handle.Handle) ([]byte, error)

	// SessionOpen creates a state for alg, optionally bound to key.
	SessionOpen(alg string, key *handle.Handle, opts Options) (handle.Handle, error)

	// SessionOption returns a copy of an option the session was opened with.
	SessionOption(session handle.Handle, name string) ([]byte, error)

	Absorb(session handle.Handle, data []byte) error
	Squeeze(session handle.Handle, n int) ([]byte, error)
	SqueezeTag(session handle.Handle) (handle.Handle, error)
	SqueezeKey(session handle.Handle, newAlg string) (handle.Handle, error)
	Encrypt(session handle.Handle, plaintext []byte) ([]byte, error)
	Decrypt(session handle.Handle, ciphertext []byte) ([]byte, error)
	EncryptDetached(session handle.Handle, plaintext []byte) (ciphertext, tag []byte, err error)
	DecryptDetached(session handle.Handle, ciphertext, tag []byte) ([]byte, error)

	// TagVerify compares raw with the tag in constant time.
	TagVerify(tag handle.Handle, raw []byte) (bool, error)

	// TagExport returns a fresh copy of the tag bytes.
	TagExport(tag handle.Handle) ([]byte, error)

	CloseKey(key handle.Handle) error
	CloseSession(session handle.Handle) error
	CloseTag(tag handle.Handle) error

	// Close releases every outstanding resource.
	Close() error
}
