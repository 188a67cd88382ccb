// Package algorithm holds the static metadata of every symmetric algorithm
// the module knows about.
//
// A Descriptor says which category an algorithm belongs to, which finalize
// operations a session opened for it may perform, how keys and nonces are
// sized, and how long its tags and outputs are. Sessions never inspect the
// algorithm name beyond looking up its descriptor.
package algorithm

import "strings"

// Category groups algorithms by the shape of their state.
type Category int

const (
	// CategoryUnknown indicates an uninitialized descriptor.
	CategoryUnknown Category = iota

	// CategoryHash covers unkeyed (or optionally keyed) hash functions and XOFs.
	CategoryHash

	// CategoryAuth covers message authentication codes.
	CategoryAuth

	// CategoryAEAD covers authenticated encryption with associated data.
	CategoryAEAD

	// CategoryKDF covers key derivation (HKDF extract and expand).
	CategoryKDF
)

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case CategoryHash:
		return "Hash"
	case CategoryAuth:
		return "Auth"
	case CategoryAEAD:
		return "AEAD"
	case CategoryKDF:
		return "KDF"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the category is a known value.
func (c Category) IsValid() bool {
	return c >= CategoryHash && c <= CategoryKDF
}

// Op is a bit set of finalize operations.
type Op uint16

const (
	OpSqueeze Op = 1 << iota
	OpSqueezeTag
	OpSqueezeKey
	OpEncrypt
	OpDecrypt
	OpEncryptDetached
	OpDecryptDetached

	// opsAEAD is the full AEAD operation set.
	opsAEAD = OpEncrypt | OpDecrypt | OpEncryptDetached | OpDecryptDetached | OpSqueezeTag
)

var opNames = []struct {
	op   Op
	name string
}{
	{OpSqueeze, "squeeze"},
	{OpSqueezeTag, "squeeze_tag"},
	{OpSqueezeKey, "squeeze_key"},
	{OpEncrypt, "encrypt"},
	{OpDecrypt, "decrypt"},
	{OpEncryptDetached, "encrypt_detached"},
	{OpDecryptDetached, "decrypt_detached"},
}

// String returns the operation names joined with "|".
func (o Op) String() string {
	if o == 0 {
		return "none"
	}
	var parts []string
	for _, n := range opNames {
		if o&n.op != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// KeyUsage describes whether an algorithm takes a key.
type KeyUsage int

const (
	// KeyNone means sessions must be opened without a key.
	KeyNone KeyUsage = iota

	// KeyOptional means sessions may be opened with or without a key.
	KeyOptional

	// KeyRequired means sessions must be opened with a key.
	KeyRequired
)

// String returns a human-readable name for the key usage.
func (k KeyUsage) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyOptional:
		return "optional"
	case KeyRequired:
		return "required"
	default:
		return "unknown"
	}
}
