package provider

import (
	"crypto/cipher"
	"hash"

	"github.com/backkem/symcrypto/pkg/algorithm"
	"github.com/backkem/symcrypto/pkg/crypto"
)

// state is the primitive behind a session. Finalize operations are
// optional interfaces; a state that does not implement one rejects it.
type state interface {
	absorb(data []byte)
}

type squeezer interface {
	squeeze(n int) ([]byte, error)
}

type tagSqueezer interface {
	squeezeTag() []byte
}

type keySqueezer interface {
	squeezeKey() []byte
}

type aeadCipher interface {
	encrypt(plaintext []byte) []byte
	decrypt(ciphertext []byte) ([]byte, error)
	encryptDetached(plaintext []byte) (ciphertext, tag []byte)
	decryptDetached(ciphertext, tag []byte) ([]byte, error)
}

// hashState is a fixed-output hash. Squeezing returns a prefix of the digest.
type hashState struct {
	h hash.Hash
}

func (s *hashState) absorb(data []byte) { s.h.Write(data) }

func (s *hashState) squeeze(n int) ([]byte, error) {
	sum := s.h.Sum(nil)
	if n > len(sum) {
		return nil, algorithm.ErrInvalidOutputLength
	}
	return sum[:n:n], nil
}

// xofState is an extendable-output function.
type xofState struct {
	x crypto.XOF
}

func (s *xofState) absorb(data []byte) { s.x.Write(data) }

func (s *xofState) squeeze(n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := s.x.Read(out); err != nil {
		return nil, err
	}
	return out, nil
}

// macState is a keyed MAC producing a full-length tag.
type macState struct {
	mac hash.Hash
}

func (s *macState) absorb(data []byte) { s.mac.Write(data) }

func (s *macState) squeezeTag() []byte { return s.mac.Sum(nil) }

// hkdfExtractState absorbs the salt and squeezes a pseudorandom key from
// the input keying material it was opened with.
type hkdfExtractState struct {
	h    crypto.HashFunc
	ikm  []byte
	salt []byte
}

func (s *hkdfExtractState) absorb(data []byte) { s.salt = append(s.salt, data...) }

func (s *hkdfExtractState) squeezeKey() []byte {
	return crypto.HKDFExtract(s.h, s.ikm, s.salt)
}

// hkdfExpandState absorbs the info string and squeezes output keying
// material from the pseudorandom key it was opened with.
type hkdfExpandState struct {
	h    crypto.HashFunc
	prk  []byte
	info []byte
}

func (s *hkdfExpandState) absorb(data []byte) { s.info = append(s.info, data...) }

func (s *hkdfExpandState) squeeze(n int) ([]byte, error) {
	return crypto.HKDFExpand(s.h, s.prk, s.info, n)
}

// aeadState buffers associated data until a single encrypt or decrypt.
type aeadState struct {
	aead  cipher.AEAD
	nonce []byte
	ad    []byte
}

func (s *aeadState) absorb(data []byte) { s.ad = append(s.ad, data...) }

func (s *aeadState) encrypt(plaintext []byte) []byte {
	return s.aead.Seal(nil, s.nonce, plaintext, s.ad)
}

func (s *aeadState) decrypt(ciphertext []byte) ([]byte, error) {
	out, err := s.aead.Open(nil, s.nonce, ciphertext, s.ad)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return out, nil
}

func (s *aeadState) encryptDetached(plaintext []byte) (ciphertext, tag []byte) {
	return crypto.SealDetached(s.aead, s.nonce, plaintext, s.ad)
}

func (s *aeadState) decryptDetached(ciphertext, tag []byte) ([]byte, error) {
	out, err := crypto.OpenDetached(s.aead, s.nonce, ciphertext, tag, s.ad)
	switch err {
	case nil:
		return out, nil
	case crypto.ErrInvalidTagSize:
		return nil, ErrInvalidTagLength
	default:
		return nil, ErrAuthenticationFailed
	}
}

func (s *aeadState) squeezeTag() []byte {
	return crypto.AuthTag(s.aead, s.nonce, s.ad)
}

// wipe zeroes key material held by a state.
func wipe(st state) {
	switch s := st.(type) {
	case *hkdfExtractState:
		clear(s.ikm)
	case *hkdfExpandState:
		clear(s.prk)
	}
}
