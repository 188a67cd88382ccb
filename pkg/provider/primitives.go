package provider

import (
	"hash"

	"github.com/backkem/symcrypto/pkg/algorithm"
	"github.com/backkem/symcrypto/pkg/crypto"
)

// newStateFunc builds the primitive for one algorithm. key is nil for
// unkeyed opens; nonce is nil for algorithms without one.
type newStateFunc func(key, nonce []byte) (state, error)

func hashOf(h func() hash.Hash) newStateFunc {
	return func(_, _ []byte) (state, error) {
		return &hashState{h: h()}, nil
	}
}

func xofOf(x func() crypto.XOF) newStateFunc {
	return func(_, _ []byte) (state, error) {
		return &xofState{x: x()}, nil
	}
}

func newBLAKE2b(key, _ []byte) (state, error) {
	h, err := crypto.NewBLAKE2b512(key)
	if err != nil {
		return nil, err
	}
	return &hashState{h: h}, nil
}

func hmacOf(h crypto.HashFunc) newStateFunc {
	return func(key, _ []byte) (state, error) {
		return &macState{mac: crypto.NewHMAC(h, key)}, nil
	}
}

func hkdfExtractOf(h crypto.HashFunc) newStateFunc {
	return func(key, _ []byte) (state, error) {
		return &hkdfExtractState{h: h, ikm: append([]byte(nil), key...)}, nil
	}
}

func hkdfExpandOf(h crypto.HashFunc) newStateFunc {
	return func(key, _ []byte) (state, error) {
		return &hkdfExpandState{h: h, prk: append([]byte(nil), key...)}, nil
	}
}

func aeadOf(newAEAD crypto.AEADFunc) newStateFunc {
	return func(key, nonce []byte) (state, error) {
		aead, err := newAEAD(key)
		if err != nil {
			return nil, err
		}
		return &aeadState{aead: aead, nonce: append([]byte(nil), nonce...)}, nil
	}
}

// primitives maps every registered algorithm to its implementation.
var primitives = map[string]newStateFunc{
	algorithm.SHA256:     hashOf(crypto.NewSHA256),
	algorithm.SHA384:     hashOf(crypto.NewSHA384),
	algorithm.SHA512:     hashOf(crypto.NewSHA512),
	algorithm.SHA512_256: hashOf(crypto.NewSHA512_256),
	algorithm.SHA3_256:   hashOf(crypto.NewSHA3_256),
	algorithm.SHA3_512:   hashOf(crypto.NewSHA3_512),
	algorithm.SHAKE128:   xofOf(crypto.NewSHAKE128),
	algorithm.SHAKE256:   xofOf(crypto.NewSHAKE256),
	algorithm.BLAKE2b512: newBLAKE2b,

	algorithm.HMACSHA256: hmacOf(crypto.NewSHA256),
	algorithm.HMACSHA512: hmacOf(crypto.NewSHA512),

	algorithm.HKDFExtractSHA256: hkdfExtractOf(crypto.NewSHA256),
	algorithm.HKDFExtractSHA512: hkdfExtractOf(crypto.NewSHA512),
	algorithm.HKDFExpandSHA256:  hkdfExpandOf(crypto.NewSHA256),
	algorithm.HKDFExpandSHA512:  hkdfExpandOf(crypto.NewSHA512),

	algorithm.AES128GCM:         aeadOf(crypto.NewAESGCM),
	algorithm.AES256GCM:         aeadOf(crypto.NewAESGCM),
	algorithm.AES128CCM:         aeadOf(crypto.NewAESCCM),
	algorithm.ChaCha20Poly1305:  aeadOf(crypto.NewChaCha20Poly1305),
	algorithm.XChaCha20Poly1305: aeadOf(crypto.NewXChaCha20Poly1305),
}
