package recipe

import (
	"github.com/backkem/symcrypto/pkg/crypto"
	"github.com/backkem/symcrypto/pkg/symmetric"
)

// openAEAD opens a session for key's algorithm with nonce and absorbs ad.
func openAEAD(m *symmetric.Manager, key *symmetric.Key, nonce, ad []byte) (*symmetric.Session, error) {
	alg, err := keyAlgorithm("aead", key)
	if err != nil {
		return nil, err
	}
	s, err := m.Open(alg, key, symmetric.WithNonce(nonce))
	if err != nil {
		return nil, err
	}
	if len(ad) > 0 {
		if err := s.Absorb(ad); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Seal encrypts plaintext and authenticates it together with ad.
// The result is ciphertext || tag.
func Seal(m *symmetric.Manager, key *symmetric.Key, nonce, ad, plaintext []byte) (out []byte, err error) {
	s, err := openAEAD(m, key, nonce, ad)
	if err != nil {
		return nil, err
	}
	defer closeSession(s, &err)

	return s.Encrypt(plaintext)
}

// Open verifies and decrypts ciphertext || tag produced by Seal.
func Open(m *symmetric.Manager, key *symmetric.Key, nonce, ad, ciphertext []byte) (out []byte, err error) {
	s, err := openAEAD(m, key, nonce, ad)
	if err != nil {
		return nil, err
	}
	defer closeSession(s, &err)

	return s.Decrypt(ciphertext)
}

// SealDetached is Seal with the tag returned separately.
func SealDetached(m *symmetric.Manager, key *symmetric.Key, nonce, ad, plaintext []byte) (out symmetric.CiphertextAndTag, err error) {
	s, err := openAEAD(m, key, nonce, ad)
	if err != nil {
		return symmetric.CiphertextAndTag{}, err
	}
	defer closeSession(s, &err)

	return s.EncryptDetached(plaintext)
}

// OpenDetached is Open for a separately transmitted tag.
func OpenDetached(m *symmetric.Manager, key *symmetric.Key, nonce, ad, ciphertext, tag []byte) (out []byte, err error) {
	s, err := openAEAD(m, key, nonce, ad)
	if err != nil {
		return nil, err
	}
	defer closeSession(s, &err)

	return s.DecryptDetached(ciphertext, tag)
}

// Sealer seals successive messages under one key, drawing each nonce from a
// counter so no nonce repeats. It is safe for concurrent use.
type Sealer struct {
	m     *symmetric.Manager
	key   *symmetric.Key
	nonce *crypto.NonceSequence
}

// NewSealer creates a Sealer for an AEAD key. A nil initial nonce starts the
// counter at zero.
func NewSealer(m *symmetric.Manager, key *symmetric.Key, initial []byte) (*Sealer, error) {
	alg, err := keyAlgorithm("sealer", key)
	if err != nil {
		return nil, err
	}
	desc, err := m.Describe(alg)
	if err != nil {
		return nil, err
	}
	if !desc.RequiresNonce {
		return nil, &symmetric.Error{Op: "sealer", Kind: symmetric.ErrAlgorithmMismatch}
	}
	seq, err := crypto.NewNonceSequence(desc.NonceLen, initial)
	if err != nil {
		return nil, &symmetric.Error{Op: "sealer", Kind: symmetric.ErrInvalidInputLength, Err: err}
	}
	return &Sealer{m: m, key: key, nonce: seq}, nil
}

// Seal encrypts plaintext under the next nonce and returns the nonce with
// ciphertext || tag. Once the counter is exhausted every call fails with
// ErrInvalidState.
func (s *Sealer) Seal(ad, plaintext []byte) (nonce, ciphertext []byte, err error) {
	nonce, err = s.nonce.Next()
	if err != nil {
		return nil, nil, &symmetric.Error{Op: "sealer", Kind: symmetric.ErrInvalidState, Err: err}
	}
	ciphertext, err = Seal(s.m, s.key, nonce, ad, plaintext)
	if err != nil {
		return nil, nil, err
	}
	return nonce, ciphertext, nil
}
