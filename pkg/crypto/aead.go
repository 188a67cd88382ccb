package crypto

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"
)

// AEAD key, nonce and tag sizes.
const (
	AES128KeySize = 16
	AES256KeySize = 32
	GCMNonceSize  = 12

	ChaCha20Poly1305KeySize    = chacha20poly1305.KeySize
	ChaCha20Poly1305NonceSize  = chacha20poly1305.NonceSize
	XChaCha20Poly1305NonceSize = chacha20poly1305.NonceSizeX

	// AEADTagSize is the tag size of every AEAD constructed here.
	AEADTagSize = 16
)

// AEADFunc constructs an AEAD cipher from a key.
type AEADFunc func(key []byte) (cipher.AEAD, error)

// NewAESGCM returns AES-GCM with a 12-byte nonce and 16-byte tag.
// The key must be 16 or 32 bytes.
func NewAESGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != AES128KeySize && len(key) != AES256KeySize {
		return nil, ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// NewChaCha20Poly1305 returns the RFC 8439 ChaCha20-Poly1305 AEAD.
func NewChaCha20Poly1305(key []byte) (cipher.AEAD, error) {
	if len(key) != ChaCha20Poly1305KeySize {
		return nil, ErrInvalidKeySize
	}
	return chacha20poly1305.New(key)
}

// NewXChaCha20Poly1305 returns XChaCha20-Poly1305 with a 24-byte nonce.
func NewXChaCha20Poly1305(key []byte) (cipher.AEAD, error) {
	if len(key) != ChaCha20Poly1305KeySize {
		return nil, ErrInvalidKeySize
	}
	return chacha20poly1305.NewX(key)
}

// SealDetached encrypts plaintext and returns the ciphertext and the tag
// as separate fresh slices.
func SealDetached(aead cipher.AEAD, nonce, plaintext, additionalData []byte) (ciphertext, tag []byte) {
	sealed := aead.Seal(nil, nonce, plaintext, additionalData)
	split := len(sealed) - aead.Overhead()
	return sealed[:split:split], sealed[split:]
}

// OpenDetached verifies tag over ciphertext and additionalData and returns
// the plaintext. Returns ErrInvalidTagSize if tag is not Overhead() bytes.
func OpenDetached(aead cipher.AEAD, nonce, ciphertext, tag, additionalData []byte) ([]byte, error) {
	if len(tag) != aead.Overhead() {
		return nil, ErrInvalidTagSize
	}
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)
	return aead.Open(nil, nonce, sealed, additionalData)
}

// AuthTag returns the tag of an empty plaintext under additionalData, a
// MAC over the associated data alone.
func AuthTag(aead cipher.AEAD, nonce, additionalData []byte) []byte {
	return aead.Seal(nil, nonce, nil, additionalData)
}
