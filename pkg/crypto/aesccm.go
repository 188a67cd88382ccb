package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"errors"
)

// AES-128-CCM (NIST SP 800-38C, RFC 3610) parameters used by the
// AES-128-CCM algorithm.
const (
	AESCCMKeySize   = 16
	AESCCMNonceSize = 13
	AESCCMTagSize   = 16
)

var (
	ErrAESCCMInvalidNonceSize = errors.New("aesccm: invalid nonce size")
	ErrAESCCMInvalidTagSize   = errors.New("aesccm: invalid tag size")
	ErrAESCCMAuthFailed       = errors.New("aesccm: message authentication failed")
)

// AESCCM implements cipher.AEAD over an AES-128 block cipher.
type AESCCM struct {
	block cipher.Block
	n     int // nonce size, 15 - q
	m     int // tag size
}

var _ cipher.AEAD = (*AESCCM)(nil)

// NewAESCCM returns AES-128-CCM with a 13-byte nonce and a 16-byte tag.
func NewAESCCM(key []byte) (cipher.AEAD, error) {
	return NewAESCCMWithParams(key, AESCCMNonceSize, AESCCMTagSize)
}

// NewAESCCMWithParams returns AES-128-CCM with a nonce of 7 to 13 bytes and
// an even tag size between 4 and 16 bytes.
func NewAESCCMWithParams(key []byte, nonceSize, tagSize int) (*AESCCM, error) {
	if len(key) != AESCCMKeySize {
		return nil, ErrInvalidKeySize
	}
	if nonceSize < 7 || nonceSize > 13 {
		return nil, ErrAESCCMInvalidNonceSize
	}
	if tagSize < 4 || tagSize > 16 || tagSize&1 != 0 {
		return nil, ErrAESCCMInvalidTagSize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &AESCCM{block: block, n: nonceSize, m: tagSize}, nil
}

func (c *AESCCM) NonceSize() int { return c.n }

func (c *AESCCM) Overhead() int { return c.m }

// q is the width of the message length field.
func (c *AESCCM) q() int { return 15 - c.n }

func (c *AESCCM) fits(n int) bool {
	return c.q() >= 8 || uint64(n) < 1<<(8*c.q())
}

// Seal panics on a bad nonce length or an oversized message, as the
// crypto/cipher AEADs do.
func (c *AESCCM) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if len(nonce) != c.n {
		panic("aesccm: incorrect nonce length")
	}
	if !c.fits(len(plaintext)) {
		panic("aesccm: message too large")
	}

	mac := c.cbcMAC(nonce, plaintext, additionalData)
	ret, out := sliceForAppend(dst, len(plaintext)+c.m)
	c.stream(nonce).XORKeyStream(out, plaintext)
	c.maskTag(out[len(plaintext):], nonce, mac)
	return ret
}

func (c *AESCCM) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) != c.n {
		return nil, ErrAESCCMInvalidNonceSize
	}
	if len(ciphertext) < c.m || !c.fits(len(ciphertext)-c.m) {
		return nil, ErrAESCCMAuthFailed
	}

	body, sealedTag := ciphertext[:len(ciphertext)-c.m], ciphertext[len(ciphertext)-c.m:]
	plaintext := make([]byte, len(body))
	c.stream(nonce).XORKeyStream(plaintext, body)

	want := make([]byte, c.m)
	c.maskTag(want, nonce, c.cbcMAC(nonce, plaintext, additionalData))
	if subtle.ConstantTimeCompare(want, sealedTag) != 1 {
		clear(plaintext)
		return nil, ErrAESCCMAuthFailed
	}
	return append(dst, plaintext...), nil
}

// counter builds the CTR block A_i.
func (c *AESCCM) counter(nonce []byte, i byte) []byte {
	a := make([]byte, aes.BlockSize)
	a[0] = byte(c.q() - 1)
	copy(a[1:], nonce)
	a[aes.BlockSize-1] = i
	return a
}

// stream is the keystream starting at A_1. The message length bound keeps
// the counter inside its q-byte field, so a full-block CTR is equivalent.
func (c *AESCCM) stream(nonce []byte) cipher.Stream {
	return cipher.NewCTR(c.block, c.counter(nonce, 1))
}

// maskTag writes the first m bytes of mac XOR E(K, A_0) to dst.
func (c *AESCCM) maskTag(dst, nonce, mac []byte) {
	s0 := c.counter(nonce, 0)
	c.block.Encrypt(s0, s0)
	subtle.XORBytes(dst, mac[:c.m], s0[:c.m])
}

// cbcMAC returns the full CBC-MAC block T over B_0, the encoded associated
// data and the payload.
func (c *AESCCM) cbcMAC(nonce, plaintext, ad []byte) []byte {
	b0 := make([]byte, aes.BlockSize)
	b0[0] = byte((c.m-2)/2)<<3 | byte(c.q()-1)
	if len(ad) > 0 {
		b0[0] |= 0x40
	}
	copy(b0[1:], nonce)
	for i, n := aes.BlockSize-1, len(plaintext); i > c.n; i, n = i-1, n>>8 {
		b0[i] = byte(n)
	}

	mac := make([]byte, aes.BlockSize)
	c.absorb(mac, b0)
	if len(ad) > 0 {
		c.absorb(mac, append(adLengthPrefix(len(ad)), ad...))
	}
	c.absorb(mac, plaintext)
	return mac
}

// absorb chains data into the running MAC, zero-padding the final block.
func (c *AESCCM) absorb(mac, data []byte) {
	var blk [aes.BlockSize]byte
	for len(data) > 0 {
		clear(blk[:])
		data = data[copy(blk[:], data):]
		subtle.XORBytes(mac, mac, blk[:])
		c.block.Encrypt(mac, mac)
	}
}

// adLengthPrefix encodes the associated data length (RFC 3610 section 2.2).
func adLengthPrefix(n int) []byte {
	switch {
	case n < 0xff00:
		return binary.BigEndian.AppendUint16(nil, uint16(n))
	case uint64(n) <= 0xffffffff:
		return binary.BigEndian.AppendUint32([]byte{0xff, 0xfe}, uint32(n))
	default:
		return binary.BigEndian.AppendUint64([]byte{0xff, 0xff}, uint64(n))
	}
}

func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}
