package crypto

import (
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDFMaxBlocks is the RFC 5869 limit on expand output, in hash blocks.
const HKDFMaxBlocks = 255

// HKDFExtract performs only the HKDF-Extract step and returns a
// pseudorandom key of the hash size. A nil salt is treated as HashLen zero bytes.
func HKDFExtract(h HashFunc, inputKey, salt []byte) []byte {
	return hkdf.Extract(h, inputKey, salt)
}

// HKDFExpand performs only the HKDF-Expand step.
// Returns ErrHKDFLength if length is negative or exceeds 255 hash blocks.
func HKDFExpand(h HashFunc, prk, info []byte, length int) ([]byte, error) {
	if length < 0 || length > HKDFMaxBlocks*h().Size() {
		return nil, ErrHKDFLength
	}
	reader := hkdf.Expand(h, prk, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}
