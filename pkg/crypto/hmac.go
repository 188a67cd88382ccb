package crypto

import (
	"crypto/hmac"
	"hash"
)

// NewHMAC returns a new hash.Hash computing HMAC incrementally.
//
// Usage:
//
//	mac := crypto.NewHMAC(crypto.NewSHA256, key)
//	mac.Write(data1)
//	mac.Write(data2)
//	tag := mac.Sum(nil)
func NewHMAC(h HashFunc, key []byte) hash.Hash {
	return hmac.New(h, key)
}

// HMACEqual compares two MACs for equality in constant time.
// MACs of different lengths are never equal.
func HMACEqual(mac1, mac2 []byte) bool {
	return hmac.Equal(mac1, mac2)
}
