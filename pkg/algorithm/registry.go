package algorithm

import "sort"

// Registered algorithm names.
const (
	SHA256     = "SHA-256"
	SHA384     = "SHA-384"
	SHA512     = "SHA-512"
	SHA512_256 = "SHA-512/256"
	SHA3_256   = "SHA3-256"
	SHA3_512   = "SHA3-512"
	SHAKE128   = "SHAKE-128"
	SHAKE256   = "SHAKE-256"
	BLAKE2b512 = "BLAKE2B-512"

	HMACSHA256 = "HMAC/SHA-256"
	HMACSHA512 = "HMAC/SHA-512"

	HKDFExtractSHA256 = "HKDF-EXTRACT/SHA-256"
	HKDFExtractSHA512 = "HKDF-EXTRACT/SHA-512"
	HKDFExpandSHA256  = "HKDF-EXPAND/SHA-256"
	HKDFExpandSHA512  = "HKDF-EXPAND/SHA-512"

	AES128GCM         = "AES-128-GCM"
	AES256GCM         = "AES-256-GCM"
	AES128CCM         = "AES-128-CCM"
	ChaCha20Poly1305  = "CHACHA20-POLY1305"
	XChaCha20Poly1305 = "XCHACHA20-POLY1305"
)

// AEAD sizes shared by the registered ciphers.
const (
	aeadTagLen      = 16
	gcmNonceLen     = 12
	ccmNonceLen     = 13
	xchachaNonceLen = 24
)

// Largest plaintexts the ciphers accept in one message. CCM is bounded by
// its 2-byte length field (13-byte nonce), GCM by its 32-bit block counter
// and ChaCha20-Poly1305 by its 32-bit block counter over 64-byte blocks.
const (
	ccmMaxPlaintext    = 1<<16 - 1
	gcmMaxPlaintext    = (1<<32 - 2) * 16
	chachaMaxPlaintext = 1<<38 - 64
)

// hkdfMaxOutput is the RFC 5869 limit of 255 hash blocks.
func hkdfMaxOutput(hashLen int) int {
	return 255 * hashLen
}

func hash(name string, outLen int) Descriptor {
	return Descriptor{
		Name:         name,
		Category:     CategoryHash,
		Ops:          OpSqueeze,
		Key:          KeyNone,
		MaxOutputLen: outLen,
	}
}

func hmac(name string, hashLen int) Descriptor {
	return Descriptor{
		Name:      name,
		Category:  CategoryAuth,
		Ops:       OpSqueezeTag,
		Key:       KeyRequired,
		KeyLen:    hashLen,
		MaxTagLen: hashLen,
	}
}

func hkdfExtract(name, expand string, hashLen int) Descriptor {
	return Descriptor{
		Name:       name,
		Category:   CategoryKDF,
		Ops:        OpSqueezeKey,
		Key:        KeyRequired,
		KeyLen:     hashLen,
		Compatible: []string{expand},
	}
}

func hkdfExpand(name, extract string, hashLen int) Descriptor {
	return Descriptor{
		Name:         name,
		Category:     CategoryKDF,
		Ops:          OpSqueeze,
		Key:          KeyRequired,
		KeyLen:       hashLen,
		MaxOutputLen: hkdfMaxOutput(hashLen),
		Compatible:   []string{extract},
	}
}

func aead(name string, keyLen, nonceLen int, maxPlaintext uint64) Descriptor {
	return Descriptor{
		Name:            name,
		Category:        CategoryAEAD,
		Ops:             opsAEAD,
		Key:             KeyRequired,
		KeyLen:          keyLen,
		MinKeyLen:       keyLen,
		MaxKeyLen:       keyLen,
		MaxTagLen:       aeadTagLen,
		RequiresNonce:   true,
		NonceLen:        nonceLen,
		MaxPlaintextLen: maxPlaintext,
	}
}

var registry = func() map[string]Descriptor {
	blake := hash(BLAKE2b512, 64)
	blake.Key = KeyOptional
	blake.KeyLen = 64
	blake.MinKeyLen = 1
	blake.MaxKeyLen = 64

	all := []Descriptor{
		hash(SHA256, 32),
		hash(SHA384, 48),
		hash(SHA512, 64),
		hash(SHA512_256, 32),
		hash(SHA3_256, 32),
		hash(SHA3_512, 64),
		hash(SHAKE128, 0),
		hash(SHAKE256, 0),
		blake,

		hmac(HMACSHA256, 32),
		hmac(HMACSHA512, 64),

		hkdfExtract(HKDFExtractSHA256, HKDFExpandSHA256, 32),
		hkdfExtract(HKDFExtractSHA512, HKDFExpandSHA512, 64),
		hkdfExpand(HKDFExpandSHA256, HKDFExtractSHA256, 32),
		hkdfExpand(HKDFExpandSHA512, HKDFExtractSHA512, 64),

		aead(AES128GCM, 16, gcmNonceLen, gcmMaxPlaintext),
		aead(AES256GCM, 32, gcmNonceLen, gcmMaxPlaintext),
		aead(AES128CCM, 16, ccmNonceLen, ccmMaxPlaintext),
		aead(ChaCha20Poly1305, 32, gcmNonceLen, chachaMaxPlaintext),
		aead(XChaCha20Poly1305, 32, xchachaNonceLen, chachaMaxPlaintext),
	}

	m := make(map[string]Descriptor, len(all))
	for _, d := range all {
		if !d.Category.IsValid() || d.Ops == 0 {
			panic("algorithm: incomplete descriptor for " + d.Name)
		}
		m[d.Name] = d
	}
	return m
}()

// Lookup returns the descriptor registered under name.
// Returns ErrUnsupportedAlgorithm if the name is unknown.
func Lookup(name string) (Descriptor, error) {
	d, ok := registry[name]
	if !ok {
		return Descriptor{}, ErrUnsupportedAlgorithm
	}
	d.Compatible = append([]string(nil), d.Compatible...)
	return d, nil
}

// Names returns every registered algorithm name in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByCategory returns the sorted names of the algorithms in a category.
func ByCategory(c Category) []string {
	var names []string
	for name, d := range registry {
		if d.Category == c {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
