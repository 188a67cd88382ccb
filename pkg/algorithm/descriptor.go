package algorithm

// Descriptor is the static metadata of one algorithm.
// Descriptors are values; the registry hands out copies.
type Descriptor struct {
	// Name is the registry name, e.g. "AES-256-GCM" or "HMAC/SHA-256".
	Name string

	Category Category

	// Ops is the set of finalize operations a session may perform.
	Ops Op

	Key KeyUsage

	// KeyLen is the size of generated keys in bytes.
	KeyLen int

	// MinKeyLen and MaxKeyLen bound imported keys. Equal values mean a fixed size.
	MinKeyLen int
	MaxKeyLen int

	// MaxTagLen is the authentication tag size (Auth and AEAD), 0 otherwise.
	MaxTagLen int

	RequiresNonce bool
	NonceLen      int

	// MaxOutputLen bounds squeeze output. 0 means unbounded.
	MaxOutputLen int

	// MaxPlaintextLen bounds a single AEAD message. 0 means unbounded.
	MaxPlaintextLen uint64

	// Compatible lists other algorithms whose keys this one accepts.
	Compatible []string
}

// Supports returns true if every operation in op is permitted.
func (d Descriptor) Supports(op Op) bool {
	return op != 0 && d.Ops&op == op
}

// SupportsKeys returns true if sessions may be opened with a key.
func (d Descriptor) SupportsKeys() bool {
	return d.Key != KeyNone
}

// RequiresKey returns true if sessions must be opened with a key.
func (d Descriptor) RequiresKey() bool {
	return d.Key == KeyRequired
}

// FixedKeyLen returns true if imported keys must have exactly one size.
func (d Descriptor) FixedKeyLen() bool {
	return d.MaxKeyLen > 0 && d.MinKeyLen == d.MaxKeyLen
}

// KeyCompatible returns true if a key created for alg may be bound to a
// session of this algorithm.
func (d Descriptor) KeyCompatible(alg string) bool {
	if alg == d.Name {
		return true
	}
	for _, c := range d.Compatible {
		if c == alg {
			return true
		}
	}
	return false
}

// CheckKeyLen validates the length of an imported key.
func (d Descriptor) CheckKeyLen(n int) error {
	if !d.SupportsKeys() {
		return ErrKeyNotSupported
	}
	if n < d.MinKeyLen || (d.MaxKeyLen > 0 && n > d.MaxKeyLen) {
		return ErrInvalidKeyLength
	}
	return nil
}

// CheckOutputLen validates a requested squeeze length.
func (d Descriptor) CheckOutputLen(n int) error {
	if n < 0 {
		return ErrInvalidOutputLength
	}
	if d.MaxOutputLen > 0 && n > d.MaxOutputLen {
		return ErrInvalidOutputLength
	}
	return nil
}

// CheckPlaintextLen validates the length of a message to encrypt.
func (d Descriptor) CheckPlaintextLen(n int) error {
	if d.MaxPlaintextLen > 0 && uint64(n) > d.MaxPlaintextLen {
		return ErrPlaintextTooLong
	}
	return nil
}

// CheckNonce validates a nonce against the descriptor.
// A nil nonce is only valid for algorithms that do not require one.
func (d Descriptor) CheckNonce(nonce []byte) error {
	if !d.RequiresNonce {
		if nonce != nil {
			return ErrNonceNotSupported
		}
		return nil
	}
	if nonce == nil {
		return ErrNonceRequired
	}
	if len(nonce) != d.NonceLen {
		return ErrInvalidNonceLength
	}
	return nil
}
