package crypto

import (
	"bytes"
	"sync"
)

// NonceSequence hands out unique nonces of a fixed size by incrementing a
// little-endian counter. It returns ErrNonceExhausted once the counter
// would wrap back to its starting value.
//
// Usage:
//
//	seq, _ := crypto.NewNonceSequence(crypto.GCMNonceSize, nil)
//	nonce, err := seq.Next()
type NonceSequence struct {
	mu        sync.Mutex
	counter   []byte
	start     []byte
	exhausted bool
}

// NewNonceSequence creates a sequence of size-byte nonces. A nil initial
// value starts the sequence at zero; otherwise initial must be size bytes.
func NewNonceSequence(size int, initial []byte) (*NonceSequence, error) {
	if size <= 0 {
		return nil, ErrInvalidNonceSize
	}
	counter := make([]byte, size)
	if initial != nil {
		if len(initial) != size {
			return nil, ErrInvalidNonceSize
		}
		copy(counter, initial)
	}
	return &NonceSequence{
		counter: counter,
		start:   append([]byte(nil), counter...),
	}, nil
}

// Size returns the nonce size in bytes.
func (s *NonceSequence) Size() int {
	return len(s.counter)
}

// Next returns the current nonce and advances the sequence.
func (s *NonceSequence) Next() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exhausted {
		return nil, ErrNonceExhausted
	}

	nonce := append([]byte(nil), s.counter...)

	for i := range s.counter {
		s.counter[i]++
		if s.counter[i] != 0 {
			break
		}
	}
	if bytes.Equal(s.counter, s.start) {
		s.exhausted = true
	}

	return nonce, nil
}
