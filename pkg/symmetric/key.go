package symmetric

import (
	"sync/atomic"

	"github.com/backkem/symcrypto/pkg/handle"
)

// Key is provider-held key material bound to an algorithm.
// Keys are immutable and may be shared by concurrently open sessions.
type Key struct {
	m      *Manager
	h      handle.Handle
	alg    string
	closed atomic.Bool
}

func newKey(m *Manager, h handle.Handle, alg string) *Key {
	return &Key{m: m, h: h, alg: alg}
}

// Algorithm returns the name of the algorithm the key was created for.
func (k *Key) Algorithm() string {
	return k.alg
}

// Export returns a fresh copy of the key bytes.
// Returns ErrInvalidState after Close.
func (k *Key) Export() ([]byte, error) {
	if k.closed.Load() {
		return nil, newError("key_export", ErrInvalidState, nil)
	}
	raw, err := k.m.p.KeyExport(k.h)
	if err != nil {
		return nil, wrap("key_export", err)
	}
	return raw, nil
}

// Close releases the key. Sessions already opened with it are unaffected.
// Closing a closed key is a no-op.
func (k *Key) Close() error {
	if !k.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := k.m.p.CloseKey(k.h); err != nil {
		return wrap("key_close", err)
	}
	return nil
}
