package symmetric

import (
	"sync/atomic"

	"github.com/backkem/symcrypto/pkg/handle"
)

// Tag is an authentication tag produced by SqueezeTag.
type Tag struct {
	m      *Manager
	h      handle.Handle
	n      int
	closed atomic.Bool
}

// Verify compares candidate with the tag in constant time.
// It returns false on a length or content mismatch and after Close.
func (t *Tag) Verify(candidate []byte) bool {
	if t.closed.Load() {
		return false
	}
	ok, err := t.m.p.TagVerify(t.h, candidate)
	return err == nil && ok
}

// Bytes returns a fresh copy of the tag.
func (t *Tag) Bytes() ([]byte, error) {
	if t.closed.Load() {
		return nil, newError("tag_export", ErrInvalidState, nil)
	}
	raw, err := t.m.p.TagExport(t.h)
	if err != nil {
		return nil, wrap("tag_export", err)
	}
	return raw, nil
}

// Len returns the tag length in bytes.
func (t *Tag) Len() int {
	return t.n
}

// Close releases the tag. Closing a closed tag is a no-op.
func (t *Tag) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := t.m.p.CloseTag(t.h); err != nil {
		return wrap("tag_close", err)
	}
	return nil
}
