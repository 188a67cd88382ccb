// Package handle implements a generation-checked arena of resources addressed
// by opaque handles.
//
// A Handle packs a slot index and the generation of the slot at the time the
// resource was registered. Closing a resource frees the slot and bumps its
// generation, so a stale copy of the handle is rejected instead of silently
// resolving to whatever was registered in the slot afterwards. This catches
// use-after-close and double-close without relying on the garbage collector.
package handle

import (
	"fmt"
	"sync"
)

// Capacity constants.
const (
	// DefaultMaxHandles is the default maximum number of live handles per table.
	DefaultMaxHandles = 1024

	// MaxHandles is the largest capacity a table accepts (index is 32 bits).
	MaxHandles = 1 << 31
)

// Handle is an opaque reference to a resource registered in a Table.
// The zero Handle is never issued.
type Handle uint64

// index returns the slot index encoded in the handle.
func (h Handle) index() uint32 {
	return uint32(h)
}

// generation returns the slot generation encoded in the handle.
func (h Handle) generation() uint32 {
	return uint32(h >> 32)
}

// String returns a debug representation of the handle.
func (h Handle) String() string {
	return fmt.Sprintf("%d@%d", h.index(), h.generation())
}

func newHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index))
}

type slot[T any] struct {
	gen  uint32 // starts at 1 so the zero Handle never resolves
	used bool
	val  T
}

// Table is an arena of resources of type T.
// It handles slot allocation, lookup, and lifecycle management.
//
// Freed slots are reused most-recently-freed first; their generation is
// incremented on every close.
//
// All methods are safe for concurrent use.
type Table[T any] struct {
	slots      []slot[T]
	free       []uint32
	live       int
	maxHandles int

	mu sync.RWMutex
}

// NewTable creates a new handle table.
// maxHandles limits the number of live handles (0 uses DefaultMaxHandles).
func NewTable[T any](maxHandles int) *Table[T] {
	if maxHandles <= 0 {
		maxHandles = DefaultMaxHandles
	}
	if maxHandles > MaxHandles {
		maxHandles = MaxHandles
	}

	return &Table[T]{
		maxHandles: maxHandles,
	}
}

// Register stores val and returns a new handle for it.
// Returns ErrTooManyHandles if the table is at capacity.
func (t *Table[T]) Register(val T) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.live >= t.maxHandles {
		return 0, ErrTooManyHandles
	}

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot[T]{gen: 1})
	}

	s := &t.slots[idx]
	s.used = true
	s.val = val
	t.live++

	return newHandle(idx, s.gen), nil
}

// Get resolves a handle.
// Returns ErrInvalidHandle if the handle was never issued, was closed, or
// belongs to an earlier generation of its slot.
func (t *Table[T]) Get(h Handle) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, err := t.lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.val, nil
}

// Close releases a handle and returns the resource it referenced.
// Closing the same handle twice returns ErrInvalidHandle.
func (t *Table[T]) Close(h Handle) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	s, err := t.lookup(h)
	if err != nil {
		return zero, err
	}

	val := s.val
	s.val = zero
	s.used = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	t.free = append(t.free, h.index())
	t.live--

	return val, nil
}

// lookup must be called with t.mu held.
func (t *Table[T]) lookup(h Handle) (*slot[T], error) {
	idx := h.index()
	if int64(idx) >= int64(len(t.slots)) {
		return nil, ErrInvalidHandle
	}
	s := &t.slots[idx]
	if !s.used || s.gen != h.generation() {
		return nil, ErrInvalidHandle
	}
	return s, nil
}

// Count returns the number of live handles.
func (t *Table[T]) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// IsFull returns true if no more handles can be registered.
func (t *Table[T]) IsFull() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live >= t.maxHandles
}

// MaxHandles returns the maximum number of live handles allowed.
func (t *Table[T]) MaxHandles() int {
	return t.maxHandles
}

// Handles returns the handles currently live, in slot order.
func (t *Table[T]) Handles() []Handle {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]Handle, 0, t.live)
	for i := range t.slots {
		if t.slots[i].used {
			result = append(result, newHandle(uint32(i), t.slots[i].gen))
		}
	}
	return result
}

// ForEach calls fn for each live resource.
// The callback must not modify the table. Iteration stops when fn returns false.
func (t *Table[T]) ForEach(fn func(Handle, T) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.slots {
		s := &t.slots[i]
		if !s.used {
			continue
		}
		if !fn(newHandle(uint32(i), s.gen), s.val) {
			return
		}
	}
}
