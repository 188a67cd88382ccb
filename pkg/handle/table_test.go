package handle

import (
	"sync"
	"testing"
)

func TestNewTable(t *testing.T) {
	t.Run("default max handles", func(t *testing.T) {
		table := NewTable[string](0)
		if table.MaxHandles() != DefaultMaxHandles {
			t.Errorf("MaxHandles() = %d, want %d", table.MaxHandles(), DefaultMaxHandles)
		}
	})

	t.Run("custom max handles", func(t *testing.T) {
		table := NewTable[string](100)
		if table.MaxHandles() != 100 {
			t.Errorf("MaxHandles() = %d, want 100", table.MaxHandles())
		}
	})

	t.Run("initial state", func(t *testing.T) {
		table := NewTable[string](10)
		if table.Count() != 0 {
			t.Errorf("Count() = %d, want 0", table.Count())
		}
		if table.IsFull() {
			t.Error("IsFull() should be false for empty table")
		}
	})
}

func TestTable_Register(t *testing.T) {
	t.Run("issues unique non-zero handles", func(t *testing.T) {
		table := NewTable[int](100)
		seen := make(map[Handle]bool)

		for i := 0; i < 10; i++ {
			h, err := table.Register(i)
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if h == 0 {
				t.Error("Register() returned the zero handle")
			}
			if seen[h] {
				t.Errorf("Register() returned duplicate handle: %v", h)
			}
			seen[h] = true
		}
	})

	t.Run("returns error when table full", func(t *testing.T) {
		table := NewTable[int](2)
		table.Register(1)
		table.Register(2)

		_, err := table.Register(3)
		if err != ErrTooManyHandles {
			t.Errorf("Register() error = %v, want ErrTooManyHandles", err)
		}
		if !table.IsFull() {
			t.Error("IsFull() should be true")
		}
	})

	t.Run("reuses freed slots with a new generation", func(t *testing.T) {
		table := NewTable[int](1)
		h1, _ := table.Register(1)
		if _, err := table.Close(h1); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		h2, err := table.Register(2)
		if err != nil {
			t.Fatalf("Register() after close error = %v", err)
		}
		if h2.index() != h1.index() {
			t.Errorf("slot index = %d, want reused %d", h2.index(), h1.index())
		}
		if h2 == h1 {
			t.Error("reused slot must carry a different generation")
		}
	})
}

func TestTable_Get(t *testing.T) {
	table := NewTable[string](10)
	h, _ := table.Register("value")

	t.Run("resolves live handle", func(t *testing.T) {
		v, err := table.Get(h)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if v != "value" {
			t.Errorf("Get() = %q, want %q", v, "value")
		}
	})

	t.Run("rejects zero handle", func(t *testing.T) {
		if _, err := table.Get(0); err != ErrInvalidHandle {
			t.Errorf("Get(0) error = %v, want ErrInvalidHandle", err)
		}
	})

	t.Run("rejects out of range index", func(t *testing.T) {
		if _, err := table.Get(newHandle(999, 1)); err != ErrInvalidHandle {
			t.Errorf("Get() error = %v, want ErrInvalidHandle", err)
		}
	})
}

func TestTable_Close(t *testing.T) {
	t.Run("returns the resource", func(t *testing.T) {
		table := NewTable[string](10)
		h, _ := table.Register("value")

		v, err := table.Close(h)
		if err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if v != "value" {
			t.Errorf("Close() = %q, want %q", v, "value")
		}
		if table.Count() != 0 {
			t.Errorf("Count() after Close = %d, want 0", table.Count())
		}
	})

	t.Run("double close is rejected", func(t *testing.T) {
		table := NewTable[string](10)
		h, _ := table.Register("value")
		table.Close(h)

		if _, err := table.Close(h); err != ErrInvalidHandle {
			t.Errorf("second Close() error = %v, want ErrInvalidHandle", err)
		}
	})

	t.Run("stale handle does not resolve to new resource", func(t *testing.T) {
		table := NewTable[string](10)
		stale, _ := table.Register("old")
		table.Close(stale)
		fresh, _ := table.Register("new")

		if _, err := table.Get(stale); err != ErrInvalidHandle {
			t.Errorf("Get(stale) error = %v, want ErrInvalidHandle", err)
		}
		if _, err := table.Close(stale); err != ErrInvalidHandle {
			t.Errorf("Close(stale) error = %v, want ErrInvalidHandle", err)
		}
		if v, _ := table.Get(fresh); v != "new" {
			t.Errorf("Get(fresh) = %q, want %q", v, "new")
		}
	})
}

func TestTable_Handles(t *testing.T) {
	table := NewTable[int](10)
	h1, _ := table.Register(1)
	h2, _ := table.Register(2)
	h3, _ := table.Register(3)
	table.Close(h2)

	handles := table.Handles()
	if len(handles) != 2 {
		t.Fatalf("Handles() returned %d handles, want 2", len(handles))
	}
	if handles[0] != h1 || handles[1] != h3 {
		t.Errorf("Handles() = %v, want [%v %v]", handles, h1, h3)
	}
}

func TestTable_ForEach(t *testing.T) {
	table := NewTable[int](10)
	for i := 1; i <= 5; i++ {
		table.Register(i)
	}

	t.Run("visits every live resource", func(t *testing.T) {
		sum := 0
		table.ForEach(func(_ Handle, v int) bool {
			sum += v
			return true
		})
		if sum != 15 {
			t.Errorf("sum = %d, want 15", sum)
		}
	})

	t.Run("stops early", func(t *testing.T) {
		visited := 0
		table.ForEach(func(_ Handle, _ int) bool {
			visited++
			return visited < 2
		})
		if visited != 2 {
			t.Errorf("visited = %d, want 2", visited)
		}
	})
}

func TestTable_Concurrent(t *testing.T) {
	table := NewTable[int](0)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				h, err := table.Register(g*1000 + i)
				if err != nil {
					t.Errorf("Register() error = %v", err)
					return
				}
				v, err := table.Get(h)
				if err != nil || v != g*1000+i {
					t.Errorf("Get() = %d, %v; want %d", v, err, g*1000+i)
					return
				}
				if _, err := table.Close(h); err != nil {
					t.Errorf("Close() error = %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	if table.Count() != 0 {
		t.Errorf("Count() = %d, want 0", table.Count())
	}
}
