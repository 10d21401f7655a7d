package respool

import (
	"testing"

	set3 "github.com/TomTonic/Set3"
)

func TestPoolInsertGetRelease(t *testing.T) {
	p := New[string](4)

	h1, ok := p.Insert("alpha")
	if !ok {
		t.Fatalf("Insert(alpha) failed on an empty pool")
	}
	v, err := p.Get(h1)
	if err != nil {
		t.Fatalf("Get(h1): %v", err)
	}
	if *v != "alpha" {
		t.Fatalf("Get(h1) = %q, want alpha", *v)
	}

	if err := p.Release(h1); err != nil {
		t.Fatalf("Release(h1): %v", err)
	}
	if _, err := p.Get(h1); err == nil {
		t.Fatalf("Get(h1) after Release should fail")
	}
	if err := p.Release(h1); err == nil {
		t.Fatalf("second Release(h1) should report a stale handle, not succeed silently")
	}
}

func TestPoolGenerationPreventsStaleReuse(t *testing.T) {
	p := New[int](2)

	h1, _ := p.Insert(100)
	if err := p.Release(h1); err != nil {
		t.Fatalf("Release(h1): %v", err)
	}

	h2, ok := p.Insert(200)
	if !ok {
		t.Fatalf("Insert(200) failed")
	}
	if h2.index != h1.index {
		t.Fatalf("expected slot reuse: h2.index = %d, h1.index = %d", h2.index, h1.index)
	}
	if h2.generation == h1.generation {
		t.Fatalf("reused slot did not bump generation: h1.gen=%d h2.gen=%d", h1.generation, h2.generation)
	}

	if _, err := p.Get(h1); err == nil {
		t.Fatalf("stale handle h1 should not resolve to the slot's new occupant")
	}
	v, err := p.Get(h2)
	if err != nil {
		t.Fatalf("Get(h2): %v", err)
	}
	if *v != 200 {
		t.Fatalf("Get(h2) = %d, want 200", *v)
	}
}

func TestPoolCapacityExhaustion(t *testing.T) {
	p := New[int](3)
	for i := 0; i < 3; i++ {
		if _, ok := p.Insert(i); !ok {
			t.Fatalf("Insert(%d) failed within capacity", i)
		}
	}
	if _, ok := p.Insert(99); ok {
		t.Fatalf("Insert beyond capacity should fail")
	}
}

func TestHandlePackRoundTrip(t *testing.T) {
	p := New[int](4)
	h, _ := p.Insert(7)
	if got := Unpack(h.Pack()); got != h {
		t.Fatalf("Unpack(Pack(%v)) = %v", h, got)
	}
}

// TestPoolLiveSetMatchesLen drives a pseudo-random sequence of Insert/Release
// calls and cross-checks Pool.Len against a Set3-backed mirror of the
// handles the test believes are live, the same auxiliary-verification role
// Set3 plays in offsetalloc's property tests.
func TestPoolLiveSetMatchesLen(t *testing.T) {
	const capacity = 32
	p := New[int](capacity)

	live := set3.Empty[uint64]()
	var order []Handle

	seed := uint32(1)
	next := func(n uint32) uint32 {
		seed = seed*1664525 + 1013904223
		return seed % n
	}

	for i := 0; i < 2000; i++ {
		if len(order) == 0 || next(3) != 0 {
			h, ok := p.Insert(i)
			if !ok {
				continue
			}
			if !live.Add(h.Pack()) {
				t.Fatalf("Set3 mirror: handle %v already tracked as live", h)
			}
			order = append(order, h)
		} else {
			idx := int(next(uint32(len(order))))
			h := order[idx]
			order[idx] = order[len(order)-1]
			order = order[:len(order)-1]

			if !live.Contains(h.Pack()) {
				t.Fatalf("Set3 mirror: handle %v missing before release", h)
			}
			live.Remove(h.Pack())
			if err := p.Release(h); err != nil {
				t.Fatalf("Release(%v): %v", h, err)
			}
		}

		if got, want := p.Len(), int(live.Size()); got != want {
			t.Fatalf("Pool.Len() = %d, Set3 mirror size = %d", got, want)
		}
	}
}
