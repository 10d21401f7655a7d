package respool

import "github.com/TomTonic/offsetalloc/offsetalloc"

// slot is one entry in a Pool's backing array. nodeHandle is the token the
// embedded Allocator gave us for this slot's one-unit region; it is needed
// to call Allocator.Free when the slot is released.
type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
	nodeHandle offsetalloc.NodeHandle
}

// Pool hands out generation-checked handles to values of type T, backed by
// an offsetalloc.Allocator that tracks which slot indices are free. Each
// slot is a one-unit region in the allocator's abstract [0, capacity) range;
// the allocator's offset becomes the slot index. This is the generalized
// handle layer spec.md names as an external collaborator without
// specifying its algorithm — Pool supplies one, the way the teacher's art
// package supplies typed node storage over its own raw arena.
//
// Pool is not safe for concurrent use; wrap it the way SyncAllocator wraps
// Allocator if you need one.
type Pool[T any] struct {
	alloc    *offsetalloc.Allocator
	slots    []slot[T]
	presence presenceBitmap
}

// New constructs a Pool that can hold up to capacity live values.
func New[T any](capacity uint32) *Pool[T] {
	return &Pool[T]{
		alloc:    offsetalloc.NewWithCapacity(capacity, capacity),
		slots:    make([]slot[T], capacity),
		presence: newPresenceBitmap(capacity),
	}
}

// Insert stores v in a free slot and returns a handle to it. ok is false if
// the pool is at capacity.
func (p *Pool[T]) Insert(v T) (h Handle, ok bool) {
	alloc := p.alloc.Allocate(1)
	if alloc.Offset == offsetalloc.NoSpace {
		return Handle{}, false
	}

	idx := alloc.Offset
	s := &p.slots[idx]
	s.value = v
	s.occupied = true
	s.nodeHandle = alloc.Metadata
	s.generation++
	if s.generation == 0 {
		// Wrapped past 2^32-1 reuses of this slot; skip 0 so the zero
		// Handle can never collide with a real occupant.
		s.generation = 1
	}
	p.presence.set(idx)

	return Handle{index: idx, generation: s.generation}, true
}

// Get returns a pointer to the value h identifies. The pointer is valid
// until the slot is released or reused; callers that need to retain a copy
// should dereference immediately. It returns ErrStaleHandle if h no longer
// identifies a live value.
func (p *Pool[T]) Get(h Handle) (*T, error) {
	s, err := p.live(h)
	if err != nil {
		return nil, err
	}
	return &s.value, nil
}

// Release frees the slot h identifies, returning its region to the
// allocator so a future Insert can reuse it. It returns ErrStaleHandle if h
// no longer identifies a live value; releasing is otherwise idempotent from
// the caller's perspective (a second Release with the same stale h also
// reports ErrStaleHandle rather than panicking).
func (p *Pool[T]) Release(h Handle) error {
	s, err := p.live(h)
	if err != nil {
		return err
	}

	var zero T
	nodeHandle := s.nodeHandle
	s.value = zero
	s.occupied = false
	s.nodeHandle = 0
	p.presence.clear(h.index)

	p.alloc.Free(offsetalloc.Allocation{Offset: h.index, Metadata: nodeHandle})
	return nil
}

// Len reports the number of currently live values.
func (p *Pool[T]) Len() int {
	return p.presence.count()
}

func (p *Pool[T]) live(h Handle) (*slot[T], error) {
	if int(h.index) >= len(p.slots) {
		return nil, ErrStaleHandle{Handle: h}
	}
	s := &p.slots[h.index]
	if !s.occupied || s.generation != h.generation {
		return nil, ErrStaleHandle{Handle: h}
	}
	return s, nil
}
