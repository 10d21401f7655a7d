// Package respool layers a typed, generation-checked resource pool on top
// of offsetalloc.Allocator, the way the teacher repo's art package layers
// typed node storage over a raw bitmap arena.
package respool

import "fmt"

// Handle identifies one slot in a Pool. It is opaque to callers; the zero
// Handle is never issued by Insert and is safe to use as a "no handle yet"
// sentinel in caller-owned structs.
type Handle struct {
	index      uint32
	generation uint32
}

// Pack encodes the handle as a single uint64, index in the high 32 bits,
// generation in the low 32 bits, for callers that want a flat integer key
// (a map key, a wire field) instead of the struct form.
func (h Handle) Pack() uint64 {
	return uint64(h.index)<<32 | uint64(h.generation)
}

// Unpack decodes a uint64 produced by Pack back into a Handle.
func Unpack(v uint64) Handle {
	return Handle{index: uint32(v >> 32), generation: uint32(v)}
}

func (h Handle) String() string {
	return fmt.Sprintf("respool.Handle{index:%d,generation:%d}", h.index, h.generation)
}

// ErrStaleHandle is returned by Pool.Get/Release when a handle's generation
// no longer matches the slot's current occupant (the slot was released and
// reused, or never occupied).
type ErrStaleHandle struct {
	Handle Handle
}

func (e ErrStaleHandle) Error() string {
	return fmt.Sprintf("respool: stale handle %s", e.Handle)
}
