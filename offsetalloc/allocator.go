package offsetalloc

// DefaultMaxAllocations is the live-region capacity used by New when the
// caller does not size the node store explicitly.
const DefaultMaxAllocations = 128 * 1024

// Allocator is a two-level segregated-fit offset allocator over the abstract
// range [0, size). It owns no backing memory: Allocate returns an offset the
// caller places into its own heap/buffer/address space.
//
// Allocator is not safe for concurrent use; see SyncAllocator for a
// lock-wrapped façade.
type Allocator struct {
	size        uint32
	maxAllocs   uint32
	freeStorage uint32

	hierarchy bitHierarchy
	binHeads  [numLeafBins]NodeHandle

	nodes      []node
	freeNodes  []NodeHandle
	freeOffset int64 // index of the freelist stack top; -1 means empty
}

// New constructs an Allocator over [0, size) with DefaultMaxAllocations live
// regions.
func New(size uint32) *Allocator {
	return NewWithCapacity(size, DefaultMaxAllocations)
}

// NewWithCapacity constructs an Allocator over [0, size) that can hold at
// most maxAllocs simultaneously live regions (free + used).
func NewWithCapacity(size uint32, maxAllocs uint32) *Allocator {
	a := &Allocator{size: size, maxAllocs: maxAllocs}
	a.Reset()
	return a
}

// Reset re-initializes the allocator to a single free region spanning the
// whole range, reusing its existing buffers.
func (a *Allocator) Reset() {
	a.freeStorage = 0
	a.hierarchy = bitHierarchy{}
	for i := range a.binHeads {
		a.binHeads[i] = Unused
	}

	if cap(a.nodes) >= int(a.maxAllocs) {
		a.nodes = a.nodes[:a.maxAllocs]
	} else {
		a.nodes = make([]node, a.maxAllocs)
	}
	if cap(a.freeNodes) >= int(a.maxAllocs) {
		a.freeNodes = a.freeNodes[:a.maxAllocs]
	} else {
		a.freeNodes = make([]NodeHandle, a.maxAllocs)
	}

	// Freelist is a stack; handles are pushed in reverse order so that
	// handle 0 pops first.
	for i := range a.freeNodes {
		a.freeNodes[i] = NodeHandle(a.maxAllocs) - NodeHandle(i) - 1
	}
	a.freeOffset = int64(a.maxAllocs) - 1

	if a.maxAllocs > 0 {
		a.insertRegion(a.size, 0)
	}
}

// Allocate reserves a region of at least size bytes and returns a token
// identifying it. It returns Allocation{NoSpace, Unused} if no free region is
// large enough, or if satisfying the request would leave a remainder with no
// spare node handle to record it (the live-region limit).
//
// The freelist-exhaustion check is deferred until we know whether a split is
// actually required: an exact-fit allocation never needs a new handle, so it
// must succeed even with freeOffset at -1, as long as a matching free region
// exists. Checking unconditionally at entry — as the reference source does —
// rejects that final exact-fit allocation a handle early, wasting the last
// slot of a tightly sized pool.
func (a *Allocator) Allocate(size uint32) Allocation {
	minBin := smallFloatRoundUp(size)
	bin, ok := a.hierarchy.findFirstSetAtLeast(minBin)
	if !ok {
		return Allocation{Offset: NoSpace, Metadata: Unused}
	}

	h := a.binHeads[bin]
	n := &a.nodes[h]
	total := n.dataSize

	if total-size > 0 && a.freeOffset == -1 {
		return Allocation{Offset: NoSpace, Metadata: Unused}
	}

	n.dataSize = size
	n.used = true

	a.binHeads[bin] = n.binNext
	if n.binNext != Unused {
		a.nodes[n.binNext].binPrev = Unused
	}
	if a.binHeads[bin] == Unused {
		a.hierarchy.remove(bin)
	}
	a.freeStorage -= total

	remainder := total - size
	if remainder > 0 {
		newHandle := a.insertRegion(remainder, n.dataOffset+size)
		// n may be stale after insertRegion grew no slice (it never does,
		// but re-fetch for clarity and safety against future changes).
		n = &a.nodes[h]
		if n.neighborNext != Unused {
			a.nodes[n.neighborNext].neighborPrev = newHandle
		}
		a.nodes[newHandle].neighborPrev = h
		a.nodes[newHandle].neighborNext = n.neighborNext
		n.neighborNext = newHandle
	}

	return Allocation{Offset: n.dataOffset, Metadata: h}
}

// Free releases a region previously returned by Allocate, coalescing it with
// any free spatial neighbors. Freeing an already-free token panics (double
// free).
func (a *Allocator) Free(alloc Allocation) {
	if alloc.Metadata == Unused {
		panic("offsetalloc: Free called with a NoSpace allocation token")
	}
	if a.nodes == nil {
		panic("offsetalloc: Free called on a destroyed/moved-from allocator")
	}

	h := alloc.Metadata
	n := &a.nodes[h]
	if !n.used {
		panic("offsetalloc: double free")
	}

	offset := n.dataOffset
	size := n.dataSize

	if n.neighborPrev != Unused && !a.nodes[n.neighborPrev].used {
		prev := &a.nodes[n.neighborPrev]
		offset = prev.dataOffset
		size += prev.dataSize
		a.removeRegion(n.neighborPrev)
		n.neighborPrev = prev.neighborPrev
	}

	if n.neighborNext != Unused && !a.nodes[n.neighborNext].used {
		next := &a.nodes[n.neighborNext]
		size += next.dataSize
		a.removeRegion(n.neighborNext)
		n.neighborNext = next.neighborNext
	}

	neighborPrev, neighborNext := n.neighborPrev, n.neighborNext

	a.freeOffset++
	a.freeNodes[a.freeOffset] = h

	combined := a.insertRegion(size, offset)
	if neighborNext != Unused {
		a.nodes[combined].neighborNext = neighborNext
		a.nodes[neighborNext].neighborPrev = combined
	}
	if neighborPrev != Unused {
		a.nodes[combined].neighborPrev = neighborPrev
		a.nodes[neighborPrev].neighborNext = combined
	}
}

// insertRegion pushes a free region of size bytes at offset into its bin,
// popping a handle from the node freelist.
func (a *Allocator) insertRegion(size, offset uint32) NodeHandle {
	bin := smallFloatRoundDown(size)

	if a.binHeads[bin] == Unused {
		a.hierarchy.insert(bin)
	}

	top := a.binHeads[bin]
	h := a.freeNodes[a.freeOffset]
	a.freeOffset--

	a.nodes[h] = node{
		dataOffset: offset,
		dataSize:   size,
		binNext:    top,
		binPrev:    Unused,
		neighborPrev: Unused,
		neighborNext: Unused,
	}
	if top != Unused {
		a.nodes[top].binPrev = h
	}
	a.binHeads[bin] = h

	a.freeStorage += size
	return h
}

// removeRegion unlinks a free node from its bin list and returns its handle
// to the freelist. The node's neighbor links are left untouched; the caller
// is responsible for those.
func (a *Allocator) removeRegion(h NodeHandle) {
	n := &a.nodes[h]

	if n.binPrev != Unused {
		a.nodes[n.binPrev].binNext = n.binNext
		if n.binNext != Unused {
			a.nodes[n.binNext].binPrev = n.binPrev
		}
	} else {
		bin := smallFloatRoundDown(n.dataSize)
		a.binHeads[bin] = n.binNext
		if n.binNext != Unused {
			a.nodes[n.binNext].binPrev = Unused
		}
		if a.binHeads[bin] == Unused {
			a.hierarchy.remove(bin)
		}
	}

	a.freeOffset++
	a.freeNodes[a.freeOffset] = h
	a.freeStorage -= n.dataSize
}

// AllocationSize returns the size in bytes of the region described by alloc.
// It returns 0 for the NoSpace sentinel and for any token used after the
// allocator has been moved-from via Clone.
func (a *Allocator) AllocationSize(alloc Allocation) uint32 {
	if alloc.Metadata == Unused {
		return 0
	}
	if a.nodes == nil {
		return 0
	}
	return a.nodes[alloc.Metadata].dataSize
}

// Clone transfers ownership of a's buffers to a new Allocator and leaves a in
// a destroyed state (maxAllocs == 0, nil buffers), mirroring the source's
// move-construction semantics in a language with no implicit move.
func (a *Allocator) Clone() *Allocator {
	moved := &Allocator{
		size:        a.size,
		maxAllocs:   a.maxAllocs,
		freeStorage: a.freeStorage,
		hierarchy:   a.hierarchy,
		binHeads:    a.binHeads,
		nodes:       a.nodes,
		freeNodes:   a.freeNodes,
		freeOffset:  a.freeOffset,
	}

	a.nodes = nil
	a.freeNodes = nil
	a.freeOffset = -1
	a.maxAllocs = 0
	a.hierarchy = bitHierarchy{}
	for i := range a.binHeads {
		a.binHeads[i] = Unused
	}

	return moved
}
