package offsetalloc

// NodeHandle is an index into an Allocator's node store. Unused denotes
// "no node" — the same sentinel value the public NoSpace constant uses.
type NodeHandle uint32

// Unused is the sentinel NodeHandle meaning "no node/region".
const Unused NodeHandle = 0xFFFFFFFF

// NoSpace is the sentinel value for Allocation.Offset on a failed Allocate.
const NoSpace uint32 = 0xFFFFFFFF

// node is one region record: either a free region (reachable through a bin
// list and the hierarchy) or an in-use region (reachable only through the
// spatial neighbor chain and the token returned from Allocate).
type node struct {
	dataOffset uint32
	dataSize   uint32

	binPrev, binNext           NodeHandle
	neighborPrev, neighborNext NodeHandle

	used bool
}

// Allocation is the public token returned by Allocate. Metadata is the sole
// required argument to Free and AllocationSize. The Allocator does not validate
// tokens passed back to it; a bad token is undefined behavior except for
// double-free, which panics.
type Allocation struct {
	Offset   uint32
	Metadata NodeHandle
}

// Region describes one leaf bin's free-list in StorageReportFull.
type Region struct {
	Size  uint32
	Count uint32
}

// StorageReport summarizes total and largest free space.
type StorageReport struct {
	TotalFreeSpace    uint32
	LargestFreeRegion uint32
}

// StorageReportFull breaks down free space by bin.
type StorageReportFull struct {
	FreeRegions [numLeafBins]Region
}
