package offsetalloc

import "fmt"

// StorageReport summarizes free space.
//
// It preserves a quirk of the reference implementation: it reports
// zero/zero whenever freeOffset <= 0, that is when the node-handle freelist
// is empty (-1) or down to its last spare handle (0), even though bytes may
// still be free. Use LargestFreeRegion to distinguish
// fragmentation from genuine exhaustion in the non-degenerate case.
func (a *Allocator) StorageReport() StorageReport {
	if a.freeOffset <= 0 {
		return StorageReport{}
	}

	report := StorageReport{TotalFreeSpace: a.freeStorage}
	if bin, ok := a.hierarchy.highestSetBin(); ok {
		report.LargestFreeRegion = smallFloatDecode(bin)
		if report.TotalFreeSpace < report.LargestFreeRegion {
			panic(fmt.Sprintf("offsetalloc: invariant violated: total free %d < largest free %d",
				report.TotalFreeSpace, report.LargestFreeRegion))
		}
	}
	return report
}

// StorageReportFull walks every bin list and reports its size class and
// occupant count. O(numLeafBins) plus the total number of free regions.
func (a *Allocator) StorageReportFull() StorageReportFull {
	var report StorageReportFull
	for i := 0; i < numLeafBins; i++ {
		var count uint32
		h := a.binHeads[i]
		for h != Unused {
			count++
			h = a.nodes[h].binNext
		}
		report.FreeRegions[i] = Region{Size: smallFloatDecode(uint32(i)), Count: count}
	}
	return report
}
