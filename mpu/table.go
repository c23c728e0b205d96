package mpu

// Slots 0 and 1 are permanently reserved; the free-slot scan never returns
// them.
const (
	FlashRegionNumber = 0
	RAMRegionNumber   = 1
)

// RegionTable is the per-process protection state: one descriptor per
// hardware slot plus the process breakpoints. All mutation goes through the
// allocator operations, which either re-establish every invariant or leave
// the table untouched.
//
// The generation counter increases on every mutation that changes what the
// hardware must enforce; the sync layer compares it against the generation
// it last committed.
type RegionTable struct {
	regions [NumRegions]RegionDescriptor

	memoryStart   uint64
	memorySize    uint64
	appBreak      uint64
	highWaterMark uint64
	kernelBreak   uint64
	flashStart    uint64
	flashSize     uint64

	gen    uint64
	solver Solver
}

// Region returns the descriptor in a slot. Slots outside 0..NumRegions-1
// read as disabled.
func (t *RegionTable) Region(slot int) RegionDescriptor {
	if slot < 0 || slot >= NumRegions {
		return EmptyRegion(slot)
	}
	return t.regions[slot]
}

// Generation increases whenever the table's hardware-visible state changes.
func (t *RegionTable) Generation() uint64 {
	return t.gen
}

// MemoryStart is the base of the process's RAM block.
func (t *RegionTable) MemoryStart() uint64 {
	return t.memoryStart
}

// MemorySize is the full size of the process's RAM block, including
// kernel-owned memory above the kernel break.
func (t *RegionTable) MemorySize() uint64 {
	return t.memorySize
}

// AppBreak is the first address past the application's accessible heap. It
// is always subregion-aligned: the end of the enabled subregion run of the
// RAM region.
func (t *RegionTable) AppBreak() uint64 {
	return t.appBreak
}

// KernelBreak is the lowest address of kernel-private per-process storage.
func (t *RegionTable) KernelBreak() uint64 {
	return t.kernelBreak
}

// HighWaterMark is the highest address the application has ever shared; the
// app break may never retreat below it.
func (t *RegionTable) HighWaterMark() uint64 {
	return t.highWaterMark
}

// FlashStart is the base of the process's code window.
func (t *RegionTable) FlashStart() uint64 {
	return t.flashStart
}

// FlashSize is the length of the process's code window.
func (t *RegionTable) FlashSize() uint64 {
	return t.flashSize
}

func (t *RegionTable) markDirty() {
	t.gen++
}

// unusedSlot scans for a disabled non-reserved slot. N is small, a linear
// scan is fine.
func (t *RegionTable) unusedSlot() int {
	for i, r := range t.regions {
		if i == FlashRegionNumber || i == RAMRegionNumber {
			continue
		}
		if !r.Enabled {
			return i
		}
	}
	return -1
}

// Reset disables every slot and clears the breakpoints, returning the table
// to its pre-allocation state. Used when a process is terminated and its RAM
// block reclaimed.
func (t *RegionTable) Reset() {
	*t = RegionTable{solver: t.solver, gen: t.gen + 1}
	for i := range t.regions {
		t.regions[i] = EmptyRegion(i)
	}
}
