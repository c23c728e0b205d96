package mpu

// NewAppAlloc lays out a fresh process: a read-execute region exactly over
// the flash image and a read-write region over a power-of-two RAM block
// carved from [unallocStart, unallocStart+unallocSize). Subregions of the
// RAM region past the initial app break start out disabled, so the heap can
// later grow in place by enabling more of them.
//
// The RAM block is sized to the next power of two covering the app and
// kernel portions (at least 256 bytes, so subregions stay >= 32 bytes) and
// doubled as long as the enabled subregion run would otherwise reach into
// kernel-owned memory, since the two breaks must not share a subregion.
func NewAppAlloc(solver Solver, unallocStart, unallocSize, minMemorySize, initialAppSize, initialKernelSize, flashStart, flashSize uint64) (*RegionTable, error) {
	flash, ok := ExactRegion(FlashRegionNumber, flashStart, flashSize, PERM_READ_EXEC)
	if !ok {
		return nil, ErrFlash
	}
	// The flash window must not reach into the pool the RAM block is carved
	// from, or the two enabled regions would overlap.
	if flash.Overlaps(unallocStart, unallocSize) {
		return nil, ErrOverlap
	}

	memorySize := max(minMemorySize, initialAppSize+initialKernelSize)
	blockSize := max(NextPowerOfTwo(memorySize), 256)

	var memoryStart, kernelBreak uint64
	var numEnabled int
	for {
		if blockSize > MaxRegionSize {
			return nil, ErrHeap
		}
		memoryStart = Align(unallocStart, blockSize)

		// Enough subregions to cover the initial app heap, and one more so
		// the run is never empty.
		subregionSize := blockSize / 8
		numEnabled = int(initialAppSize*8/blockSize) + 1
		enabledEnd := memoryStart + uint64(numEnabled)*subregionSize
		kernelBreak = memoryStart + blockSize - initialKernelSize

		if enabledEnd <= kernelBreak {
			break
		}
		blockSize *= 2
	}
	if memoryStart+blockSize > unallocStart+unallocSize {
		return nil, ErrHeap
	}

	t := &RegionTable{
		memoryStart:   memoryStart,
		memorySize:    blockSize,
		highWaterMark: memoryStart,
		kernelBreak:   kernelBreak,
		flashStart:    flashStart,
		flashSize:     flashSize,
		solver:        solver,
	}
	for i := range t.regions {
		t.regions[i] = EmptyRegion(i)
	}
	t.regions[FlashRegionNumber] = flash
	t.regions[RAMRegionNumber] = maskedRegion(RAMRegionNumber, memoryStart, blockSize, 0, numEnabled-1, PERM_READ_WRITE)
	t.appBreak = t.regions[RAMRegionNumber].AccessEnd()
	t.markDirty()
	return t, nil
}

// UpdateAppMemory moves the application break. The RAM region keeps its
// physical base and size; only the enabled subregion run changes. The stored
// break is the end of that run, so it may exceed newAppBreak by up to one
// subregion. On error the table is unchanged.
func (t *RegionTable) UpdateAppMemory(newAppBreak uint64) error {
	if newAppBreak > t.kernelBreak {
		return ErrOutOfMemory
	}
	if newAppBreak <= t.memoryStart || newAppBreak < t.highWaterMark {
		return ErrAddressOutOfBounds
	}

	subregionSize := t.regions[RAMRegionNumber].SubregionSize()
	appSize := newAppBreak - t.memoryStart
	numEnabled := int((appSize + subregionSize - 1) / subregionSize)
	enabledEnd := t.memoryStart + uint64(numEnabled)*subregionSize
	if enabledEnd > t.kernelBreak {
		return ErrOutOfMemory
	}

	t.regions[RAMRegionNumber] = maskedRegion(RAMRegionNumber, t.memoryStart, t.memorySize, 0, numEnabled-1, PERM_READ_WRITE)
	t.appBreak = enabledEnd
	t.markDirty()
	return nil
}

// AllocateInGrantRegion carves size bytes of kernel-private storage from the
// top of the process's RAM block, moving the kernel break down. Alignment is
// clamped to at least 2 bytes (the low bit of grant addresses is used as a
// flag) and rounded to a power of two. Returns the address of the new
// allocation.
func (t *RegionTable) AllocateInGrantRegion(size, align uint64) (uint64, error) {
	align = NextPowerOfTwo(max(align, 2))
	newBreak := AlignDown(t.kernelBreak-size, align)
	if newBreak < t.appBreak || newBreak > t.kernelBreak {
		return 0, ErrOutOfMemory
	}
	t.kernelBreak = newBreak
	t.markDirty()
	return newBreak, nil
}

// AllocateIPCRegion grants access to a window outside the process's own
// regions, typically a buffer shared with another process. The descriptor is
// exact when the window is already hardware-legal, otherwise solved; either
// way its physical window must not intersect any enabled slot.
func (t *RegionTable) AllocateIPCRegion(start, size uint64, perms Permissions) (RegionDescriptor, error) {
	slot := t.unusedSlot()
	if slot < 0 {
		return RegionDescriptor{}, ErrNoFreeSlot
	}

	r, ok := ExactRegion(slot, start, size, perms)
	if !ok {
		r, ok = t.solver.Solve(slot, start, size, size, perms)
		if !ok {
			return RegionDescriptor{}, ErrHeap
		}
	}

	for _, other := range t.regions {
		if other.Overlaps(r.PhysStart, r.PhysSize) {
			return RegionDescriptor{}, ErrOverlap
		}
	}

	t.regions[slot] = r
	t.markDirty()
	return r, nil
}

// RemoveIPCRegion disables a previously allocated slot. The flash and RAM
// slots cannot be removed.
func (t *RegionTable) RemoveIPCRegion(slot int) error {
	if slot == FlashRegionNumber || slot == RAMRegionNumber {
		return ErrRegionReserved
	}
	if slot < 0 || slot >= NumRegions || !t.regions[slot].Enabled {
		return ErrRegionNotFound
	}
	t.regions[slot] = EmptyRegion(slot)
	t.markDirty()
	return nil
}

// AddSharedReadWriteBuffer records that the application has shared
// [start, start+size) with the kernel. The range must lie inside the
// accessible RAM window. The high-water mark rises to the buffer's end, so
// a later break retreat can never pull shared memory out from under the
// kernel. A zero-size share is always valid; it revokes without granting.
func (t *RegionTable) AddSharedReadWriteBuffer(start, size uint64) error {
	if size == 0 {
		return nil
	}
	if !t.inAppOwnedMemory(start, size) {
		return ErrAddressOutOfBounds
	}
	t.raiseHighWaterMark(start + size)
	return nil
}

// AddSharedReadOnlyBuffer is AddSharedReadWriteBuffer for read-only shares,
// which are additionally allowed to come from the flash window. Flash shares
// do not move the high-water mark.
func (t *RegionTable) AddSharedReadOnlyBuffer(start, size uint64) error {
	if size == 0 {
		return nil
	}
	if t.inAppOwnedMemory(start, size) {
		t.raiseHighWaterMark(start + size)
		return nil
	}
	if t.inFlashMemory(start, size) {
		return nil
	}
	return ErrAddressOutOfBounds
}

func (t *RegionTable) inAppOwnedMemory(start, size uint64) bool {
	end := start + size
	return end >= start && start >= t.memoryStart && end <= t.appBreak
}

func (t *RegionTable) inFlashMemory(start, size uint64) bool {
	end := start + size
	return end >= start && start >= t.flashStart && end <= t.flashStart+t.flashSize
}

func (t *RegionTable) raiseHighWaterMark(end uint64) {
	if end > t.highWaterMark {
		t.highWaterMark = end
	}
}
