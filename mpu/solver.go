package mpu

import "math/bits"

// Solver turns an arbitrary requested window into a hardware-legal region.
// The zero value uses the ARMv7-M constants; both fields exist because the
// fallback floor for zero-based windows varies across MCU families.
type Solver struct {
	// MinRegionSize is the hardware granularity. Defaults to 32.
	MinRegionSize uint64
	// ZeroBaseFloor bounds the region size guessed for windows starting at
	// address zero, where trailing-zero alignment gives no hint. Defaults
	// to 256, the smallest region that supports subregions.
	ZeroBaseFloor uint64
}

func (s Solver) minRegionSize() uint64 {
	if s.MinRegionSize == 0 {
		return MinRegionSize
	}
	return s.MinRegionSize
}

func (s Solver) zeroBaseFloor() uint64 {
	if s.ZeroBaseFloor == 0 {
		return 256
	}
	return s.ZeroBaseFloor
}

// Solve computes the smallest hardware-legal region of at least minSize bytes
// whose accessible window lies inside [unallocStart, unallocStart+unallocSize).
// The accessible window may be larger or start higher than requested, never
// smaller, and never grants anything outside the unallocated block. Returns
// false when no legal region fits.
func (s Solver) Solve(slot int, unallocStart, unallocSize, minSize uint64, perms Permissions) (RegionDescriptor, bool) {
	minRegion := s.minRegionSize()

	// The logical window: start rounded up to the hardware granularity,
	// size at least one granule.
	start := Align(unallocStart, minRegion)
	size := max(minSize, minRegion)

	// A slot can describe the logical window directly only when the size is
	// a power of two dividing the start address. Otherwise try a larger
	// physical window with some subregions disabled, and as a last resort
	// grow the size to a power of two and shift the start up to match.
	physStart := start
	physSize := size
	mask := false
	var minSub, maxSub int
	if !isPowerOfTwo(size) || start%size != 0 {
		// The largest power of two dividing start is the natural subregion
		// size: the physical window is 8 of them, based at the multiple
		// just below start.
		var subregionSize uint64
		if start == 0 {
			ceil := max(NextPowerOfTwo(size), s.zeroBaseFloor())
			subregionSize = ceil / 8
		} else {
			subregionSize = uint64(1) << bits.TrailingZeros64(start)
		}
		underlyingSize := subregionSize * 8
		underlyingStart := start - start%underlyingSize

		// The accessible window must cover whole subregions.
		if size%subregionSize != 0 {
			size += subregionSize - size%subregionSize
		}

		if subregionSize >= minRegion && underlyingStart+underlyingSize >= start+size {
			minSub = int((start - underlyingStart) / subregionSize)
			maxSub = minSub + int(size/subregionSize) - 1
			physStart = underlyingStart
			physSize = underlyingSize
			mask = true
		} else {
			// Subregions cannot cover the window; sacrifice the tight fit.
			size = NextPowerOfTwo(size)
			if start%size != 0 {
				start += size - start%size
			}
			physStart = start
			physSize = size
		}
	}

	if physSize > MaxRegionSize {
		return RegionDescriptor{}, false
	}
	if start+size > unallocStart+unallocSize {
		return RegionDescriptor{}, false
	}

	if mask {
		return maskedRegion(slot, physStart, physSize, minSub, maxSub, perms), true
	}
	return RegionDescriptor{
		Slot:          slot,
		Enabled:       true,
		PhysStart:     physStart,
		PhysSize:      physSize,
		AccessStart:   start,
		AccessSize:    size,
		SubregionMask: 0xFF,
		Perms:         perms,
	}, true
}
