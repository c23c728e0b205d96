package mpu

// RegionDescriptor is one hardware protection region slot. The physical
// window is what the slot's registers describe: a power-of-two size with a
// start aligned to that size. The accessible window is the subset actually
// granted after subregion masking; it never extends past the physical window.
//
// SubregionMask has one bit per eighth of the physical window, set when that
// subregion is enabled. A descriptor without masking carries 0xFF.
type RegionDescriptor struct {
	Slot          int
	Enabled       bool
	PhysStart     uint64
	PhysSize      uint64
	AccessStart   uint64
	AccessSize    uint64
	SubregionMask uint8
	Perms         Permissions
}

// EmptyRegion returns the disabled descriptor for a slot.
func EmptyRegion(slot int) RegionDescriptor {
	return RegionDescriptor{Slot: slot}
}

// ExactRegion builds a descriptor whose physical window equals the requested
// window. The window must already be hardware-legal: a power-of-two size of
// at least MinRegionSize, start a multiple of size.
func ExactRegion(slot int, start, size uint64, perms Permissions) (RegionDescriptor, bool) {
	if !isPowerOfTwo(size) || size < MinRegionSize || size > MaxRegionSize {
		return RegionDescriptor{}, false
	}
	if start%size != 0 {
		return RegionDescriptor{}, false
	}
	return RegionDescriptor{
		Slot:          slot,
		Enabled:       true,
		PhysStart:     start,
		PhysSize:      size,
		AccessStart:   start,
		AccessSize:    size,
		SubregionMask: 0xFF,
		Perms:         perms,
	}, true
}

// maskedRegion builds a descriptor over a physical window with the inclusive
// subregion run [minSub, maxSub] enabled. The accessible window is derived
// from the run, so it always lands on subregion boundaries.
func maskedRegion(slot int, physStart, physSize uint64, minSub, maxSub int, perms Permissions) RegionDescriptor {
	subregionSize := physSize / 8
	return RegionDescriptor{
		Slot:          slot,
		Enabled:       true,
		PhysStart:     physStart,
		PhysSize:      physSize,
		AccessStart:   physStart + uint64(minSub)*subregionSize,
		AccessSize:    uint64(maxSub-minSub+1) * subregionSize,
		SubregionMask: subregionRunMask(minSub, maxSub),
		Perms:         perms,
	}
}

// subregionRunMask sets the bits for the inclusive run [minSub, maxSub].
func subregionRunMask(minSub, maxSub int) uint8 {
	var mask uint8
	for i := minSub; i <= maxSub; i++ {
		mask |= 1 << i
	}
	return mask
}

// AccessEnd is the first address past the accessible window.
func (r RegionDescriptor) AccessEnd() uint64 {
	return r.AccessStart + r.AccessSize
}

// PhysEnd is the first address past the physical window.
func (r RegionDescriptor) PhysEnd() uint64 {
	return r.PhysStart + r.PhysSize
}

// SubregionSize is one eighth of the physical window.
func (r RegionDescriptor) SubregionSize() uint64 {
	return r.PhysSize / 8
}

// SubregionEnabled reports whether subregion i of the physical window grants
// access.
func (r RegionDescriptor) SubregionEnabled(i int) bool {
	return r.SubregionMask&(1<<i) != 0
}

// Overlaps reports whether the descriptor's physical window intersects
// [start, start+size). Disabled descriptors never overlap anything.
func (r RegionDescriptor) Overlaps(start, size uint64) bool {
	if !r.Enabled {
		return false
	}
	return r.PhysStart < start+size && start < r.PhysEnd()
}
