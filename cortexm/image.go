package cortexm

import (
	"github.com/emkern/mpukit/encoding"
	"github.com/emkern/mpukit/mpu"
)

// RegisterImage is the full set of per-slot register words a Commit writes,
// in slot order. Fault reporters serialize it next to the textual dump so
// the exact hardware state a process faulted under can be reconstructed
// off-target.
type RegisterImage struct {
	RBAR [mpu.NumRegions]uint32
	RASR [mpu.NumRegions]uint32
}

// Image computes the register image for a table without touching hardware.
func Image(t *mpu.RegionTable) RegisterImage {
	var im RegisterImage
	for slot := 0; slot < mpu.NumRegions; slot++ {
		r := t.Region(slot)
		im.RBAR[slot] = BaseAddressWord(r)
		im.RASR[slot] = AttributesWord(r)
	}
	return im
}

// MarshalBinary serializes the image as little-endian words.
func (im RegisterImage) MarshalBinary() ([]byte, error) {
	return encoding.Marshal(im)
}

// UnmarshalBinary decodes an image serialized by MarshalBinary.
func (im *RegisterImage) UnmarshalBinary(data []byte) error {
	return encoding.Unmarshal(data, im)
}
