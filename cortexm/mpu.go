package cortexm

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/emkern/mpukit/mpu"
)

// MPU owns the one physical register block per core. It remembers which
// process's table it last committed so a context switch back to the same
// unchanged process costs a comparison and no register writes.
type MPU struct {
	regs        RegisterFile
	regionCount int

	resident    bool
	residentPID mpu.ProcessID
	residentGen uint64
}

// New probes the hardware. An MPU reporting zero data regions is a board
// configuration error and cannot be used.
func New(regs RegisterFile) (*MPU, error) {
	count := int(regs.Read32(RegType)>>TypeDRegionShift) & TypeDRegionMask
	if count == 0 {
		return nil, errors.Errorf("cortexm: MPU reports no protection regions (TYPE %#08x)", regs.Read32(RegType))
	}
	if count < mpu.NumRegions {
		return nil, errors.Errorf("cortexm: MPU has %d regions, need %d", count, mpu.NumRegions)
	}
	return &MPU{regs: regs, regionCount: count}, nil
}

// RegionCount is the number of regions the hardware reported at probe time.
func (m *MPU) RegionCount() int {
	return m.regionCount
}

// Enable turns on enforcement for unprivileged code. Privileged code keeps
// the default memory map, and enforcement pauses inside HardFault/NMI.
func (m *MPU) Enable() {
	m.regs.Write32(RegCtrl, CtrlEnable|CtrlPrivDefEna)
}

// Disable suspends enforcement entirely.
func (m *MPU) Disable() {
	m.regs.Write32(RegCtrl, 0)
}

// Commit writes the process's region table to hardware. Every slot is
// written, disabled ones included, so nothing from the previous process
// survives the switch. A repeat commit for the same process and generation
// is a no-op.
func (m *MPU) Commit(t *mpu.RegionTable, pid mpu.ProcessID) {
	if m.resident && m.residentPID == pid && m.residentGen == t.Generation() {
		return
	}
	for slot := 0; slot < mpu.NumRegions; slot++ {
		r := t.Region(slot)
		m.regs.Write32(RegBaseAddr, BaseAddressWord(r))
		m.regs.Write32(RegAttributes, AttributesWord(r))
	}
	m.resident = true
	m.residentPID = pid
	m.residentGen = t.Generation()
}

// Invalidate forgets the resident table, forcing the next Commit to rewrite
// hardware regardless of process and generation.
func (m *MPU) Invalidate() {
	m.resident = false
}

// BaseAddressWord encodes a descriptor's RBAR value: base address bits
// [31:5], the VALID flag, and the slot index.
func BaseAddressWord(r mpu.RegionDescriptor) uint32 {
	return uint32(r.PhysStart)&RBARAddrMask | RBARValid | uint32(r.Slot)&RBARRegionMask
}

// AttributesWord encodes a descriptor's RASR value. The hardware SRD field
// disables subregions, so it is the complement of the descriptor's enable
// mask. A disabled descriptor encodes as zero, clearing ENABLE.
func AttributesWord(r mpu.RegionDescriptor) uint32 {
	if !r.Enabled {
		return 0
	}
	sizeField := uint32(bits.Len64(r.PhysSize)) - 2 // size is 1<<(field+1)
	word := uint32(RASREnable) | sizeField<<RASRSizeShift
	word |= uint32(^r.SubregionMask) << RASRSRDShift
	ap, xn := accessBits(r.Perms)
	word |= ap << RASRAPShift
	if xn {
		word |= RASRXN
	}
	return word
}

func accessBits(p mpu.Permissions) (ap uint32, xn bool) {
	xn = !p.Executable()
	switch {
	case p.Writable():
		ap = APReadWrite
	case p.Readable():
		ap = APUnprivilegedReadOnly
	case p.Executable():
		ap = APPrivilegedOnly
	default:
		ap = APNoAccess
	}
	return ap, xn
}
