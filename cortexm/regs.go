// Package cortexm writes region tables into the ARMv7-M MPU register block
// (Cortex-M0+/M3/M4/M7; Cortex-M4 user guide section 4.5).
package cortexm

import "unsafe"

// BaseAddress is where the MPU register block sits in the system control
// space on every ARMv7-M part.
const BaseAddress uintptr = 0xE000ED90

// Register offsets from the block base.
const (
	RegType       = 0x00 // region count, read-only
	RegCtrl       = 0x04 // global enable/control
	RegNumber     = 0x08 // selects the region addressed by RBAR/RASR
	RegBaseAddr   = 0x0C // base address + region select of the current region
	RegAttributes = 0x10 // size, subregion disable, permissions, enable
)

// TYPE fields.
const (
	TypeDRegionShift = 8
	TypeDRegionMask  = 0xFF
)

// CTRL bits.
const (
	CtrlEnable     = 1 << 0 // enforce the MPU for unprivileged code
	CtrlHFNMIEna   = 1 << 1 // keep enforcing during HardFault/NMI
	CtrlPrivDefEna = 1 << 2 // privileged code falls back to the default map
)

// RBAR fields.
const (
	RBARRegionMask = 0xF       // region index, used when VALID is set
	RBARValid      = 1 << 4    // take the index from this write, not RNR
	RBARAddrMask   = ^uint32(0x1F) // bits [31:5] of the region base
)

// RASR fields.
const (
	RASREnable    = 1 << 0 // region enable
	RASRSizeShift = 1      // 5 bits, region size is 1<<(field+1)
	RASRSRDShift  = 8      // 8 bits, 1 disables the matching subregion
	RASRAPShift   = 24     // 3 bits, access permission
	RASRXN        = 1 << 28 // execute never
)

// AP field values: unprivileged access ranges from none to read-write,
// privileged access is always at least read.
const (
	APNoAccess             = 0b000
	APPrivilegedOnly       = 0b001
	APUnprivilegedReadOnly = 0b010
	APReadWrite            = 0b011
)

// RegisterFile is the device-register access the sync layer writes through.
// Production code uses the memory-mapped block at BaseAddress; tests supply
// a RAM-backed file.
type RegisterFile interface {
	Read32(offset uintptr) uint32
	Write32(offset uintptr, value uint32)
}

type mmio struct {
	base uintptr
}

// MMIO returns a RegisterFile over the memory-mapped block at base.
func MMIO(base uintptr) RegisterFile {
	return mmio{base}
}

func (m mmio) Read32(offset uintptr) uint32 {
	return *(*uint32)(unsafe.Pointer(m.base + offset))
}

func (m mmio) Write32(offset uintptr, value uint32) {
	*(*uint32)(unsafe.Pointer(m.base + offset)) = value
}
