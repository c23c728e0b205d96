// Package mpu computes hardware protection regions for a fixed-slot memory
// protection unit: power-of-two sized windows, 8-way subregion masking, and
// the per-process region table tracking the application and kernel breaks.
package mpu

// Permissions is the access class of a protection region.
type Permissions int

const (
	PERM_NONE Permissions = 0
	PERM_READ Permissions = 1 << (iota - 1)
	PERM_WRITE
	PERM_EXEC

	PERM_READ_WRITE      = PERM_READ | PERM_WRITE
	PERM_READ_EXEC       = PERM_READ | PERM_EXEC
	PERM_READ_WRITE_EXEC = PERM_READ | PERM_WRITE | PERM_EXEC
)

func (p Permissions) Readable() bool {
	return p&PERM_READ != 0
}

func (p Permissions) Writable() bool {
	return p&PERM_WRITE != 0
}

func (p Permissions) Executable() bool {
	return p&PERM_EXEC != 0
}

func (p Permissions) String() string {
	switch p {
	case PERM_NONE:
		return "no-access"
	case PERM_READ:
		return "read-only"
	case PERM_READ_WRITE:
		return "read-write"
	case PERM_READ_EXEC:
		return "read-execute"
	case PERM_EXEC:
		return "execute-only"
	case PERM_READ_WRITE_EXEC:
		return "read-write-execute"
	}
	return "invalid"
}

// ProcessID identifies the process a region table belongs to. The hardware
// sync layer uses it to skip redundant register writes on context switches.
type ProcessID uint32

const (
	// NumRegions is the number of protection region slots the target MPU
	// family provides.
	NumRegions = 8

	// MinRegionSize is the smallest window the hardware can represent.
	MinRegionSize = 32

	// MaxRegionSize is the largest window the hardware can represent.
	MaxRegionSize = 1 << 32
)
