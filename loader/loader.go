// Package loader is the process-loading boundary of the region allocator:
// it turns a process image's memory requirements into an allocated region
// table, carving process RAM blocks out of a shared free pool.
package loader

import (
	"github.com/emkern/mpukit/mpu"
)

// Request describes the memory a process image asks for at load time. Flash
// bounds come from the image layout and are expected to be hardware-aligned
// already; the RAM sizes come from the image header.
type Request struct {
	FlashStart        uint64
	FlashSize         uint64
	MinMemorySize     uint64
	InitialAppSize    uint64
	InitialKernelSize uint64
}

// Pool is the free RAM block processes are placed in, consumed from the
// bottom as processes load.
type Pool struct {
	Start uint64
	Size  uint64
}

func (p Pool) end() uint64 {
	return p.Start + p.Size
}

// Placement is the outcome of loading one process: its region table and the
// RAM block reserved for it.
type Placement struct {
	Table       *mpu.RegionTable
	MemoryStart uint64
	MemorySize  uint64
}

// Place allocates a process from the pool and advances the pool past the
// reserved block. On error the pool is unchanged.
func (p *Pool) Place(solver mpu.Solver, req Request) (Placement, error) {
	table, err := mpu.NewAppAlloc(solver, p.Start, p.Size,
		req.MinMemorySize, req.InitialAppSize, req.InitialKernelSize,
		req.FlashStart, req.FlashSize)
	if err != nil {
		return Placement{}, err
	}
	reservedEnd := table.MemoryStart() + table.MemorySize()
	p.Size = p.end() - reservedEnd
	p.Start = reservedEnd
	return Placement{
		Table:       table,
		MemoryStart: table.MemoryStart(),
		MemorySize:  table.MemorySize(),
	}, nil
}
