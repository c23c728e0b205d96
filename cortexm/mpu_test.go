package cortexm

import (
	"testing"

	"github.com/emkern/mpukit/mpu"
)

// fakeRegs is a RAM-backed register file that counts writes, standing in for
// the memory-mapped block.
type fakeRegs struct {
	words  map[uintptr]uint32
	writes int
}

func newFakeRegs(regionCount uint32) *fakeRegs {
	return &fakeRegs{words: map[uintptr]uint32{RegType: regionCount << TypeDRegionShift}}
}

func (f *fakeRegs) Read32(offset uintptr) uint32 {
	return f.words[offset]
}

func (f *fakeRegs) Write32(offset uintptr, value uint32) {
	f.words[offset] = value
	f.writes++
}

func newTestTable(t *testing.T) *mpu.RegionTable {
	t.Helper()
	table, err := mpu.NewAppAlloc(mpu.Solver{}, 0x20000000, 0x1000, 0, 100, 200, 0x00040000, 1024)
	if err != nil {
		t.Fatalf("NewAppAlloc: %v", err)
	}
	return table
}

func TestNewProbesRegionCount(t *testing.T) {
	m, err := New(newFakeRegs(8))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.RegionCount() != 8 {
		t.Errorf("region count %d, want 8", m.RegionCount())
	}

	if _, err := New(newFakeRegs(0)); err == nil {
		t.Error("an MPU reporting zero regions must be rejected")
	}
	if _, err := New(newFakeRegs(4)); err == nil {
		t.Error("an MPU with fewer slots than the table must be rejected")
	}
}

func TestEnableDisable(t *testing.T) {
	regs := newFakeRegs(8)
	m, err := New(regs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m.Enable()
	if got := regs.words[RegCtrl]; got != CtrlEnable|CtrlPrivDefEna {
		t.Errorf("CTRL %#x, want ENABLE|PRIVDEFENA", got)
	}
	m.Disable()
	if got := regs.words[RegCtrl]; got != 0 {
		t.Errorf("CTRL %#x after disable, want 0", got)
	}
}

func TestCommitIdempotent(t *testing.T) {
	regs := newFakeRegs(8)
	m, err := New(regs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	table := newTestTable(t)

	m.Commit(table, 1)
	// Every slot is written: RBAR and RASR for each of the 8 regions.
	if regs.writes != 2*mpu.NumRegions {
		t.Fatalf("first commit made %d writes, want %d", regs.writes, 2*mpu.NumRegions)
	}

	m.Commit(table, 1)
	if regs.writes != 2*mpu.NumRegions {
		t.Errorf("repeat commit made %d extra writes, want 0", regs.writes-2*mpu.NumRegions)
	}
}

func TestCommitAfterMutation(t *testing.T) {
	regs := newFakeRegs(8)
	m, err := New(regs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	table := newTestTable(t)

	m.Commit(table, 1)
	if err := table.UpdateAppMemory(0x20000000 + 256); err != nil {
		t.Fatalf("grow: %v", err)
	}
	before := regs.writes
	m.Commit(table, 1)
	if regs.writes != before+2*mpu.NumRegions {
		t.Error("commit after mutation must rewrite every slot")
	}
}

func TestCommitSwitchesProcess(t *testing.T) {
	regs := newFakeRegs(8)
	m, err := New(regs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a := newTestTable(t)
	b := newTestTable(t)

	m.Commit(a, 1)
	before := regs.writes
	m.Commit(b, 2)
	if regs.writes == before {
		t.Error("switching processes must rewrite hardware")
	}

	before = regs.writes
	m.Invalidate()
	m.Commit(b, 2)
	if regs.writes == before {
		t.Error("commit after Invalidate must rewrite hardware")
	}
}

func TestRegisterEncoding(t *testing.T) {
	table := newTestTable(t)

	// Flash: 1 KiB read-execute at 0x00040000 in slot 0.
	if got := BaseAddressWord(table.Region(0)); got != 0x00040000|RBARValid|0 {
		t.Errorf("flash RBAR %#08x", got)
	}
	if got := AttributesWord(table.Region(0)); got != 0x02000013 {
		t.Errorf("flash RASR %#08x, want 0x02000013", got)
	}

	// RAM: 512-byte read-write block at 0x20000000 in slot 1, two of eight
	// subregions enabled (SRD disables the rest), execute never.
	if got := BaseAddressWord(table.Region(1)); got != 0x20000000|RBARValid|1 {
		t.Errorf("RAM RBAR %#08x", got)
	}
	if got := AttributesWord(table.Region(1)); got != 0x1300FC11 {
		t.Errorf("RAM RASR %#08x, want 0x1300FC11", got)
	}

	// Disabled slot: index still encoded, attributes fully cleared.
	if got := BaseAddressWord(table.Region(2)); got != RBARValid|2 {
		t.Errorf("empty RBAR %#08x", got)
	}
	if got := AttributesWord(table.Region(2)); got != 0 {
		t.Errorf("empty RASR %#08x, want 0", got)
	}
}

func TestRegisterImageRoundTrip(t *testing.T) {
	table := newTestTable(t)
	im := Image(table)

	if im.RBAR[1] != 0x20000011 || im.RASR[1] != 0x1300FC11 {
		t.Errorf("image slot 1: RBAR %#08x RASR %#08x", im.RBAR[1], im.RASR[1])
	}

	data, err := im.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(data) != 2*mpu.NumRegions*4 {
		t.Fatalf("image is %d bytes, want %d", len(data), 2*mpu.NumRegions*4)
	}
	var back RegisterImage
	if err := back.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != im {
		t.Errorf("round trip mismatch: %+v vs %+v", back, im)
	}
}
