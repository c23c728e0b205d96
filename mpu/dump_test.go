package mpu

import (
	"strings"
	"testing"
)

func TestDumpFormat(t *testing.T) {
	table, err := NewAppAlloc(Solver{}, 0x20000000, 0x1000, 0, 100, 200, 0x00040000, 1024)
	if err != nil {
		t.Fatalf("NewAppAlloc: %v", err)
	}

	dump := table.String()
	for _, want := range []string{
		"Region 0: [0x00040000:0x00040400], length: 1024 bytes; read-execute",
		"Region 1: [0x20000000:0x20000080], length: 128 bytes; read-write",
		"Region 2: Unused",
		"Sub-region 0: [0x20000000:0x20000040], Enabled",
		"Sub-region 2: [0x20000080:0x200000c0], Disabled",
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump missing %q:\n%s", want, dump)
		}
	}
}
