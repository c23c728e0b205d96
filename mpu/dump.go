package mpu

import (
	"fmt"
	"strings"
)

// String renders the table for fault reports: per slot the accessible window
// and permission class, and per subregion whether it grants access.
func (t *RegionTable) String() string {
	var b strings.Builder
	b.WriteString("MPU region table")
	for i, r := range t.regions {
		if !r.Enabled {
			fmt.Fprintf(&b, "\n  Region %d: Unused", i)
			continue
		}
		fmt.Fprintf(&b, "\n  Region %d: [0x%08x:0x%08x], length: %d bytes; %s",
			i, r.AccessStart, r.AccessEnd(), r.AccessSize, r.Perms)
		subregionSize := r.SubregionSize()
		for j := 0; j < 8; j++ {
			state := "Disabled"
			if r.SubregionEnabled(j) {
				state = "Enabled"
			}
			fmt.Fprintf(&b, "\n    Sub-region %d: [0x%08x:0x%08x], %s",
				j, r.PhysStart+uint64(j)*subregionSize, r.PhysStart+uint64(j+1)*subregionSize, state)
		}
	}
	return b.String()
}
