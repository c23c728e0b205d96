package mpu

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Align rounds a up to the next multiple of b. b must be a power of two.
func Align[I constraints.Integer](a, b I) I {
	return (a + b - 1) &^ (b - 1)
}

// AlignDown rounds a down to a multiple of b. b must be a power of two.
func AlignDown[I constraints.Integer](a, b I) I {
	return a &^ (b - 1)
}

// NextPowerOfTwo returns the smallest power of two >= v.
func NextPowerOfTwo(v uint64) uint64 {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len64(v-1)
}

func isPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}
