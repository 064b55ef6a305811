// Package hash implements the fast modular hash used to derive reproducible random streams.
package hash

import "math"

// Hash mixes n with salt s and maps the result into [0, max).
func Hash(n uint32, s uint32, max uint32) uint32 {
	// mixing stage, mix input with salt using subtraction
	var m = uint32(n) - uint32(s)

	// hashing stage, use xor shift with prime coefficients
	m ^= m << 2
	m ^= m << 3
	m ^= m >> 5
	m ^= m >> 7
	m ^= m << 11
	m ^= m << 13
	m ^= m >> 17
	m ^= m << 19

	// mixing stage 2, mix input with salt using addition
	m += s

	// multiply shift range reduction by Daniel Lemire instead of modulo
	// https://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
	return uint32((uint64(m) * uint64(max)) >> 32)
}

// Seed folds a base seed and a path of coordinates (epoch, sample index, ...) into a new 64-bit seed.
// Equal inputs always give equal seeds.
func Seed(base uint64, path ...uint32) uint64 {
	hi, lo := uint32(base>>32), uint32(base)
	for i, p := range path {
		hi = Hash(p^hi, lo+uint32(i), math.MaxUint32)
		lo = Hash(p+lo, hi^uint32(i), math.MaxUint32)
	}
	return uint64(hi)<<32 | uint64(lo)
}
