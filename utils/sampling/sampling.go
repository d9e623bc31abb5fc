// Package sampling implements sampling of bytes, integers and floats, both from
// the system entropy source and deterministically from a keyed PRNG.
package sampling

import (
	"crypto/rand"
	"encoding/binary"
)

// RandUint64 return a random value between 0 and 0xFFFFFFFFFFFFFFFF.
func RandUint64() uint64 {
	b := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(b)
}

// RandFloat64 returns a random float between min and max.
func RandFloat64(min, max float64) float64 {
	b := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	f := float64(binary.LittleEndian.Uint64(b)) / 1.8446744073709552e+19
	return min + f*(max-min)
}

// RandComplex128 returns a random complex with the real and imaginary part between min and max.
func RandComplex128(min, max float64) complex128 {
	return complex(RandFloat64(min, max), RandFloat64(min, max))
}

// Uint64FromPRNG reads a uint64 from the given PRNG.
func Uint64FromPRNG(prng PRNG) uint64 {
	b := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	if _, err := prng.Read(b); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(b)
}

// Float64FromPRNG reads a float in [0, 1) from the given PRNG, with 53 bits of precision.
func Float64FromPRNG(prng PRNG) float64 {
	return float64(Uint64FromPRNG(prng)>>11) / (1 << 53)
}
