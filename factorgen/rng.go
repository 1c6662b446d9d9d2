// SPDX-License-Identifier: MIT

package factorgen

import "math/rand"

// defaultRNGSeed replaces seed 0 so that the zero value stays reproducible.
const defaultRNGSeed int64 = 1

// rngFromSeed returns a deterministic *rand.Rand; seed 0 maps to defaultRNGSeed.
// Complexity: O(1).
func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rand.New(rand.NewSource(seed))
}

// deriveSeed mixes a parent seed and a stream id with the SplitMix64 finalizer.
// Complexity: O(1).
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// Streams returns n independent deterministic RNGs derived from seed, one
// per worker. math/rand.Rand is not goroutine-safe; give each goroutine its own.
// Complexity: O(n).
func Streams(seed int64, n int) []*rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}
	out := make([]*rand.Rand, n)
	for i := range out {
		out[i] = rand.New(rand.NewSource(deriveSeed(seed, uint64(i))))
	}

	return out
}
