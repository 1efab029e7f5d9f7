// Package randutil builds reproducible random sources for shuffling.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. Tables built
// from the same seed shuffle identical decks.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns seed unchanged, or a time-derived seed when seed is zero.
// The result is meant to be logged so a run can be replayed.
func Seed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return int64(mix(uint64(time.Now().UnixNano())) >> 1)
}

// Derive returns the seed for the n-th independent stream under seed, so
// concurrent tables get distinct but reproducible decks.
func Derive(seed int64, n int) int64 {
	return int64(mix(uint64(seed) + uint64(n+1)*goldenRatio64))
}

// mix is the splitmix64 finalizer.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
