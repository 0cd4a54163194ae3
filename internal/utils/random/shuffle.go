package random

import (
	"math/rand"
)

// Shuffle performs a Fisher-Yates shuffle of the slice using the supplied
// source, so callers can make the order deterministic in tests.
func Shuffle[T any](rng *rand.Rand, slice []T) {
	for i := len(slice) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		slice[i], slice[j] = slice[j], slice[i]
	}
}

// Sample returns k distinct elements drawn uniformly without replacement.
// The input slice is not modified. If k exceeds the slice length the whole
// slice is returned in random order.
func Sample[T any](rng *rand.Rand, slice []T, k int) []T {
	if k > len(slice) {
		k = len(slice)
	}
	cp := make([]T, len(slice))
	copy(cp, slice)
	Shuffle(rng, cp)
	return cp[:k]
}

// IntBetween returns a uniform integer in [lo, hi] inclusive.
func IntBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
