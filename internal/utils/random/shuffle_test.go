package random

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffle_IsAPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out := append([]int(nil), in...)

	Shuffle(rng, out)

	assert.ElementsMatch(t, in, out)
}

func TestSample(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool := []int64{10, 20, 30, 40, 50}

	sample := Sample(rng, pool, 3)
	require.Len(t, sample, 3)
	seen := make(map[int64]bool)
	for _, v := range sample {
		assert.Contains(t, pool, v)
		assert.False(t, seen[v], "sample must not repeat elements")
		seen[v] = true
	}

	// k beyond the pool size yields the whole pool.
	all := Sample(rng, pool, 10)
	assert.ElementsMatch(t, pool, all)

	// The input must stay untouched.
	assert.Equal(t, []int64{10, 20, 30, 40, 50}, pool)

	assert.Empty(t, Sample(rng, pool, 0))
}

func TestIntBetween(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		v := IntBetween(rng, 2000, 10000)
		assert.GreaterOrEqual(t, v, 2000)
		assert.LessOrEqual(t, v, 10000)
	}

	assert.Equal(t, 7, IntBetween(rng, 7, 7))
	assert.Equal(t, 7, IntBetween(rng, 7, 3))
}
