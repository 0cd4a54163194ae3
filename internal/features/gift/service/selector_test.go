package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-collectibles-backend/internal/features/gift/models"
)

func TestSelectTrait_EmptyPool(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Nil(t, SelectTrait(rng, nil))
	assert.Nil(t, SelectTrait(rng, []models.TraitItem{}))
}

func TestSelectTrait_SingleItem(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool := []models.TraitItem{{Name: "only", Weight: 7}}

	for i := 0; i < 100; i++ {
		item := SelectTrait(rng, pool)
		require.NotNil(t, item)
		assert.Equal(t, "only", item.Name)
	}
}

func TestSelectTrait_ZeroTotalWeightFallsBackToUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := []models.TraitItem{
		{Name: "a", Weight: 0},
		{Name: "b", Weight: 0},
		{Name: "c", Weight: 0},
	}

	seen := make(map[string]int)
	for i := 0; i < 3000; i++ {
		item := SelectTrait(rng, pool)
		require.NotNil(t, item)
		seen[item.Name]++
	}

	// Uniform fallback: every item shows up, roughly a third each.
	for _, name := range []string{"a", "b", "c"} {
		assert.Greater(t, seen[name], 800, "item %s under-selected: %d", name, seen[name])
	}
}

func TestSelectTrait_WeightedDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := []models.TraitItem{
		{Name: "rare-a", Weight: 1},
		{Name: "rare-b", Weight: 1},
		{Name: "common", Weight: 8},
	}

	const samples = 50000
	seen := make(map[string]int)
	for i := 0; i < samples; i++ {
		item := SelectTrait(rng, pool)
		require.NotNil(t, item)
		seen[item.Name]++
	}

	// Expected ratio 1:1:8 within 20% tolerance at this sample size.
	assert.InDelta(t, samples/10, seen["rare-a"], samples/50)
	assert.InDelta(t, samples/10, seen["rare-b"], samples/50)
	assert.InDelta(t, samples*8/10, seen["common"], samples/50)
}

func TestSelectTrait_UnsortedPool(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pool := []models.TraitItem{
		{Name: "heavy", Weight: 900},
		{Name: "light", Weight: 100},
	}

	heavy := 0
	for i := 0; i < 10000; i++ {
		if SelectTrait(rng, pool).Name == "heavy" {
			heavy++
		}
	}
	assert.Greater(t, heavy, 8500)
	assert.Less(t, heavy, 9500)
}
