package service

import (
	"math/rand"

	"gift-collectibles-backend/internal/features/gift/models"
)

// SelectTrait picks one item from a weighted pool, proportionally to item
// weight. Ties in cumulative weight are broken by pool order; the pool does
// not need to be sorted.
//
// A pool whose weights sum to zero degrades to a uniform pick so a
// misconfigured catalog cannot divide by zero. The final item doubles as a
// fallback in case floating rounding leaves the draw unmatched at the
// boundary.
func SelectTrait(rng *rand.Rand, pool []models.TraitItem) *models.TraitItem {
	if len(pool) == 0 {
		return nil
	}

	totalWeight := 0
	for _, item := range pool {
		totalWeight += item.Weight
	}

	if totalWeight <= 0 {
		return &pool[rng.Intn(len(pool))]
	}

	draw := rng.Float64() * float64(totalWeight)
	cumulative := 0.0
	for i := range pool {
		cumulative += float64(pool[i].Weight)
		if cumulative > draw {
			return &pool[i]
		}
	}

	return &pool[len(pool)-1]
}
