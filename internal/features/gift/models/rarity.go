package models

// RarityTier is a coarse label derived from the combined probability of a
// collectible's three traits. It is reporting-only and never feeds back into
// selection.
type RarityTier string

const (
	RarityCommon    RarityTier = "common"
	RarityUncommon  RarityTier = "uncommon"
	RarityRare      RarityTier = "rare"
	RarityEpic      RarityTier = "epic"
	RarityLegendary RarityTier = "legendary"
	RarityMythic    RarityTier = "mythic"
)

// ClassifyRarity maps the three trait weights (parts per thousand) to a
// tier. The combined probability is the product of the per-trait
// probabilities; tiers are thresholds on its reciprocal, checked rarest
// first. A zero weight cannot appear in valid catalog data and is treated as
// the rarest possible outcome.
func ClassifyRarity(modelWeight, backdropWeight, patternWeight int) RarityTier {
	if modelWeight <= 0 || backdropWeight <= 0 || patternWeight <= 0 {
		return RarityMythic
	}

	p := (float64(modelWeight) / 1000) *
		(float64(backdropWeight) / 1000) *
		(float64(patternWeight) / 1000)
	oneInX := 1 / p

	switch {
	case oneInX > 5_000_000:
		return RarityMythic
	case oneInX > 1_000_000:
		return RarityLegendary
	case oneInX > 200_000:
		return RarityEpic
	case oneInX > 50_000:
		return RarityRare
	case oneInX > 10_000:
		return RarityUncommon
	default:
		return RarityCommon
	}
}
