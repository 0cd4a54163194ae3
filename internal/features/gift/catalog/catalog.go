package catalog

import (
	"context"
	"errors"
	"fmt"

	"gift-collectibles-backend/internal/features/gift/models"
)

// ErrNotFound is returned when no catalog exists for a gift type.
var ErrNotFound = errors.New("catalog: gift type not found")

// Provider resolves the trait pools of a gift type. Implementations may be
// remote and may fail or return partial data; callers treat both the same
// way (the upgrade is rejected as retryable).
type Provider interface {
	Fetch(ctx context.Context, giftType string) (*models.TraitCatalog, error)
}

// Validate checks that a catalog is usable for an upgrade: all three pools
// must be present and non-empty.
func Validate(c *models.TraitCatalog) error {
	if c == nil {
		return fmt.Errorf("catalog is empty")
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("catalog has no models")
	}
	if len(c.Backdrops) == 0 {
		return fmt.Errorf("catalog has no backdrops")
	}
	if len(c.Patterns) == 0 {
		return fmt.Errorf("catalog has no patterns")
	}
	return nil
}

// StaticProvider serves catalogs from an in-memory map, keyed by gift type.
// Used in tests and as the fallback when no remote catalog is configured.
type StaticProvider struct {
	catalogs map[string]*models.TraitCatalog
}

func NewStaticProvider(catalogs map[string]*models.TraitCatalog) *StaticProvider {
	if catalogs == nil {
		catalogs = make(map[string]*models.TraitCatalog)
	}
	return &StaticProvider{catalogs: catalogs}
}

func (p *StaticProvider) Fetch(ctx context.Context, giftType string) (*models.TraitCatalog, error) {
	c, ok := p.catalogs[giftType]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}
