package catalog

import (
	"context"
	"time"

	"gift-collectibles-backend/internal/common/cache"
	"gift-collectibles-backend/internal/common/logger"
	"gift-collectibles-backend/internal/features/gift/models"
)

const keyPrefixCatalog = "catalog:"

// CachedProvider wraps another provider with a Redis-backed read-through
// cache. Catalogs are immutable per gift type, so a short TTL is only there
// to pick up catalog additions.
type CachedProvider struct {
	inner Provider
	cache *cache.Service
	ttl   time.Duration
}

func NewCachedProvider(inner Provider, cacheSvc *cache.Service, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: cacheSvc,
		ttl:   ttl,
	}
}

func (p *CachedProvider) Fetch(ctx context.Context, giftType string) (*models.TraitCatalog, error) {
	key := keyPrefixCatalog + giftType

	var cached models.TraitCatalog
	err := p.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if err != cache.ErrMiss {
		// A broken cache must not block upgrades; fall through to the
		// origin.
		logger.Warn().Err(err).Str("gift_type", giftType).Msg("Catalog cache read failed")
	}

	c, err := p.inner.Fetch(ctx, giftType)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, c, p.ttl); err != nil {
		logger.Warn().Err(err).Str("gift_type", giftType).Msg("Catalog cache write failed")
	}

	return c, nil
}
