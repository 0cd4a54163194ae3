package service

import (
	"context"

	"gift-collectibles-backend/internal/features/gift/models"
)

// GiftService exposes gift operations to the request layer.
type GiftService interface {
	Create(ctx context.Context, ownerID int64, giftType string) (*models.Gift, error)
	GetByID(ctx context.Context, giftID string) (*models.Gift, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Gift, error)
	GetCollectible(ctx context.Context, giftID string) (*models.CollectibleResponse, error)

	// Upgrade performs the one-time collectible materialization of a plain
	// gift: rolls (or accepts overridden) traits, assigns the next serial
	// number for the gift type and a fixed total-supply figure.
	Upgrade(ctx context.Context, giftID string, overrides *models.UpgradeOverrides) (*models.CollectibleResponse, error)
}
