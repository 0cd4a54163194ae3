package repository

import (
	"context"
	"errors"

	"gift-collectibles-backend/internal/features/gift/models"
)

var (
	ErrGiftNotFound        = errors.New("gift not found")
	ErrCollectibleNotFound = errors.New("collectible not found")
)

// Transaction is a unit of work spanning several repository calls.
type Transaction interface {
	Commit() error
	Rollback() error
}

// GiftRepository persists gifts and their collectible materializations.
//
// The Tx variants exist because an upgrade must observe its serial number
// and flip the collectible latch atomically: two concurrent upgrades of the
// same gift type must never see the same serial, and two upgrades of the
// same gift must not both succeed.
type GiftRepository interface {
	BeginTx(ctx context.Context) (Transaction, error)

	Create(ctx context.Context, gift *models.Gift) error
	GetByID(ctx context.Context, id string) (*models.Gift, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Gift, error)

	// MarkCollectibleTx flips the one-way is_collectible latch. It reports
	// false when the gift is already a collectible, without error.
	MarkCollectibleTx(ctx context.Context, tx Transaction, giftID string) (bool, error)

	// NextSerialTx returns the next serial number for a gift type. Serials
	// are monotonically increasing per type and never reused.
	NextSerialTx(ctx context.Context, tx Transaction, giftType string) (int, error)

	CreateCollectibleTx(ctx context.Context, tx Transaction, collectible *models.Collectible) error
	GetCollectible(ctx context.Context, giftID string) (*models.Collectible, error)

	// TransferOwner reassigns a gift and strips its pin/wear state, since
	// it is entering a new owner's collection.
	TransferOwner(ctx context.Context, giftID string, newOwnerID int64) error
}
