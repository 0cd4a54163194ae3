package service

import (
	"context"
	"time"

	"gift-collectibles-backend/internal/features/giveaway/models"
)

// GiveawayService exposes giveaway lifecycle operations to the request
// layer. The scheduler drives expiry on its own; nothing here moves a
// giveaway past active.
type GiveawayService interface {
	Create(ctx context.Context, creatorID int64, input *models.GiveawayCreate) (*models.GiveawayResponse, error)
	Configure(ctx context.Context, creatorID int64, giveawayID string, update *models.GiveawayUpdate) error
	Publish(ctx context.Context, creatorID int64, giveawayID string) error
	Cancel(ctx context.Context, creatorID int64, giveawayID string) error
	Join(ctx context.Context, accountID int64, giveawayID string) error
	GetByID(ctx context.Context, giveawayID string) (*models.GiveawayResponse, error)
	GetByCreator(ctx context.Context, creatorID int64) ([]*models.GiveawayResponse, error)
	GetWinners(ctx context.Context, giveawayID string) ([]*models.WinRecord, error)
}

// MessageGateway is the outbound messaging surface: announcements to the
// giveaway channel, notifications to creators. Failures are logged and never
// roll back state that has already been decided.
type MessageGateway interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int64, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error
}

// GiftTransferrer is the slice of the gift repository winner processing
// needs: ownership reassignment with pin/wear reset.
type GiftTransferrer interface {
	TransferOwner(ctx context.Context, giftID string, newOwnerID int64) error
}

// Clock abstracts wall time so scheduler and throttle logic are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real-time clock.
func SystemClock() Clock { return systemClock{} }
