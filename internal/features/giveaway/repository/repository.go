package repository

import (
	"context"
	"errors"
	"time"

	"gift-collectibles-backend/internal/features/giveaway/models"
)

var ErrGiveawayNotFound = errors.New("giveaway not found")

// GiveawayRepository persists giveaways, their prize links and participants.
// It is the single coordination point between request handlers and the
// scheduler: no state about a giveaway lives in process memory between
// calls.
type GiveawayRepository interface {
	Create(ctx context.Context, giveaway *models.Giveaway) error
	GetByID(ctx context.Context, id string) (*models.Giveaway, error)
	GetByCreator(ctx context.Context, creatorID int64) ([]*models.Giveaway, error)
	UpdateSetup(ctx context.Context, id string, update models.GiveawayUpdate) error

	// Delete removes the giveaway with its prize links and participants.
	// Gift ownership is untouched; only pending_setup giveaways are ever
	// deleted.
	Delete(ctx context.Context, id string) error

	// TryPublish atomically moves pending_setup -> active and records the
	// announcement message. False means the giveaway was not in
	// pending_setup.
	TryPublish(ctx context.Context, id string, msgID int64, now time.Time) (bool, error)

	// AddParticipant inserts a participant if absent and reports whether
	// this call was the first join for the account.
	AddParticipant(ctx context.Context, giveawayID string, accountID int64, now time.Time) (bool, error)
	GetParticipants(ctx context.Context, giveawayID string) ([]int64, error)
	GetParticipantsCount(ctx context.Context, giveawayID string) (int64, error)

	// GetPrizeGiftIDs returns the prize gifts ordered by acquisition time,
	// the pairing order used by winner selection.
	GetPrizeGiftIDs(ctx context.Context, giveawayID string) ([]string, error)

	// GetExpired returns ids of active giveaways whose end time has
	// elapsed.
	GetExpired(ctx context.Context, now time.Time) ([]string, error)

	// ClaimExpired is the exactly-once claim: a single batched update that
	// moves the given ids from active to processing and returns only the
	// ids actually claimed. An id raced away by another claimer is simply
	// absent from the result.
	ClaimExpired(ctx context.Context, ids []string, now time.Time) ([]string, error)

	// TryClaim performs a single compare-and-swap status transition.
	TryClaim(ctx context.Context, id string, from, to models.GiveawayStatus, now time.Time) (bool, error)

	// MarkFinished forces processing -> finished. It must succeed even
	// after a failed winner selection so no giveaway stays in processing.
	MarkFinished(ctx context.Context, id string, now time.Time) error

	// TryMarkAnnounced advances last_announce_at if at least minInterval
	// has passed, in one conditional write. The winner of the race gets to
	// republish the announcement.
	TryMarkAnnounced(ctx context.Context, id string, now time.Time, minInterval time.Duration) (bool, error)

	CreateWinRecord(ctx context.Context, record *models.WinRecord) error
	GetWinRecords(ctx context.Context, giveawayID string) ([]*models.WinRecord, error)

	// GetStaleProcessing returns giveaways stuck in processing since
	// before the cutoff; used by the startup sweep to flag them for manual
	// recovery.
	GetStaleProcessing(ctx context.Context, cutoff time.Time) ([]string, error)
}
