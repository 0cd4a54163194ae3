package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "gift-collectibles-backend/internal/common/errors"
	"gift-collectibles-backend/internal/common/logger"
	"gift-collectibles-backend/internal/common/validation"
	"gift-collectibles-backend/internal/features/gift/catalog"
	"gift-collectibles-backend/internal/features/gift/models"
	"gift-collectibles-backend/internal/features/gift/repository"
	"gift-collectibles-backend/internal/utils/random"
)

const (
	// Total-supply figure assigned at upgrade time, purely cosmetic.
	minSupply = 2000
	maxSupply = 10000
)

type giftService struct {
	repo    repository.GiftRepository
	catalog catalog.Provider

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewGiftService builds the upgrade orchestrator. The random source is
// injected so tests can fix the trait rolls.
func NewGiftService(repo repository.GiftRepository, catalogProvider catalog.Provider, rng *rand.Rand) GiftService {
	return &giftService{
		repo:    repo,
		catalog: catalogProvider,
		rng:     rng,
	}
}

func (s *giftService) Create(ctx context.Context, ownerID int64, giftType string) (*models.Gift, error) {
	if err := validation.ValidateGiftType(giftType); err != nil {
		return nil, apperrors.NewValidationError("gift_type", err.Error())
	}

	gift := &models.Gift{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		GiftType:   giftType,
		AcquiredAt: time.Now(),
	}
	if err := s.repo.Create(ctx, gift); err != nil {
		return nil, apperrors.NewDatabaseError("create gift", err)
	}
	return gift, nil
}

func (s *giftService) GetByID(ctx context.Context, giftID string) (*models.Gift, error) {
	gift, err := s.repo.GetByID(ctx, giftID)
	if err == repository.ErrGiftNotFound {
		return nil, apperrors.NewNotFoundError("gift", giftID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get gift", err)
	}
	return gift, nil
}

func (s *giftService) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Gift, error) {
	gifts, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list gifts", err)
	}
	return gifts, nil
}

func (s *giftService) GetCollectible(ctx context.Context, giftID string) (*models.CollectibleResponse, error) {
	c, err := s.repo.GetCollectible(ctx, giftID)
	if err == repository.ErrCollectibleNotFound {
		return nil, apperrors.NewNotFoundError("collectible", giftID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get collectible", err)
	}
	return collectibleResponse(c), nil
}

func (s *giftService) Upgrade(ctx context.Context, giftID string, overrides *models.UpgradeOverrides) (*models.CollectibleResponse, error) {
	gift, err := s.repo.GetByID(ctx, giftID)
	if err == repository.ErrGiftNotFound {
		return nil, apperrors.NewNotUpgradableError(giftID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get gift", err)
	}
	if gift.IsCollectible {
		return nil, apperrors.NewNotUpgradableError(giftID)
	}

	pools, err := s.catalog.Fetch(ctx, gift.GiftType)
	if err != nil {
		return nil, apperrors.NewPartsUnavailableError(gift.GiftType, err)
	}
	if err := catalog.Validate(pools); err != nil {
		return nil, apperrors.NewPartsUnavailableError(gift.GiftType, err)
	}

	model, backdrop, pattern, supply := s.roll(pools, overrides)
	if model == nil || backdrop == nil || pattern == nil {
		return nil, apperrors.NewPartsUnavailableError(gift.GiftType, nil)
	}

	// Latch, serial and collectible row commit together so a concurrent
	// upgrade of the same gift or gift type can never duplicate either.
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("begin upgrade", err)
	}
	defer tx.Rollback()

	latched, err := s.repo.MarkCollectibleTx(ctx, tx, giftID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("mark collectible", err)
	}
	if !latched {
		return nil, apperrors.NewNotUpgradableError(giftID)
	}

	serial, err := s.repo.NextSerialTx(ctx, tx, gift.GiftType)
	if err != nil {
		return nil, apperrors.NewDatabaseError("assign serial", err)
	}

	collectible := &models.Collectible{
		GiftID:       giftID,
		GiftType:     gift.GiftType,
		Model:        *model,
		Backdrop:     *backdrop,
		Pattern:      *pattern,
		SerialNumber: serial,
		Supply:       supply,
		UpgradedAt:   time.Now(),
	}
	if err := s.repo.CreateCollectibleTx(ctx, tx, collectible); err != nil {
		return nil, apperrors.NewDatabaseError("create collectible", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewDatabaseError("commit upgrade", err)
	}

	resp := collectibleResponse(collectible)
	logger.Info().
		Str("gift_id", giftID).
		Str("gift_type", gift.GiftType).
		Int("serial", serial).
		Str("rarity", string(resp.Rarity)).
		Msg("Gift upgraded")

	return resp, nil
}

// roll draws the three traits and the supply under one lock, since
// *rand.Rand is not safe for concurrent use.
func (s *giftService) roll(pools *models.TraitCatalog, overrides *models.UpgradeOverrides) (model, backdrop, pattern *models.TraitItem, supply int) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	if overrides != nil && overrides.Model != nil {
		model = overrides.Model
	} else {
		model = SelectTrait(s.rng, pools.Models)
	}
	if overrides != nil && overrides.Backdrop != nil {
		backdrop = overrides.Backdrop
	} else {
		backdrop = SelectTrait(s.rng, pools.Backdrops)
	}
	if overrides != nil && overrides.Pattern != nil {
		pattern = overrides.Pattern
	} else {
		pattern = SelectTrait(s.rng, pools.Patterns)
	}

	supply = random.IntBetween(s.rng, minSupply, maxSupply)
	return model, backdrop, pattern, supply
}

func collectibleResponse(c *models.Collectible) *models.CollectibleResponse {
	return &models.CollectibleResponse{
		Collectible: *c,
		Rarity:      models.ClassifyRarity(c.Model.Weight, c.Backdrop.Weight, c.Pattern.Weight),
	}
}
