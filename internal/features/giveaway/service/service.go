package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "gift-collectibles-backend/internal/common/errors"
	"gift-collectibles-backend/internal/common/logger"
	"gift-collectibles-backend/internal/common/validation"
	"gift-collectibles-backend/internal/features/giveaway/models"
	"gift-collectibles-backend/internal/features/giveaway/repository"
)

type giveawayService struct {
	repo           repository.GiveawayRepository
	gateway        MessageGateway
	clock          Clock
	announceMinGap time.Duration
}

// NewGiveawayService builds the lifecycle service. announceMinGap is the
// minimum time between announcement edits triggered by joins.
func NewGiveawayService(repo repository.GiveawayRepository, gateway MessageGateway, clock Clock, announceMinGap time.Duration) GiveawayService {
	return &giveawayService{
		repo:           repo,
		gateway:        gateway,
		clock:          clock,
		announceMinGap: announceMinGap,
	}
}

func (s *giveawayService) Create(ctx context.Context, creatorID int64, input *models.GiveawayCreate) (*models.GiveawayResponse, error) {
	if len(input.PrizeGiftIDs) == 0 {
		return nil, apperrors.NewValidationError("prize_gift_ids", "at least one prize gift is required")
	}

	now := s.clock.Now()
	giveaway := &models.Giveaway{
		ID:           uuid.New().String(),
		CreatorID:    creatorID,
		ChannelID:    input.ChannelID,
		EndsAt:       input.EndsAt,
		WinnerRule:   input.WinnerRule,
		Status:       models.GiveawayStatusPendingSetup,
		CreatedAt:    now,
		UpdatedAt:    now,
		PrizeGiftIDs: input.PrizeGiftIDs,
	}

	if err := s.repo.Create(ctx, giveaway); err != nil {
		return nil, apperrors.NewDatabaseError("create giveaway", err)
	}

	logger.Info().
		Str("giveaway_id", giveaway.ID).
		Int64("creator_id", creatorID).
		Int("prizes", len(input.PrizeGiftIDs)).
		Msg("Giveaway created")

	return s.toResponse(ctx, giveaway), nil
}

func (s *giveawayService) Configure(ctx context.Context, creatorID int64, giveawayID string, update *models.GiveawayUpdate) error {
	giveaway, err := s.getOwned(ctx, creatorID, giveawayID)
	if err != nil {
		return err
	}
	if giveaway.Status != models.GiveawayStatusPendingSetup {
		return apperrors.NewAlreadyPublishedError(giveawayID)
	}

	if update.ChannelID != nil {
		if err := validation.ValidateChannelTarget(*update.ChannelID); err != nil {
			return apperrors.NewValidationError("channel_id", err.Error())
		}
	}
	if update.EndsAt != nil {
		if err := validation.ValidateEndTime(*update.EndsAt, s.clock.Now()); err != nil {
			return apperrors.NewValidationError("ends_at", err.Error())
		}
	}

	if err := s.repo.UpdateSetup(ctx, giveawayID, *update); err != nil {
		if err == repository.ErrGiveawayNotFound {
			return apperrors.NewAlreadyPublishedError(giveawayID)
		}
		return apperrors.NewDatabaseError("update giveaway", err)
	}
	return nil
}

// Publish moves a configured giveaway to active. The public announcement
// must go out first; if it fails the giveaway stays in pending_setup and
// the error is surfaced to the creator.
func (s *giveawayService) Publish(ctx context.Context, creatorID int64, giveawayID string) error {
	giveaway, err := s.getOwned(ctx, creatorID, giveawayID)
	if err != nil {
		return err
	}
	if giveaway.Status != models.GiveawayStatusPendingSetup {
		return apperrors.NewAlreadyPublishedError(giveawayID)
	}
	if err := validation.ValidateChannelTarget(giveaway.ChannelID); err != nil {
		return apperrors.NewValidationError("channel_id", err.Error())
	}
	if err := validation.ValidateEndTime(giveaway.EndsAt, s.clock.Now()); err != nil {
		return apperrors.NewValidationError("ends_at", err.Error())
	}

	prizes, err := s.repo.GetPrizeGiftIDs(ctx, giveawayID)
	if err != nil {
		return apperrors.NewDatabaseError("get prize gifts", err)
	}

	msgID, err := s.gateway.SendMessage(ctx, giveaway.ChannelID, renderAnnouncement(giveaway, len(prizes), 0))
	if err != nil {
		return apperrors.NewTelegramAPIError("publish announcement", err)
	}

	published, err := s.repo.TryPublish(ctx, giveawayID, msgID, s.clock.Now())
	if err != nil {
		return apperrors.NewDatabaseError("publish giveaway", err)
	}
	if !published {
		return apperrors.NewAlreadyPublishedError(giveawayID)
	}

	logger.Info().
		Str("giveaway_id", giveawayID).
		Int64("channel_id", giveaway.ChannelID).
		Int64("msg_id", msgID).
		Msg("Giveaway published")

	return nil
}

// Cancel removes a giveaway that was never published. Prize links go with
// it; gift ownership is untouched.
func (s *giveawayService) Cancel(ctx context.Context, creatorID int64, giveawayID string) error {
	giveaway, err := s.getOwned(ctx, creatorID, giveawayID)
	if err != nil {
		return err
	}
	if giveaway.Status != models.GiveawayStatusPendingSetup {
		return apperrors.New(apperrors.ErrCodeNotCancellable, "Only unpublished giveaways can be cancelled").
			WithDetail("giveaway_id", giveawayID)
	}

	if err := s.repo.Delete(ctx, giveawayID); err != nil {
		if err == repository.ErrGiveawayNotFound {
			return apperrors.NewGiveawayNotFoundError(giveawayID)
		}
		return apperrors.NewDatabaseError("delete giveaway", err)
	}

	logger.Info().Str("giveaway_id", giveawayID).Msg("Giveaway cancelled")
	return nil
}

// Join records a participant. Duplicate joins are no-ops. A first-time join
// triggers the throttled announcement update.
func (s *giveawayService) Join(ctx context.Context, accountID int64, giveawayID string) error {
	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if err == repository.ErrGiveawayNotFound {
		return apperrors.NewGiveawayNotFoundError(giveawayID)
	}
	if err != nil {
		return apperrors.NewDatabaseError("get giveaway", err)
	}

	now := s.clock.Now()
	if giveaway.Status != models.GiveawayStatusActive || !giveaway.EndsAt.After(now) {
		return apperrors.NewNotActiveError(giveawayID)
	}

	added, err := s.repo.AddParticipant(ctx, giveawayID, accountID, now)
	if err != nil {
		return apperrors.NewDatabaseError("add participant", err)
	}
	if !added {
		// Duplicate join, idempotent.
		return nil
	}

	// The announcement refresh must not block the join request.
	go s.refreshAnnouncement(context.WithoutCancel(ctx), giveaway)

	return nil
}

// refreshAnnouncement re-renders the public announcement with the current
// participant count, at most once per announceMinGap per giveaway. The
// throttle is a conditional write on last_announce_at, so it holds across
// processes and restarts.
func (s *giveawayService) refreshAnnouncement(ctx context.Context, giveaway *models.Giveaway) {
	ok, err := s.repo.TryMarkAnnounced(ctx, giveaway.ID, s.clock.Now(), s.announceMinGap)
	if err != nil {
		logger.Error().Err(err).Str("giveaway_id", giveaway.ID).Msg("Announcement throttle check failed")
		return
	}
	if !ok {
		// Throttled; the count will catch up on a later join or the
		// results post.
		return
	}

	count, err := s.repo.GetParticipantsCount(ctx, giveaway.ID)
	if err != nil {
		logger.Error().Err(err).Str("giveaway_id", giveaway.ID).Msg("Failed to count participants")
		return
	}
	prizes, err := s.repo.GetPrizeGiftIDs(ctx, giveaway.ID)
	if err != nil {
		logger.Error().Err(err).Str("giveaway_id", giveaway.ID).Msg("Failed to load prize gifts")
		return
	}

	if err := s.gateway.EditMessageText(ctx, giveaway.ChannelID, giveaway.MsgID,
		renderAnnouncement(giveaway, len(prizes), count)); err != nil {
		logger.Warn().Err(err).Str("giveaway_id", giveaway.ID).Msg("Failed to refresh announcement")
	}
}

func (s *giveawayService) GetByID(ctx context.Context, giveawayID string) (*models.GiveawayResponse, error) {
	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if err == repository.ErrGiveawayNotFound {
		return nil, apperrors.NewGiveawayNotFoundError(giveawayID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get giveaway", err)
	}
	return s.toResponse(ctx, giveaway), nil
}

func (s *giveawayService) GetByCreator(ctx context.Context, creatorID int64) ([]*models.GiveawayResponse, error) {
	giveaways, err := s.repo.GetByCreator(ctx, creatorID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list giveaways", err)
	}
	responses := make([]*models.GiveawayResponse, 0, len(giveaways))
	for _, g := range giveaways {
		responses = append(responses, s.toResponse(ctx, g))
	}
	return responses, nil
}

func (s *giveawayService) GetWinners(ctx context.Context, giveawayID string) ([]*models.WinRecord, error) {
	records, err := s.repo.GetWinRecords(ctx, giveawayID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get win records", err)
	}
	return records, nil
}

func (s *giveawayService) getOwned(ctx context.Context, creatorID int64, giveawayID string) (*models.Giveaway, error) {
	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if err == repository.ErrGiveawayNotFound {
		return nil, apperrors.NewGiveawayNotFoundError(giveawayID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get giveaway", err)
	}
	if giveaway.CreatorID != creatorID {
		return nil, apperrors.New(apperrors.ErrCodeForbidden, "You are not the owner of this giveaway")
	}
	return giveaway, nil
}

func (s *giveawayService) toResponse(ctx context.Context, g *models.Giveaway) *models.GiveawayResponse {
	count, err := s.repo.GetParticipantsCount(ctx, g.ID)
	if err != nil {
		logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Failed to count participants")
	}
	prizes := g.PrizeGiftIDs
	if prizes == nil {
		if prizes, err = s.repo.GetPrizeGiftIDs(ctx, g.ID); err != nil {
			logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Failed to load prize gifts")
		}
	}
	return &models.GiveawayResponse{
		ID:                g.ID,
		CreatorID:         g.CreatorID,
		ChannelID:         g.ChannelID,
		EndsAt:            g.EndsAt,
		WinnerRule:        g.WinnerRule,
		Status:            g.Status,
		ParticipantsCount: count,
		PrizeGiftIDs:      prizes,
		CreatedAt:         g.CreatedAt,
	}
}
