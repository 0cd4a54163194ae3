package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"gift-collectibles-backend/internal/common/logger"
	"gift-collectibles-backend/internal/features/giveaway/models"
	"gift-collectibles-backend/internal/features/giveaway/repository"
	"gift-collectibles-backend/internal/utils/random"
)

// CompletionService resolves a claimed giveaway: selects winners, transfers
// prize ownership and publishes results. It is invoked exactly once per
// giveaway, by whoever won the claim.
type CompletionService struct {
	repo    repository.GiveawayRepository
	gifts   GiftTransferrer
	gateway MessageGateway
	clock   Clock

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewCompletionService(repo repository.GiveawayRepository, gifts GiftTransferrer, gateway MessageGateway, clock Clock, rng *rand.Rand) *CompletionService {
	return &CompletionService{
		repo:    repo,
		gifts:   gifts,
		gateway: gateway,
		clock:   clock,
		rng:     rng,
	}
}

// Resolve drives a processing giveaway to finished, no matter what. A
// failure inside winner selection is reported to the creator instead of
// retried: a blind retry could double-award prizes.
func (s *CompletionService) Resolve(ctx context.Context, giveawayID string) {
	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		logger.Error().Err(err).Str("giveaway_id", giveawayID).Msg("Failed to load claimed giveaway")
		s.finish(ctx, giveawayID)
		return
	}

	records, participants, err := s.selectAndAward(ctx, giveaway)
	if err != nil {
		logger.Error().Err(err).Str("giveaway_id", giveawayID).Msg("Winner selection failed")
		s.notifyCreator(ctx, giveaway, renderProcessingFailure(giveaway))
		s.finish(ctx, giveawayID)
		return
	}

	// Ownership is already committed; publication failures must not undo
	// or block anything past this point.
	if len(participants) == 0 {
		s.notifyCreator(ctx, giveaway, renderNoParticipants(giveaway))
	}
	s.publishResults(ctx, giveaway, records, int64(len(participants)))
	s.finish(ctx, giveawayID)

	logger.Info().
		Str("giveaway_id", giveawayID).
		Int("participants", len(participants)).
		Int("awarded", len(records)).
		Msg("Giveaway resolved")
}

// selectAndAward picks winners per the giveaway's rule and reassigns the
// prize gifts. Gifts are paired in acquisition order against winners in
// sampled order.
func (s *CompletionService) selectAndAward(ctx context.Context, giveaway *models.Giveaway) ([]*models.WinRecord, []int64, error) {
	participants, err := s.repo.GetParticipants(ctx, giveaway.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load participants: %w", err)
	}
	giftIDs, err := s.repo.GetPrizeGiftIDs(ctx, giveaway.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load prize gifts: %w", err)
	}

	if len(participants) == 0 {
		return nil, nil, nil
	}

	var winners []int64
	switch giveaway.WinnerRule {
	case models.WinnerRuleSingle:
		// One winner takes every gift.
		winner := s.pickOne(participants)
		winners = make([]int64, len(giftIDs))
		for i := range winners {
			winners[i] = winner
		}
	case models.WinnerRuleMultiple:
		// One gift each for min(#gifts, #participants) distinct winners;
		// leftover gifts stay with their current holder.
		winners = s.sample(participants, len(giftIDs))
	default:
		return nil, nil, fmt.Errorf("unknown winner rule: %s", giveaway.WinnerRule)
	}

	records := make([]*models.WinRecord, 0, len(winners))
	for i, accountID := range winners {
		giftID := giftIDs[i]
		if err := s.gifts.TransferOwner(ctx, giftID, accountID); err != nil {
			return records, participants, fmt.Errorf("failed to transfer gift %s: %w", giftID, err)
		}

		record := &models.WinRecord{
			GiveawayID: giveaway.ID,
			AccountID:  accountID,
			GiftID:     giftID,
			Place:      i + 1,
			AwardedAt:  s.clock.Now(),
		}
		if err := s.repo.CreateWinRecord(ctx, record); err != nil {
			// The transfer stands; a lost record only degrades reporting.
			logger.Error().Err(err).Str("giveaway_id", giveaway.ID).Str("gift_id", giftID).Msg("Failed to store win record")
		}
		records = append(records, record)
	}

	return records, participants, nil
}

func (s *CompletionService) pickOne(participants []int64) int64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return participants[s.rng.Intn(len(participants))]
}

func (s *CompletionService) sample(participants []int64, k int) []int64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return random.Sample(s.rng, participants, k)
}

func (s *CompletionService) publishResults(ctx context.Context, giveaway *models.Giveaway, records []*models.WinRecord, participantCount int64) {
	if giveaway.ChannelID == 0 || giveaway.MsgID == 0 {
		return
	}
	text := renderResults(giveaway, records, participantCount)
	if err := s.gateway.EditMessageText(ctx, giveaway.ChannelID, giveaway.MsgID, text); err != nil {
		logger.Warn().Err(err).Str("giveaway_id", giveaway.ID).Msg("Failed to publish results")
	}
}

func (s *CompletionService) notifyCreator(ctx context.Context, giveaway *models.Giveaway, text string) {
	if _, err := s.gateway.SendMessage(ctx, giveaway.CreatorID, text); err != nil {
		logger.Warn().Err(err).Str("giveaway_id", giveaway.ID).Int64("creator_id", giveaway.CreatorID).Msg("Failed to notify creator")
	}
}

// finish is the unconditional processing -> finished transition. Logged but
// otherwise unguarded: a giveaway must never stay in processing.
func (s *CompletionService) finish(ctx context.Context, giveawayID string) {
	if err := s.repo.MarkFinished(ctx, giveawayID, s.clock.Now()); err != nil {
		logger.Error().Err(err).Str("giveaway_id", giveawayID).Msg("Failed to mark giveaway finished")
	}
}
