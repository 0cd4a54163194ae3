package service

import (
	"context"
	"sync"
	"time"

	"gift-collectibles-backend/internal/common/logger"
	"gift-collectibles-backend/internal/features/giveaway/repository"
)

// Scheduler is the background loop that drives giveaways past their end
// time. Each tick discovers expired active giveaways, claims them with a
// single conditional batch update and hands every claimed id to the
// completion service in its own goroutine.
//
// The loop sleeps after a tick finishes rather than running on a wall-clock
// cadence, so ticks never overlap; a slow tick just delays the next one.
// Transient store failures are logged and absorbed: the loop itself never
// stops before Stop is called.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	repo       repository.GiveawayRepository
	completion *CompletionService
	clock      Clock
	interval   time.Duration
	staleAge   time.Duration
}

func NewScheduler(repo repository.GiveawayRepository, completion *CompletionService, clock Clock, interval, staleAge time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:        ctx,
		cancel:     cancel,
		repo:       repo,
		completion: completion,
		clock:      clock,
		interval:   interval,
		staleAge:   staleAge,
	}
}

// Start launches the loop. Call once at process boot.
func (s *Scheduler) Start() {
	logger.Info().Dur("interval", s.interval).Msg("Starting giveaway scheduler")

	s.flagStaleProcessing()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(s.interval)
		defer timer.Stop()

		for {
			select {
			case <-timer.C:
				s.Tick(s.ctx)
				timer.Reset(s.interval)
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the loop and waits for in-flight winner processing.
func (s *Scheduler) Stop() {
	logger.Info().Msg("Stopping giveaway scheduler")
	s.cancel()
	s.wg.Wait()
	logger.Info().Msg("Giveaway scheduler stopped")
}

// Tick runs one sweep: query expired, claim, dispatch. Exported so a manual
// trigger can share the exact claim semantics with the loop.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Now()

	expired, err := s.repo.GetExpired(ctx, now)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to query expired giveaways")
		return
	}
	if len(expired) == 0 {
		return
	}

	claimed, err := s.repo.ClaimExpired(ctx, expired, now)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to claim expired giveaways")
		return
	}

	logger.Info().
		Int("expired", len(expired)).
		Int("claimed", len(claimed)).
		Msg("Claimed expired giveaways")

	for _, id := range claimed {
		s.wg.Add(1)
		go func(giveawayID string) {
			defer s.wg.Done()
			s.completion.Resolve(s.ctx, giveawayID)
		}(id)
	}
}

// flagStaleProcessing reports giveaways that were claimed before a previous
// shutdown and never finished. They are only flagged for manual recovery:
// re-running winner selection blindly could double-award prizes.
func (s *Scheduler) flagStaleProcessing() {
	cutoff := s.clock.Now().Add(-s.staleAge)
	stale, err := s.repo.GetStaleProcessing(s.ctx, cutoff)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to query stale processing giveaways")
		return
	}
	for _, id := range stale {
		logger.Warn().
			Str("giveaway_id", id).
			Msg("Giveaway stuck in processing, manual recovery required")
	}
}
