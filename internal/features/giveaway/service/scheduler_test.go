package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-collectibles-backend/internal/features/giveaway/models"
)

func newSchedulerFixture(t *testing.T) (*memoryRepo, *manualClock, *Scheduler) {
	t.Helper()
	repo := newMemoryRepo()
	clock := newManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	completion := NewCompletionService(repo, newRecordingTransferrer(), &recordingGateway{}, clock, rand.New(rand.NewSource(3)))
	scheduler := NewScheduler(repo, completion, clock, time.Hour, 10*time.Minute)
	return repo, clock, scheduler
}

func seedActive(t *testing.T, repo *memoryRepo, clock *manualClock, id string, endsIn time.Duration) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.Giveaway{
		ID:           id,
		CreatorID:    creatorID,
		ChannelID:    channelID,
		EndsAt:       clock.Now().Add(endsIn),
		WinnerRule:   models.WinnerRuleSingle,
		Status:       models.GiveawayStatusActive,
		MsgID:        42,
		PrizeGiftIDs: []string{"gift-" + id},
	}))
	_, err := repo.AddParticipant(context.Background(), id, 200, clock.Now())
	require.NoError(t, err)
}

func TestTick_ResolvesOnlyExpiredGiveaways(t *testing.T) {
	repo, clock, scheduler := newSchedulerFixture(t)
	seedActive(t, repo, clock, "expired", -time.Minute)
	seedActive(t, repo, clock, "running", time.Hour)

	scheduler.Tick(context.Background())

	require.Eventually(t, func() bool {
		return repo.status("expired") == models.GiveawayStatusFinished
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, models.GiveawayStatusActive, repo.status("running"))

	records, err := repo.GetWinRecords(context.Background(), "expired")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestTick_StoreFailureIsAbsorbed(t *testing.T) {
	repo, clock, scheduler := newSchedulerFixture(t)
	seedActive(t, repo, clock, "expired", -time.Minute)
	repo.failGetExpired = assert.AnError

	scheduler.Tick(context.Background())

	// Nothing claimed; the next healthy tick picks it up.
	assert.Equal(t, models.GiveawayStatusActive, repo.status("expired"))

	repo.mu.Lock()
	repo.failGetExpired = nil
	repo.mu.Unlock()

	scheduler.Tick(context.Background())
	require.Eventually(t, func() bool {
		return repo.status("expired") == models.GiveawayStatusFinished
	}, time.Second, 10*time.Millisecond)
}

func TestTick_ClaimIsExclusive(t *testing.T) {
	repo, clock, scheduler := newSchedulerFixture(t)
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range ids {
		seedActive(t, repo, clock, id, -time.Minute)
	}

	// Two concurrent sweeps over the same expired set, as two replicas (or
	// an overlapping manual trigger) would produce.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scheduler.Tick(context.Background())
		}()
	}
	wg.Wait()

	for _, id := range ids {
		id := id
		require.Eventually(t, func() bool {
			return repo.status(id) == models.GiveawayStatusFinished
		}, time.Second, 10*time.Millisecond)

		records, err := repo.GetWinRecords(context.Background(), id)
		require.NoError(t, err)
		assert.Len(t, records, 1, "giveaway %s must be resolved exactly once", id)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	_, _, scheduler := newSchedulerFixture(t)

	scheduler.Start()

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
