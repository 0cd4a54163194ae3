package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gift-collectibles-backend/internal/common/errors"
	"gift-collectibles-backend/internal/features/giveaway/models"
)

const (
	creatorID = int64(100)
	channelID = int64(-1001234)
)

func newLifecycleFixture(t *testing.T) (*memoryRepo, *recordingGateway, *manualClock, GiveawayService) {
	t.Helper()
	repo := newMemoryRepo()
	gateway := &recordingGateway{}
	clock := newManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := NewGiveawayService(repo, gateway, clock, 30*time.Second)
	return repo, gateway, clock, svc
}

func createDraft(t *testing.T, svc GiveawayService, clock *manualClock, prizes []string) *models.GiveawayResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), creatorID, &models.GiveawayCreate{
		PrizeGiftIDs: prizes,
		WinnerRule:   models.WinnerRuleMultiple,
		ChannelID:    channelID,
		EndsAt:       clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, models.GiveawayStatusPendingSetup, resp.Status)
	return resp
}

func TestCreate_RequiresPrizes(t *testing.T) {
	_, _, _, svc := newLifecycleFixture(t)

	_, err := svc.Create(context.Background(), creatorID, &models.GiveawayCreate{
		WinnerRule: models.WinnerRuleSingle,
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestPublish_ActivatesAndAnnounces(t *testing.T) {
	repo, gateway, clock, svc := newLifecycleFixture(t)
	draft := createDraft(t, svc, clock, []string{"g1", "g2"})

	require.NoError(t, svc.Publish(context.Background(), creatorID, draft.ID))

	assert.Equal(t, models.GiveawayStatusActive, repo.status(draft.ID))
	sends := gateway.sentTo(channelID)
	require.Len(t, sends, 1)

	stored, err := repo.GetByID(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.NotZero(t, stored.MsgID)
}

func TestPublish_GatewayFailureLeavesDraft(t *testing.T) {
	repo, gateway, clock, svc := newLifecycleFixture(t)
	gateway.sendErr = assert.AnError
	draft := createDraft(t, svc, clock, []string{"g1"})

	err := svc.Publish(context.Background(), creatorID, draft.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeTelegramAPI, appErr.Code)

	// Still a draft: publish can be retried.
	assert.Equal(t, models.GiveawayStatusPendingSetup, repo.status(draft.ID))
}

func TestPublish_TwiceFails(t *testing.T) {
	_, _, clock, svc := newLifecycleFixture(t)
	draft := createDraft(t, svc, clock, []string{"g1"})

	require.NoError(t, svc.Publish(context.Background(), creatorID, draft.ID))

	err := svc.Publish(context.Background(), creatorID, draft.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAlreadyPublished, appErr.Code)
}

func TestPublish_NotOwner(t *testing.T) {
	_, _, clock, svc := newLifecycleFixture(t)
	draft := createDraft(t, svc, clock, []string{"g1"})

	err := svc.Publish(context.Background(), creatorID+1, draft.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeForbidden, appErr.Code)
}

func TestConfigure_RejectedAfterPublish(t *testing.T) {
	_, _, clock, svc := newLifecycleFixture(t)
	draft := createDraft(t, svc, clock, []string{"g1"})
	require.NoError(t, svc.Publish(context.Background(), creatorID, draft.ID))

	newEnd := clock.Now().Add(2 * time.Hour)
	err := svc.Configure(context.Background(), creatorID, draft.ID, &models.GiveawayUpdate{EndsAt: &newEnd})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAlreadyPublished, appErr.Code)
}

func TestCancel_OnlyBeforePublish(t *testing.T) {
	repo, _, clock, svc := newLifecycleFixture(t)

	draft := createDraft(t, svc, clock, []string{"g1"})
	require.NoError(t, svc.Cancel(context.Background(), creatorID, draft.ID))
	_, err := repo.GetByID(context.Background(), draft.ID)
	assert.Error(t, err)

	published := createDraft(t, svc, clock, []string{"g2"})
	require.NoError(t, svc.Publish(context.Background(), creatorID, published.ID))

	err = svc.Cancel(context.Background(), creatorID, published.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotCancellable, appErr.Code)
}

func TestJoin_RequiresActiveGiveaway(t *testing.T) {
	_, _, clock, svc := newLifecycleFixture(t)
	draft := createDraft(t, svc, clock, []string{"g1"})

	// Not yet published.
	err := svc.Join(context.Background(), 200, draft.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotActive, appErr.Code)

	require.NoError(t, svc.Publish(context.Background(), creatorID, draft.ID))

	// Past the end time the giveaway no longer accepts joins, even before
	// the scheduler picks it up.
	clock.Advance(2 * time.Hour)
	err = svc.Join(context.Background(), 200, draft.ID)
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotActive, appErr.Code)
}

func TestJoin_IsIdempotent(t *testing.T) {
	repo, _, clock, svc := newLifecycleFixture(t)
	draft := createDraft(t, svc, clock, []string{"g1"})
	require.NoError(t, svc.Publish(context.Background(), creatorID, draft.ID))

	require.NoError(t, svc.Join(context.Background(), 200, draft.ID))
	require.NoError(t, svc.Join(context.Background(), 200, draft.ID))

	count, err := repo.GetParticipantsCount(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestJoin_AnnouncementThrottle(t *testing.T) {
	gap := 30 * time.Second
	_, gateway, clock, svc := newLifecycleFixture(t)
	draft := createDraft(t, svc, clock, []string{"g1"})
	require.NoError(t, svc.Publish(context.Background(), creatorID, draft.ID))

	// Publication stamps last_announce_at, so the first join inside the gap
	// does not edit the announcement.
	clock.Advance(5 * time.Second)
	require.NoError(t, svc.Join(context.Background(), 200, draft.ID))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, gateway.editCount())

	// Once the gap has passed, the next first-time join republishes.
	clock.Advance(gap)
	require.NoError(t, svc.Join(context.Background(), 201, draft.ID))
	require.Eventually(t, func() bool {
		return gateway.editCount() == 1
	}, time.Second, 10*time.Millisecond)

	// A join right after is throttled again.
	clock.Advance(5 * time.Second)
	require.NoError(t, svc.Join(context.Background(), 202, draft.ID))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, gateway.editCount())

	clock.Advance(gap)
	require.NoError(t, svc.Join(context.Background(), 203, draft.ID))
	require.Eventually(t, func() bool {
		return gateway.editCount() == 2
	}, time.Second, 10*time.Millisecond)
}
