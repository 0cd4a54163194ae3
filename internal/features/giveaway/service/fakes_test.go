package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gift-collectibles-backend/internal/features/giveaway/models"
	"gift-collectibles-backend/internal/features/giveaway/repository"
)

// memoryRepo is an in-memory GiveawayRepository mirroring the conditional
// write semantics of the postgres implementation, so tests exercise the real
// race contracts (claim exactly once, announce throttle, publish CAS).
type memoryRepo struct {
	mu           sync.Mutex
	giveaways    map[string]*models.Giveaway
	participants map[string][]int64
	prizes       map[string][]string
	winRecords   map[string][]*models.WinRecord

	failGetParticipants error
	failGetExpired      error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		giveaways:    make(map[string]*models.Giveaway),
		participants: make(map[string][]int64),
		prizes:       make(map[string][]string),
		winRecords:   make(map[string][]*models.WinRecord),
	}
}

func (r *memoryRepo) Create(ctx context.Context, giveaway *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *giveaway
	r.giveaways[giveaway.ID] = &cp
	r.prizes[giveaway.ID] = append([]string(nil), giveaway.PrizeGiftIDs...)
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *memoryRepo) GetByCreator(ctx context.Context, creatorID int64) ([]*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Giveaway
	for _, g := range r.giveaways {
		if g.CreatorID == creatorID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memoryRepo) UpdateSetup(ctx context.Context, id string, update models.GiveawayUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok || g.Status != models.GiveawayStatusPendingSetup {
		return repository.ErrGiveawayNotFound
	}
	if update.ChannelID != nil {
		g.ChannelID = *update.ChannelID
	}
	if update.EndsAt != nil {
		g.EndsAt = *update.EndsAt
	}
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.giveaways[id]; !ok {
		return repository.ErrGiveawayNotFound
	}
	delete(r.giveaways, id)
	delete(r.participants, id)
	delete(r.prizes, id)
	return nil
}

func (r *memoryRepo) TryPublish(ctx context.Context, id string, msgID int64, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok || g.Status != models.GiveawayStatusPendingSetup {
		return false, nil
	}
	g.Status = models.GiveawayStatusActive
	g.MsgID = msgID
	g.LastAnnounceAt = now
	g.UpdatedAt = now
	return true, nil
}

func (r *memoryRepo) AddParticipant(ctx context.Context, giveawayID string, accountID int64, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants[giveawayID] {
		if existing == accountID {
			return false, nil
		}
	}
	r.participants[giveawayID] = append(r.participants[giveawayID], accountID)
	return true, nil
}

func (r *memoryRepo) GetParticipants(ctx context.Context, giveawayID string) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGetParticipants != nil {
		return nil, r.failGetParticipants
	}
	return append([]int64(nil), r.participants[giveawayID]...), nil
}

func (r *memoryRepo) GetParticipantsCount(ctx context.Context, giveawayID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.participants[giveawayID])), nil
}

func (r *memoryRepo) GetPrizeGiftIDs(ctx context.Context, giveawayID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.prizes[giveawayID]...), nil
}

func (r *memoryRepo) GetExpired(ctx context.Context, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGetExpired != nil {
		return nil, r.failGetExpired
	}
	var ids []string
	for id, g := range r.giveaways {
		if g.Status == models.GiveawayStatusActive && !g.EndsAt.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memoryRepo) ClaimExpired(ctx context.Context, ids []string, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []string
	for _, id := range ids {
		g, ok := r.giveaways[id]
		if !ok || g.Status != models.GiveawayStatusActive {
			continue
		}
		g.Status = models.GiveawayStatusProcessing
		g.UpdatedAt = now
		claimed = append(claimed, id)
	}
	return claimed, nil
}

func (r *memoryRepo) TryClaim(ctx context.Context, id string, from, to models.GiveawayStatus, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok || g.Status != from {
		return false, nil
	}
	g.Status = to
	g.UpdatedAt = now
	return true, nil
}

func (r *memoryRepo) MarkFinished(ctx context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok {
		return repository.ErrGiveawayNotFound
	}
	g.Status = models.GiveawayStatusFinished
	g.UpdatedAt = now
	return nil
}

func (r *memoryRepo) TryMarkAnnounced(ctx context.Context, id string, now time.Time, minInterval time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok {
		return false, nil
	}
	if g.LastAnnounceAt.After(now.Add(-minInterval)) {
		return false, nil
	}
	g.LastAnnounceAt = now
	return true, nil
}

func (r *memoryRepo) CreateWinRecord(ctx context.Context, record *models.WinRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *record
	r.winRecords[record.GiveawayID] = append(r.winRecords[record.GiveawayID], &cp)
	return nil
}

func (r *memoryRepo) GetWinRecords(ctx context.Context, giveawayID string) ([]*models.WinRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.WinRecord(nil), r.winRecords[giveawayID]...), nil
}

func (r *memoryRepo) GetStaleProcessing(ctx context.Context, cutoff time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, g := range r.giveaways {
		if g.Status == models.GiveawayStatusProcessing && g.UpdatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memoryRepo) status(id string) models.GiveawayStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.giveaways[id].Status
}

// recordingGateway captures outbound messages.
type recordingGateway struct {
	mu      sync.Mutex
	nextMsg int64
	sends   []sentMessage
	edits   []editedMessage
	sendErr error
}

type sentMessage struct {
	ChatID int64
	Text   string
}

type editedMessage struct {
	ChatID    int64
	MessageID int64
	Text      string
}

func (g *recordingGateway) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return 0, g.sendErr
	}
	g.nextMsg++
	g.sends = append(g.sends, sentMessage{ChatID: chatID, Text: text})
	return g.nextMsg, nil
}

func (g *recordingGateway) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edits = append(g.edits, editedMessage{ChatID: chatID, MessageID: messageID, Text: text})
	return nil
}

func (g *recordingGateway) sentTo(chatID int64) []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []sentMessage
	for _, m := range g.sends {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (g *recordingGateway) editCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.edits)
}

// recordingTransferrer tracks gift ownership changes.
type recordingTransferrer struct {
	mu     sync.Mutex
	owners map[string]int64
}

func newRecordingTransferrer() *recordingTransferrer {
	return &recordingTransferrer{owners: make(map[string]int64)}
}

func (t *recordingTransferrer) TransferOwner(ctx context.Context, giftID string, newOwnerID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.owners[giftID] = newOwnerID
	return nil
}

func (t *recordingTransferrer) ownerOf(giftID string) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	owner, ok := t.owners[giftID]
	return owner, ok
}

func (t *recordingTransferrer) transferCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.owners)
}

// manualClock is a settable Clock.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(start time.Time) *manualClock {
	return &manualClock{now: start}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
