package models

import (
	"time"
)

// GiveawayStatus represents the lifecycle phase of a giveaway.
type GiveawayStatus string

const (
	// Creator is still configuring channel and end time.
	GiveawayStatusPendingSetup GiveawayStatus = "pending_setup"
	// Published and accepting participants.
	GiveawayStatusActive GiveawayStatus = "active"
	// Claimed by the scheduler, winner selection in flight.
	GiveawayStatusProcessing GiveawayStatus = "processing"
	// Terminal.
	GiveawayStatusFinished GiveawayStatus = "finished"
)

// WinnerRule determines how prize gifts map to participants at expiry.
type WinnerRule string

const (
	// One participant takes every prize gift.
	WinnerRuleSingle WinnerRule = "single"
	// min(#gifts, #participants) distinct participants take one gift each.
	WinnerRuleMultiple WinnerRule = "multiple"
)

// ValidTransition reports whether a status change is allowed by the
// lifecycle. Cancellation is row removal, not a status, so it does not
// appear here.
func ValidTransition(from, to GiveawayStatus) bool {
	switch from {
	case GiveawayStatusPendingSetup:
		return to == GiveawayStatusActive
	case GiveawayStatusActive:
		return to == GiveawayStatusProcessing
	case GiveawayStatusProcessing:
		return to == GiveawayStatusFinished
	default:
		return false
	}
}

// Giveaway is a time-bounded pooling of prize gifts distributed to
// participants at expiry.
type Giveaway struct {
	ID             string         `json:"id"`
	CreatorID      int64          `json:"creator_id"`
	ChannelID      int64          `json:"channel_id"`
	EndsAt         time.Time      `json:"ends_at"`
	WinnerRule     WinnerRule     `json:"winner_rule"`
	Status         GiveawayStatus `json:"status"`
	MsgID          int64          `json:"msg_id"`
	LastAnnounceAt time.Time      `json:"last_announce_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	PrizeGiftIDs   []string       `json:"prize_gift_ids,omitempty"`
}

// Participant is one joined account, unique per (giveaway, account).
type Participant struct {
	GiveawayID string    `json:"giveaway_id"`
	AccountID  int64     `json:"account_id"`
	JoinedAt   time.Time `json:"joined_at"`
}

// WinRecord stores one awarded gift so the reporting layer can serve
// results without replaying the draw.
type WinRecord struct {
	GiveawayID string    `json:"giveaway_id"`
	AccountID  int64     `json:"account_id"`
	GiftID     string    `json:"gift_id"`
	Place      int       `json:"place"`
	AwardedAt  time.Time `json:"awarded_at"`
}

// GiveawayCreate is the request payload for creating a giveaway.
type GiveawayCreate struct {
	PrizeGiftIDs []string   `json:"prize_gift_ids" binding:"required,min=1"`
	WinnerRule   WinnerRule `json:"winner_rule" binding:"required,oneof=single multiple"`
	ChannelID    int64      `json:"channel_id"`
	EndsAt       time.Time  `json:"ends_at"`
}

// GiveawayUpdate carries the publish-time configuration; both fields must
// be set before a giveaway can go active.
type GiveawayUpdate struct {
	ChannelID *int64     `json:"channel_id,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
}

// GiveawayResponse is the delivery-layer view of a giveaway.
type GiveawayResponse struct {
	ID                string         `json:"id"`
	CreatorID         int64          `json:"creator_id"`
	ChannelID         int64          `json:"channel_id"`
	EndsAt            time.Time      `json:"ends_at"`
	WinnerRule        WinnerRule     `json:"winner_rule"`
	Status            GiveawayStatus `json:"status"`
	ParticipantsCount int64          `json:"participants_count"`
	PrizeGiftIDs      []string       `json:"prize_gift_ids"`
	CreatedAt         time.Time      `json:"created_at"`
}
