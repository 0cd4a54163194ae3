package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	MaxGiftTypeLength = 64

	// Giveaways shorter than this cannot be published.
	MinGiveawayDuration = 5 * time.Minute
)

// Gift type names come from the catalog: latin letters, digits, spaces and
// dashes.
var giftTypeRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 \-']*$`)

// ValidateGiftType checks a catalog gift-type name.
func ValidateGiftType(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("gift type cannot be empty")
	}
	if len(name) > MaxGiftTypeLength {
		return fmt.Errorf("gift type cannot exceed %d characters", MaxGiftTypeLength)
	}
	if !giftTypeRegex.MatchString(name) {
		return fmt.Errorf("gift type contains invalid characters")
	}
	return nil
}

// ValidateChannelTarget checks a Telegram chat id used as announcement
// target. Channels and supergroups have negative ids.
func ValidateChannelTarget(chatID int64) error {
	if chatID == 0 {
		return fmt.Errorf("channel target is not set")
	}
	return nil
}

// ValidateEndTime checks a giveaway end time against the minimum duration.
func ValidateEndTime(endsAt, now time.Time) error {
	if endsAt.IsZero() {
		return fmt.Errorf("end time is not set")
	}
	if endsAt.Before(now.Add(MinGiveawayDuration)) {
		return fmt.Errorf("end time must be at least %s from now", MinGiveawayDuration)
	}
	return nil
}
