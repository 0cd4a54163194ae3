package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransition(t *testing.T) {
	all := []GiveawayStatus{
		GiveawayStatusPendingSetup,
		GiveawayStatusActive,
		GiveawayStatusProcessing,
		GiveawayStatusFinished,
	}
	allowed := map[GiveawayStatus]GiveawayStatus{
		GiveawayStatusPendingSetup: GiveawayStatusActive,
		GiveawayStatusActive:       GiveawayStatusProcessing,
		GiveawayStatusProcessing:   GiveawayStatusFinished,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from] == to
			assert.Equal(t, want, ValidTransition(from, to), "%s -> %s", from, to)
		}
	}

	assert.False(t, ValidTransition(GiveawayStatusFinished, GiveawayStatusActive), "finished is terminal")
	assert.False(t, ValidTransition("bogus", GiveawayStatusActive))
}
