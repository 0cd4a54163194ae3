package service

import (
	"fmt"

	"gift-collectibles-backend/internal/features/giveaway/models"
)

func renderAnnouncement(g *models.Giveaway, prizeCount int, participantCount int64) string {
	text := fmt.Sprintf(
		"🎁 <b>Gift Giveaway!</b>\n\n"+
			"%d collectible gift(s) up for grabs.\n"+
			"Join before <b>%s</b> for a chance to win.\n\n"+
			"👥 Participants: %d",
		prizeCount,
		g.EndsAt.UTC().Format("Jan 2, 15:04 MST"),
		participantCount,
	)
	return text
}

func renderResults(g *models.Giveaway, records []*models.WinRecord, participantCount int64) string {
	if len(records) == 0 {
		return "🏁 <b>Giveaway finished</b>\n\nNo participants joined this time."
	}

	winners := make(map[int64]struct{})
	for _, rec := range records {
		winners[rec.AccountID] = struct{}{}
	}

	return fmt.Sprintf(
		"🏁 <b>Giveaway finished!</b>\n\n"+
			"👥 %d participant(s), 🎁 %d gift(s) awarded to %d winner(s).\n"+
			"Winners have received their gifts. Congratulations!",
		participantCount,
		len(records),
		len(winners),
	)
}

func renderNoParticipants(g *models.Giveaway) string {
	return fmt.Sprintf(
		"Your giveaway %s has ended without participants. The prize gifts stay in your collection.",
		g.ID,
	)
}

func renderProcessingFailure(g *models.Giveaway) string {
	return fmt.Sprintf(
		"Your giveaway %s could not be completed automatically. Please contact support; prizes were not (fully) distributed.",
		g.ID,
	)
}
