package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gift-collectibles-backend/internal/features/giveaway/models"
	"gift-collectibles-backend/internal/features/giveaway/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.GiveawayRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO giveaways (id, creator_id, channel_id, ends_at, winner_rule, status,
			msg_id, last_announce_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(ctx, query,
		giveaway.ID, giveaway.CreatorID, giveaway.ChannelID, giveaway.EndsAt,
		giveaway.WinnerRule, giveaway.Status, giveaway.MsgID,
		giveaway.LastAnnounceAt, giveaway.CreatedAt, giveaway.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create giveaway: %w", err)
	}

	for _, giftID := range giveaway.PrizeGiftIDs {
		linkQuery := `
			INSERT INTO giveaway_prizes (giveaway_id, gift_id)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, linkQuery, giveaway.ID, giftID); err != nil {
			return fmt.Errorf("failed to link prize gift: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	query := `
		SELECT id, creator_id, channel_id, ends_at, winner_rule, status,
			msg_id, last_announce_at, created_at, updated_at
		FROM giveaways
		WHERE id = $1
	`
	g := &models.Giveaway{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.CreatorID, &g.ChannelID, &g.EndsAt, &g.WinnerRule, &g.Status,
		&g.MsgID, &g.LastAnnounceAt, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrGiveawayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway: %w", err)
	}
	return g, nil
}

func (r *postgresRepository) GetByCreator(ctx context.Context, creatorID int64) ([]*models.Giveaway, error) {
	query := `
		SELECT id, creator_id, channel_id, ends_at, winner_rule, status,
			msg_id, last_announce_at, created_at, updated_at
		FROM giveaways
		WHERE creator_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list giveaways: %w", err)
	}
	defer rows.Close()

	var giveaways []*models.Giveaway
	for rows.Next() {
		g := &models.Giveaway{}
		if err := rows.Scan(
			&g.ID, &g.CreatorID, &g.ChannelID, &g.EndsAt, &g.WinnerRule, &g.Status,
			&g.MsgID, &g.LastAnnounceAt, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan giveaway: %w", err)
		}
		giveaways = append(giveaways, g)
	}
	return giveaways, rows.Err()
}

func (r *postgresRepository) UpdateSetup(ctx context.Context, id string, update models.GiveawayUpdate) error {
	query := `
		UPDATE giveaways
		SET channel_id = COALESCE($2, channel_id),
			ends_at = COALESCE($3, ends_at),
			updated_at = NOW()
		WHERE id = $1 AND status = $4
	`
	res, err := r.db.ExecContext(ctx, query, id, update.ChannelID, update.EndsAt, models.GiveawayStatusPendingSetup)
	if err != nil {
		return fmt.Errorf("failed to update giveaway setup: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrGiveawayNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM giveaway_prizes WHERE giveaway_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete prize links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM giveaway_participants WHERE giveaway_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM giveaways WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete giveaway: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrGiveawayNotFound
	}

	return tx.Commit()
}

func (r *postgresRepository) TryPublish(ctx context.Context, id string, msgID int64, now time.Time) (bool, error) {
	query := `
		UPDATE giveaways
		SET status = $2, msg_id = $3, last_announce_at = $4, updated_at = $4
		WHERE id = $1 AND status = $5
	`
	res, err := r.db.ExecContext(ctx, query, id,
		models.GiveawayStatusActive, msgID, now, models.GiveawayStatusPendingSetup)
	if err != nil {
		return false, fmt.Errorf("failed to publish giveaway: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

func (r *postgresRepository) AddParticipant(ctx context.Context, giveawayID string, accountID int64, now time.Time) (bool, error) {
	query := `
		INSERT INTO giveaway_participants (giveaway_id, account_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (giveaway_id, account_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, giveawayID, accountID, now)
	if err != nil {
		return false, fmt.Errorf("failed to add participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

func (r *postgresRepository) GetParticipants(ctx context.Context, giveawayID string) ([]int64, error) {
	query := `
		SELECT account_id
		FROM giveaway_participants
		WHERE giveaway_id = $1
		ORDER BY joined_at
	`
	rows, err := r.db.QueryContext(ctx, query, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []int64
	for rows.Next() {
		var accountID int64
		if err := rows.Scan(&accountID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, accountID)
	}
	return participants, rows.Err()
}

func (r *postgresRepository) GetParticipantsCount(ctx context.Context, giveawayID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM giveaway_participants WHERE giveaway_id = $1`, giveawayID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) GetPrizeGiftIDs(ctx context.Context, giveawayID string) ([]string, error) {
	query := `
		SELECT gp.gift_id
		FROM giveaway_prizes gp
		JOIN gifts g ON g.id = gp.gift_id
		WHERE gp.giveaway_id = $1
		ORDER BY g.acquired_at, g.id
	`
	rows, err := r.db.QueryContext(ctx, query, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prize gifts: %w", err)
	}
	defer rows.Close()

	var giftIDs []string
	for rows.Next() {
		var giftID string
		if err := rows.Scan(&giftID); err != nil {
			return nil, fmt.Errorf("failed to scan prize gift: %w", err)
		}
		giftIDs = append(giftIDs, giftID)
	}
	return giftIDs, rows.Err()
}

func (r *postgresRepository) GetExpired(ctx context.Context, now time.Time) ([]string, error) {
	query := `
		SELECT id
		FROM giveaways
		WHERE status = $1 AND ends_at <= $2
	`
	rows, err := r.db.QueryContext(ctx, query, models.GiveawayStatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired giveaways: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan giveaway id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ClaimExpired re-checks status on write, so an id claimed by a concurrent
// scheduler simply drops out of the returned set.
func (r *postgresRepository) ClaimExpired(ctx context.Context, ids []string, now time.Time) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		UPDATE giveaways
		SET status = $1, updated_at = $2
		WHERE id = ANY($3) AND status = $4
		RETURNING id
	`
	rows, err := r.db.QueryContext(ctx, query,
		models.GiveawayStatusProcessing, now, pq.Array(ids), models.GiveawayStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to claim giveaways: %w", err)
	}
	defer rows.Close()

	var claimed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan claimed id: %w", err)
		}
		claimed = append(claimed, id)
	}
	return claimed, rows.Err()
}

func (r *postgresRepository) TryClaim(ctx context.Context, id string, from, to models.GiveawayStatus, now time.Time) (bool, error) {
	query := `
		UPDATE giveaways
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`
	res, err := r.db.ExecContext(ctx, query, id, to, now, from)
	if err != nil {
		return false, fmt.Errorf("failed to claim giveaway: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

func (r *postgresRepository) MarkFinished(ctx context.Context, id string, now time.Time) error {
	query := `
		UPDATE giveaways
		SET status = $2, updated_at = $3
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, models.GiveawayStatusFinished, now); err != nil {
		return fmt.Errorf("failed to mark giveaway finished: %w", err)
	}
	return nil
}

func (r *postgresRepository) TryMarkAnnounced(ctx context.Context, id string, now time.Time, minInterval time.Duration) (bool, error) {
	query := `
		UPDATE giveaways
		SET last_announce_at = $2
		WHERE id = $1 AND last_announce_at <= $3
	`
	res, err := r.db.ExecContext(ctx, query, id, now, now.Add(-minInterval))
	if err != nil {
		return false, fmt.Errorf("failed to mark announcement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

func (r *postgresRepository) CreateWinRecord(ctx context.Context, record *models.WinRecord) error {
	query := `
		INSERT INTO win_records (giveaway_id, account_id, gift_id, place, awarded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.GiveawayID, record.AccountID, record.GiftID, record.Place, record.AwardedAt)
	if err != nil {
		return fmt.Errorf("failed to create win record: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetWinRecords(ctx context.Context, giveawayID string) ([]*models.WinRecord, error) {
	query := `
		SELECT giveaway_id, account_id, gift_id, place, awarded_at
		FROM win_records
		WHERE giveaway_id = $1
		ORDER BY place
	`
	rows, err := r.db.QueryContext(ctx, query, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get win records: %w", err)
	}
	defer rows.Close()

	var records []*models.WinRecord
	for rows.Next() {
		rec := &models.WinRecord{}
		if err := rows.Scan(&rec.GiveawayID, &rec.AccountID, &rec.GiftID, &rec.Place, &rec.AwardedAt); err != nil {
			return nil, fmt.Errorf("failed to scan win record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *postgresRepository) GetStaleProcessing(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `
		SELECT id
		FROM giveaways
		WHERE status = $1 AND updated_at < $2
	`
	rows, err := r.db.QueryContext(ctx, query, models.GiveawayStatusProcessing, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale giveaways: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan giveaway id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
