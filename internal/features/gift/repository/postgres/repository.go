package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"gift-collectibles-backend/internal/features/gift/models"
	"gift-collectibles-backend/internal/features/gift/repository"

	_ "github.com/lib/pq"
)

type postgresRepository struct {
	db *sql.DB
}

type postgresTransaction struct {
	tx *sql.Tx
}

func (t *postgresTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *postgresTransaction) Rollback() error {
	return t.tx.Rollback()
}

func NewPostgresRepository(db *sql.DB) repository.GiftRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) BeginTx(ctx context.Context) (repository.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &postgresTransaction{tx: tx}, nil
}

func (r *postgresRepository) Create(ctx context.Context, gift *models.Gift) error {
	query := `
		INSERT INTO gifts (id, owner_id, gift_type, is_collectible, pinned, worn, pin_order, acquired_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		gift.ID, gift.OwnerID, gift.GiftType, gift.IsCollectible,
		gift.Pinned, gift.Worn, gift.PinOrder, gift.AcquiredAt)
	if err != nil {
		return fmt.Errorf("failed to create gift: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*models.Gift, error) {
	query := `
		SELECT id, owner_id, gift_type, is_collectible, pinned, worn, pin_order, acquired_at
		FROM gifts
		WHERE id = $1
	`
	gift := &models.Gift{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&gift.ID, &gift.OwnerID, &gift.GiftType, &gift.IsCollectible,
		&gift.Pinned, &gift.Worn, &gift.PinOrder, &gift.AcquiredAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrGiftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gift: %w", err)
	}
	return gift, nil
}

func (r *postgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Gift, error) {
	query := `
		SELECT id, owner_id, gift_type, is_collectible, pinned, worn, pin_order, acquired_at
		FROM gifts
		WHERE owner_id = $1
		ORDER BY acquired_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list gifts: %w", err)
	}
	defer rows.Close()

	var gifts []*models.Gift
	for rows.Next() {
		gift := &models.Gift{}
		if err := rows.Scan(
			&gift.ID, &gift.OwnerID, &gift.GiftType, &gift.IsCollectible,
			&gift.Pinned, &gift.Worn, &gift.PinOrder, &gift.AcquiredAt); err != nil {
			return nil, fmt.Errorf("failed to scan gift: %w", err)
		}
		gifts = append(gifts, gift)
	}
	return gifts, rows.Err()
}

// MarkCollectibleTx is the concurrency guard of the upgrade path: the
// conditional write succeeds for exactly one of any number of concurrent
// upgrades of the same gift.
func (r *postgresRepository) MarkCollectibleTx(ctx context.Context, tx repository.Transaction, giftID string) (bool, error) {
	sqlTx := tx.(*postgresTransaction).tx

	query := `
		UPDATE gifts
		SET is_collectible = TRUE
		WHERE id = $1 AND is_collectible = FALSE
	`
	res, err := sqlTx.ExecContext(ctx, query, giftID)
	if err != nil {
		return false, fmt.Errorf("failed to mark gift collectible: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

// NextSerialTx bumps the per-type counter in a single statement. The row
// lock taken by the upsert serializes concurrent upgrades of one type, so
// serials come out dense and unique.
func (r *postgresRepository) NextSerialTx(ctx context.Context, tx repository.Transaction, giftType string) (int, error) {
	sqlTx := tx.(*postgresTransaction).tx

	query := `
		INSERT INTO gift_serials (gift_type, last_serial)
		VALUES ($1, 1)
		ON CONFLICT (gift_type)
		DO UPDATE SET last_serial = gift_serials.last_serial + 1
		RETURNING last_serial
	`
	var serial int
	if err := sqlTx.QueryRowContext(ctx, query, giftType).Scan(&serial); err != nil {
		return 0, fmt.Errorf("failed to assign serial number: %w", err)
	}
	return serial, nil
}

func (r *postgresRepository) CreateCollectibleTx(ctx context.Context, tx repository.Transaction, c *models.Collectible) error {
	sqlTx := tx.(*postgresTransaction).tx

	query := `
		INSERT INTO collectibles (gift_id, gift_type, model, backdrop, pattern, serial_number, supply, upgraded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	model, backdrop, pattern, err := marshalTraits(c)
	if err != nil {
		return err
	}
	_, err = sqlTx.ExecContext(ctx, query,
		c.GiftID, c.GiftType, model, backdrop, pattern,
		c.SerialNumber, c.Supply, c.UpgradedAt)
	if err != nil {
		return fmt.Errorf("failed to create collectible: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetCollectible(ctx context.Context, giftID string) (*models.Collectible, error) {
	query := `
		SELECT gift_id, gift_type, model, backdrop, pattern, serial_number, supply, upgraded_at
		FROM collectibles
		WHERE gift_id = $1
	`
	var (
		c                        models.Collectible
		model, backdrop, pattern []byte
	)
	err := r.db.QueryRowContext(ctx, query, giftID).Scan(
		&c.GiftID, &c.GiftType, &model, &backdrop, &pattern,
		&c.SerialNumber, &c.Supply, &c.UpgradedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrCollectibleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collectible: %w", err)
	}
	if err := unmarshalTraits(&c, model, backdrop, pattern); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) TransferOwner(ctx context.Context, giftID string, newOwnerID int64) error {
	query := `
		UPDATE gifts
		SET owner_id = $2, pinned = FALSE, worn = FALSE, pin_order = 0
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, giftID, newOwnerID)
	if err != nil {
		return fmt.Errorf("failed to transfer gift: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrGiftNotFound
	}
	return nil
}
