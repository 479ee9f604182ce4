package repository

import (
	"context"
	"fmt"

	"condotel-booking/internal/data/entity"
	"condotel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type VoucherRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Voucher, error)
	FindPromotionByID(ctx context.Context, id uuid.UUID) (*entity.Promotion, error)

	// TryIncrementUsage reserves one use of the voucher. The guard on
	// used_count keeps the counter at or below max_uses even under
	// concurrent confirmations. Returns whether a use was reserved.
	TryIncrementUsage(ctx context.Context, voucherID uuid.UUID) (bool, error)
	TryIncrementUsageTx(ctx context.Context, tx pgx.Tx, voucherID uuid.UUID) (bool, error)

	// DecrementUsage releases a previously reserved use, floored at zero.
	DecrementUsage(ctx context.Context, voucherID uuid.UUID) error
	DecrementUsageTx(ctx context.Context, tx pgx.Tx, voucherID uuid.UUID) error
}

type voucherRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewVoucherRepository(db database.PgxIface, log *zap.Logger) VoucherRepository {
	return &voucherRepository{
		db:  db,
		log: log.With(zap.String("repository", "voucher")),
	}
}

func (r *voucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Voucher, error) {
	query := `
		SELECT id, code, discount_percentage, discount_amount, max_uses, used_count,
		       expiry_date, status, created_at, updated_at
		FROM vouchers
		WHERE id = $1
	`

	var voucher entity.Voucher
	err := r.db.QueryRow(ctx, query, id).Scan(
		&voucher.ID,
		&voucher.Code,
		&voucher.DiscountPercentage,
		&voucher.DiscountAmount,
		&voucher.MaxUses,
		&voucher.UsedCount,
		&voucher.ExpiryDate,
		&voucher.Status,
		&voucher.CreatedAt,
		&voucher.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find voucher by ID",
			zap.Error(err),
			zap.String("voucher_id", id.String()),
		)
		return nil, fmt.Errorf("find voucher by ID %s: %w", id.String(), err)
	}

	return &voucher, nil
}

func (r *voucherRepository) FindPromotionByID(ctx context.Context, id uuid.UUID) (*entity.Promotion, error) {
	query := `
		SELECT id, name, discount_percentage, start_date, end_date, status, created_at, updated_at
		FROM promotions
		WHERE id = $1
	`

	var promotion entity.Promotion
	err := r.db.QueryRow(ctx, query, id).Scan(
		&promotion.ID,
		&promotion.Name,
		&promotion.DiscountPercentage,
		&promotion.StartDate,
		&promotion.EndDate,
		&promotion.Status,
		&promotion.CreatedAt,
		&promotion.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find promotion by ID",
			zap.Error(err),
			zap.String("promotion_id", id.String()),
		)
		return nil, fmt.Errorf("find promotion by ID %s: %w", id.String(), err)
	}

	return &promotion, nil
}

const incrementUsageQuery = `
		UPDATE vouchers
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND used_count < max_uses
`

func (r *voucherRepository) TryIncrementUsage(ctx context.Context, voucherID uuid.UUID) (bool, error) {
	result, err := r.db.Exec(ctx, incrementUsageQuery, voucherID)
	if err != nil {
		r.log.Error("Failed to increment voucher usage",
			zap.Error(err),
			zap.String("voucher_id", voucherID.String()),
		)
		return false, fmt.Errorf("increment voucher %s usage: %w", voucherID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *voucherRepository) TryIncrementUsageTx(ctx context.Context, tx pgx.Tx, voucherID uuid.UUID) (bool, error) {
	result, err := tx.Exec(ctx, incrementUsageQuery, voucherID)
	if err != nil {
		return false, fmt.Errorf("increment voucher %s usage: %w", voucherID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

const decrementUsageQuery = `
		UPDATE vouchers
		SET used_count = GREATEST(used_count - 1, 0), updated_at = NOW()
		WHERE id = $1
`

func (r *voucherRepository) DecrementUsage(ctx context.Context, voucherID uuid.UUID) error {
	_, err := r.db.Exec(ctx, decrementUsageQuery, voucherID)
	if err != nil {
		r.log.Error("Failed to decrement voucher usage",
			zap.Error(err),
			zap.String("voucher_id", voucherID.String()),
		)
		return fmt.Errorf("decrement voucher %s usage: %w", voucherID.String(), err)
	}

	return nil
}

func (r *voucherRepository) DecrementUsageTx(ctx context.Context, tx pgx.Tx, voucherID uuid.UUID) error {
	_, err := tx.Exec(ctx, decrementUsageQuery, voucherID)
	if err != nil {
		return fmt.Errorf("decrement voucher %s usage: %w", voucherID.String(), err)
	}

	return nil
}
