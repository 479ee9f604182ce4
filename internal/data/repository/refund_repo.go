package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"condotel-booking/internal/data/entity"
	"condotel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// RefundFilter narrows admin listings. Zero values mean "no constraint".
type RefundFilter struct {
	Status entity.RefundStatus
	Search string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type RefundRepository interface {
	Create(ctx context.Context, refund *entity.RefundRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RefundRequest, error)
	FindPendingByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.RefundRequest, error)
	HasPendingByBookingID(ctx context.Context, bookingID uuid.UUID) (bool, error)
	List(ctx context.Context, filter RefundFilter) ([]*entity.RefundRequest, int64, error)

	// UpdateStatus is guarded on the current status. Returns whether a row
	// was updated.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.RefundStatus, reason *string) (bool, error)

	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entity.RefundRequest, error)
	MarkRefundedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, processedAt time.Time) (bool, error)
}

type refundRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRefundRepository(db database.PgxIface, log *zap.Logger) RefundRepository {
	return &refundRepository{
		db:  db,
		log: log.With(zap.String("repository", "refund")),
	}
}

const refundColumns = `id, booking_id, customer_id, refund_amount, bank_code, account_number,
		       account_holder, status, reason, processed_at, created_at`

func (r *refundRepository) Create(ctx context.Context, refund *entity.RefundRequest) error {
	query := `
		INSERT INTO refund_requests (id, booking_id, customer_id, refund_amount, bank_code,
		                             account_number, account_holder, status, reason, processed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		refund.ID,
		refund.BookingID,
		refund.CustomerID,
		refund.RefundAmount,
		refund.BankCode,
		refund.AccountNumber,
		refund.AccountHolder,
		refund.Status,
		refund.Reason,
		refund.ProcessedAt,
		refund.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create refund request",
			zap.Error(err),
			zap.String("booking_id", refund.BookingID.String()),
		)
		return fmt.Errorf("create refund request for booking %s: %w", refund.BookingID.String(), err)
	}

	return nil
}

func (r *refundRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE id = $1`

	refund, err := scanRefund(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find refund request by ID",
			zap.Error(err),
			zap.String("refund_id", id.String()),
		)
		return nil, fmt.Errorf("find refund request by ID %s: %w", id.String(), err)
	}

	return refund, nil
}

func (r *refundRepository) FindPendingByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE booking_id = $1 AND status = 'pending'`

	refund, err := scanRefund(r.db.QueryRow(ctx, query, bookingID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find pending refund request",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find pending refund request for booking %s: %w", bookingID.String(), err)
	}

	return refund, nil
}

func (r *refundRepository) HasPendingByBookingID(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM refund_requests WHERE booking_id = $1 AND status = 'pending')`

	var exists bool
	err := r.db.QueryRow(ctx, query, bookingID).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check pending refund request",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return false, fmt.Errorf("check pending refund request for booking %s: %w", bookingID.String(), err)
	}

	return exists, nil
}

func (r *refundRepository) List(ctx context.Context, filter RefundFilter) ([]*entity.RefundRequest, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(account_holder ILIKE $%d OR account_number ILIKE $%d)", len(args), len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM refund_requests`+where, args...).Scan(&total)
	if err != nil {
		r.log.Error("Failed to count refund requests", zap.Error(err))
		return nil, 0, fmt.Errorf("count refund requests: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	limitClause := fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	limitClause += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.Query(ctx, `SELECT `+refundColumns+` FROM refund_requests`+where+limitClause, args...)
	if err != nil {
		r.log.Error("Failed to list refund requests", zap.Error(err))
		return nil, 0, fmt.Errorf("list refund requests: %w", err)
	}
	defer rows.Close()

	var refunds []*entity.RefundRequest
	for rows.Next() {
		refund, err := scanRefund(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan refund request row: %w", err)
		}
		refunds = append(refunds, refund)
	}

	return refunds, total, rows.Err()
}

func (r *refundRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.RefundStatus, reason *string) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("refund status transition %s -> %s not allowed", from, to)
	}

	query := `
		UPDATE refund_requests
		SET status = $3, reason = COALESCE($4, reason), processed_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.Exec(ctx, query, id, from, to, reason)
	if err != nil {
		r.log.Error("Failed to update refund request status",
			zap.Error(err),
			zap.String("refund_id", id.String()),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("update refund request %s status to %s: %w", id.String(), string(to), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *refundRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entity.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE id = $1 FOR UPDATE`

	refund, err := scanRefund(tx.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock refund request",
			zap.Error(err),
			zap.String("refund_id", id.String()),
		)
		return nil, fmt.Errorf("lock refund request %s: %w", id.String(), err)
	}

	return refund, nil
}

func (r *refundRepository) MarkRefundedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, processedAt time.Time) (bool, error) {
	query := `
		UPDATE refund_requests
		SET status = 'refunded', processed_at = $2
		WHERE id = $1 AND status = 'pending'
	`

	result, err := tx.Exec(ctx, query, id, processedAt)
	if err != nil {
		return false, fmt.Errorf("mark refund request %s refunded: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func scanRefund(row pgx.Row) (*entity.RefundRequest, error) {
	var refund entity.RefundRequest
	err := row.Scan(
		&refund.ID,
		&refund.BookingID,
		&refund.CustomerID,
		&refund.RefundAmount,
		&refund.BankCode,
		&refund.AccountNumber,
		&refund.AccountHolder,
		&refund.Status,
		&refund.Reason,
		&refund.ProcessedAt,
		&refund.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &refund, nil
}
