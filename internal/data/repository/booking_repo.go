package repository

import (
	"context"
	"fmt"
	"time"

	"condotel-booking/internal/data/entity"
	"condotel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const bookingColumns = `id, condotel_id, customer_id, start_date, end_date, total_price, status,
		       voucher_id, promotion_id, is_paid_to_host, paid_to_host_at, created_at, updated_at`

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error)

	// FindOverlapping returns occupying (confirmed/completed) bookings for the
	// condotel whose date range intersects [start, end). Advisory outside a
	// transaction; authoritative when re-run under FindOverlappingForUpdate.
	FindOverlapping(ctx context.Context, condotelID, excludeID uuid.UUID, start, end time.Time) ([]*entity.Booking, error)

	// UpdateStatus is guarded: the row changes only when its current status
	// still equals from. Returns whether a row was updated.
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error)

	// Transaction-scoped variants for payment reconciliation. The caller owns
	// the transaction and its isolation level.
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entity.Booking, error)
	FindOverlappingForUpdate(ctx context.Context, tx pgx.Tx, condotelID, excludeID uuid.UUID, start, end time.Time) ([]*entity.Booking, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error)

	// Payout engine
	FindPayoutCandidates(ctx context.Context, cutoff time.Time) ([]*entity.Booking, error)
	MarkPaidToHost(ctx context.Context, bookingID uuid.UUID, paidAt time.Time) (bool, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, condotel_id, customer_id, start_date, end_date, total_price, status,
		                      voucher_id, promotion_id, is_paid_to_host, paid_to_host_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.CondotelID,
		booking.CustomerID,
		booking.StartDate,
		booking.EndDate,
		booking.TotalPrice,
		booking.Status,
		booking.VoucherID,
		booking.PromotionID,
		booking.IsPaidToHost,
		booking.PaidToHostAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("condotel_id", booking.CondotelID.String()),
			zap.String("customer_id", booking.CustomerID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by customer ID",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return nil, fmt.Errorf("find bookings by customer ID %s: %w", customerID.String(), err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE customer_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, customerID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by customer ID",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return 0, fmt.Errorf("count bookings by customer ID %s: %w", customerID.String(), err)
	}

	return count, nil
}

const overlapQuery = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE condotel_id = $1
		  AND id != $2
		  AND status IN ('confirmed', 'completed')
		  AND start_date < $4
		  AND end_date > $3
`

func (r *bookingRepository) FindOverlapping(ctx context.Context, condotelID, excludeID uuid.UUID, start, end time.Time) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, overlapQuery, condotelID, excludeID, start, end)
	if err != nil {
		r.log.Error("Failed to find overlapping bookings",
			zap.Error(err),
			zap.String("condotel_id", condotelID.String()),
		)
		return nil, fmt.Errorf("find overlapping bookings for condotel %s: %w", condotelID.String(), err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) FindOverlappingForUpdate(ctx context.Context, tx pgx.Tx, condotelID, excludeID uuid.UUID, start, end time.Time) ([]*entity.Booking, error) {
	rows, err := tx.Query(ctx, overlapQuery+` FOR UPDATE`, condotelID, excludeID, start, end)
	if err != nil {
		r.log.Error("Failed to lock overlapping bookings",
			zap.Error(err),
			zap.String("condotel_id", condotelID.String()),
		)
		return nil, fmt.Errorf("lock overlapping bookings for condotel %s: %w", condotelID.String(), err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	booking, err := scanBooking(tx.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("lock booking %s: %w", id.String(), err)
	}

	return booking, nil
}

const updateStatusQuery = `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
`

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("booking status transition %s -> %s not allowed", from, to)
	}

	result, err := r.db.Exec(ctx, updateStatusQuery, bookingID, from, to)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(to), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("booking status transition %s -> %s not allowed", from, to)
	}

	result, err := tx.Exec(ctx, updateStatusQuery, bookingID, from, to)
	if err != nil {
		return false, fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(to), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) FindPayoutCandidates(ctx context.Context, cutoff time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status IN ('confirmed', 'completed')
		  AND is_paid_to_host = false
		  AND end_date <= $1
		  AND total_price > 0
		ORDER BY end_date
	`

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		r.log.Error("Failed to find payout candidates", zap.Error(err))
		return nil, fmt.Errorf("find payout candidates: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) MarkPaidToHost(ctx context.Context, bookingID uuid.UUID, paidAt time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET is_paid_to_host = true, paid_to_host_at = $2, updated_at = NOW()
		WHERE id = $1 AND is_paid_to_host = false
	`

	result, err := r.db.Exec(ctx, query, bookingID, paidAt)
	if err != nil {
		r.log.Error("Failed to mark booking paid to host",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return false, fmt.Errorf("mark booking %s paid to host: %w", bookingID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.CondotelID,
		&booking.CustomerID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.TotalPrice,
		&booking.Status,
		&booking.VoucherID,
		&booking.PromotionID,
		&booking.IsPaidToHost,
		&booking.PaidToHostAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func collectBookings(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}
