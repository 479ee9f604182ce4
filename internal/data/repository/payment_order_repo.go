package repository

import (
	"context"
	"fmt"

	"condotel-booking/internal/data/entity"
	"condotel-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentOrderRepository interface {
	Create(ctx context.Context, order *entity.PaymentOrder) error
	FindByOrderCode(ctx context.Context, orderCode int64) (*entity.PaymentOrder, error)
	FindByOrderCodeTx(ctx context.Context, tx pgx.Tx, orderCode int64) (*entity.PaymentOrder, error)
}

type paymentOrderRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentOrderRepository(db database.PgxIface, log *zap.Logger) PaymentOrderRepository {
	return &paymentOrderRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment_order")),
	}
}

func (r *paymentOrderRepository) Create(ctx context.Context, order *entity.PaymentOrder) error {
	query := `
		INSERT INTO payment_orders (order_code, kind, booking_id, refund_request_id, host_id, package_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		order.OrderCode,
		order.Kind,
		order.BookingID,
		order.RefundRequestID,
		order.HostID,
		order.PackageID,
		order.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment order",
			zap.Error(err),
			zap.Int64("order_code", order.OrderCode),
			zap.String("kind", string(order.Kind)),
		)
		return fmt.Errorf("create payment order %d: %w", order.OrderCode, err)
	}

	return nil
}

const paymentOrderQuery = `
		SELECT order_code, kind, booking_id, refund_request_id, host_id, package_id, created_at
		FROM payment_orders
		WHERE order_code = $1
`

func (r *paymentOrderRepository) FindByOrderCode(ctx context.Context, orderCode int64) (*entity.PaymentOrder, error) {
	order, err := scanPaymentOrder(r.db.QueryRow(ctx, paymentOrderQuery, orderCode))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment order",
			zap.Error(err),
			zap.Int64("order_code", orderCode),
		)
		return nil, fmt.Errorf("find payment order %d: %w", orderCode, err)
	}

	return order, nil
}

func (r *paymentOrderRepository) FindByOrderCodeTx(ctx context.Context, tx pgx.Tx, orderCode int64) (*entity.PaymentOrder, error) {
	order, err := scanPaymentOrder(tx.QueryRow(ctx, paymentOrderQuery, orderCode))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find payment order %d: %w", orderCode, err)
	}

	return order, nil
}

func scanPaymentOrder(row pgx.Row) (*entity.PaymentOrder, error) {
	var order entity.PaymentOrder
	err := row.Scan(
		&order.OrderCode,
		&order.Kind,
		&order.BookingID,
		&order.RefundRequestID,
		&order.HostID,
		&order.PackageID,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
