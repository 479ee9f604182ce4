package entity

import (
	"time"

	"github.com/google/uuid"
)

// OrderKind is the leg a gateway event settles.
type OrderKind string

const (
	OrderKindBookingPayment      OrderKind = "booking_payment"
	OrderKindRefundSettlement    OrderKind = "refund_settlement"
	OrderKindSubscriptionPayment OrderKind = "subscription_payment"
)

// PaymentOrder maps an opaque gateway order code to the entity and leg it
// settles. One row is written per payment link (retries get fresh rows), and
// every inbound gateway event — webhook or redirect — resolves through this
// table. It is the durable idempotency anchor: it survives restarts, so no
// in-process dedup cache exists anywhere in the system.
type PaymentOrder struct {
	OrderCode       int64      `db:"order_code"`
	Kind            OrderKind  `db:"kind"`
	BookingID       *uuid.UUID `db:"booking_id"`
	RefundRequestID *uuid.UUID `db:"refund_request_id"`
	HostID          *uuid.UUID `db:"host_id"`
	PackageID       *uuid.UUID `db:"package_id"`
	CreatedAt       time.Time  `db:"created_at"`
}
