package entity

import (
	"time"

	"github.com/google/uuid"
)

type RefundStatus string

const (
	RefundStatusPending  RefundStatus = "pending"
	RefundStatusRefunded RefundStatus = "refunded"
	RefundStatusRejected RefundStatus = "rejected"
)

var refundTransitions = map[RefundStatus][]RefundStatus{
	RefundStatusPending: {RefundStatusRefunded, RefundStatusRejected},
}

// CanTransition reports whether moving from s to target is allowed.
func (s RefundStatus) CanTransition(target RefundStatus) bool {
	for _, allowed := range refundTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// RefundRequest tracks a customer-initiated cancellation refund. At most one
// Pending request exists per booking. Money movement is asynchronous: the
// request only becomes Refunded when the gateway settlement event lands.
type RefundRequest struct {
	BaseSimple
	BookingID     uuid.UUID    `db:"booking_id"`
	CustomerID    uuid.UUID    `db:"customer_id"`
	RefundAmount  float64      `db:"refund_amount"`
	BankCode      string       `db:"bank_code"`
	AccountNumber string       `db:"account_number"`
	AccountHolder string       `db:"account_holder"`
	Status        RefundStatus `db:"status"`
	Reason        *string      `db:"reason"`
	ProcessedAt   *time.Time   `db:"processed_at"`
}

// HasBankInfo reports whether the request carries a complete payout target.
func (r *RefundRequest) HasBankInfo() bool {
	return r.BankCode != "" && r.AccountNumber != "" && r.AccountHolder != ""
}
