package response

import (
	"time"

	"condotel-booking/internal/data/entity"
)

type RefundResponse struct {
	ID            string              `json:"id"`
	BookingID     string              `json:"booking_id"`
	CustomerID    string              `json:"customer_id"`
	RefundAmount  float64             `json:"refund_amount"`
	BankCode      string              `json:"bank_code"`
	AccountNumber string              `json:"account_number"`
	AccountHolder string              `json:"account_holder"`
	Status        entity.RefundStatus `json:"status"`
	Reason        *string             `json:"reason,omitempty"`
	ProcessedAt   *time.Time          `json:"processed_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

type ConfirmRefundResponse struct {
	RefundResponse
	OrderCode   int64  `json:"order_code"`
	CheckoutURL string `json:"checkout_url"`
}

func RefundToResponse(refund *entity.RefundRequest) RefundResponse {
	return RefundResponse{
		ID:            refund.ID.String(),
		BookingID:     refund.BookingID.String(),
		CustomerID:    refund.CustomerID.String(),
		RefundAmount:  refund.RefundAmount,
		BankCode:      refund.BankCode,
		AccountNumber: refund.AccountNumber,
		AccountHolder: refund.AccountHolder,
		Status:        refund.Status,
		Reason:        refund.Reason,
		ProcessedAt:   refund.ProcessedAt,
		CreatedAt:     refund.CreatedAt,
	}
}
