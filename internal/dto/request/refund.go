package request

type CreateRefundRequest struct {
	BookingID     string  `json:"booking_id" validate:"required,uuid4"`
	BankCode      string  `json:"bank_code" validate:"required"`
	AccountNumber string  `json:"account_number" validate:"required"`
	AccountHolder string  `json:"account_holder" validate:"required"`
	Reason        *string `json:"reason,omitempty"`
}

type RejectRefundRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type ListRefundsRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=pending refunded rejected"`
	Search string `json:"search"`
	From   string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}
