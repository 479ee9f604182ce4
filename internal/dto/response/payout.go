package response

import "time"

type PayoutItem struct {
	BookingID string    `json:"booking_id"`
	HostID    string    `json:"host_id"`
	Amount    float64   `json:"amount"`
	EndDate   string    `json:"end_date"`
	PaidAt    time.Time `json:"paid_at"`
}

type PayoutBatchResponse struct {
	ProcessedCount int          `json:"processed_count"`
	TotalAmount    float64      `json:"total_amount"`
	Items          []PayoutItem `json:"items"`
}

type PendingPayoutItem struct {
	BookingID string  `json:"booking_id"`
	HostID    string  `json:"host_id"`
	Amount    float64 `json:"amount"`
	EndDate   string  `json:"end_date"`
	Eligible  bool    `json:"eligible"`
	Blocker   string  `json:"blocker,omitempty"`
}
