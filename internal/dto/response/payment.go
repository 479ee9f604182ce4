package response

type PaymentLinkResponse struct {
	OrderCode   int64  `json:"order_code"`
	CheckoutURL string `json:"checkout_url"`
	QRCode      string `json:"qr_code,omitempty"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
}

type PaymentStatusResponse struct {
	OrderCode       int64   `json:"order_code"`
	Status          string  `json:"status"`
	Amount          int64   `json:"amount"`
	AmountPaid      int64   `json:"amount_paid"`
	AmountRemaining int64   `json:"amount_remaining"`
	BookingID       *string `json:"booking_id,omitempty"`
	BookingStatus   string  `json:"booking_status,omitempty"`
}

type PackagePurchaseResponse struct {
	SubscriptionID string `json:"subscription_id"`
	PackageName    string `json:"package_name"`
	OrderCode      int64  `json:"order_code"`
	CheckoutURL    string `json:"checkout_url"`
	Amount         int64  `json:"amount"`
}
