package payos

// Response codes used by the gateway.
const (
	CodeSuccess        = "00"
	CodeInvalidParams  = "01"
	CodeDuplicateOrder = "20"
)

// Payment link / transaction statuses reported by the gateway.
const (
	StatusPaid       = "PAID"
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCancelled  = "CANCELLED"
)

// DescriptionLimit is the maximum description length the gateway accepts.
const DescriptionLimit = 25

type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
}

type CreatePaymentRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int    `json:"amount"`
	Description string `json:"description"`
	BuyerName   string `json:"buyerName,omitempty"`
	BuyerEmail  string `json:"buyerEmail,omitempty"`
	BuyerPhone  string `json:"buyerPhone,omitempty"`
	Items       []Item `json:"items"`
	CancelURL   string `json:"cancelUrl"`
	ReturnURL   string `json:"returnUrl"`
	Signature   string `json:"signature"`
}

type PaymentLinkData struct {
	PaymentLinkID string `json:"paymentLinkId"`
	CheckoutURL   string `json:"checkoutUrl"`
	QRCode        string `json:"qrCode"`
	OrderCode     int64  `json:"orderCode"`
	Amount        int    `json:"amount"`
	Status        string `json:"status"`
}

type CreatePaymentResponse struct {
	Code string           `json:"code"`
	Desc string           `json:"desc"`
	Data *PaymentLinkData `json:"data"`
}

type Transaction struct {
	Reference           string `json:"reference"`
	Amount              int    `json:"amount"`
	Description         string `json:"description"`
	TransactionDateTime string `json:"transactionDateTime"`
}

type PaymentInfoData struct {
	ID              string        `json:"id"`
	OrderCode       int64         `json:"orderCode"`
	Amount          int           `json:"amount"`
	AmountPaid      int           `json:"amountPaid"`
	AmountRemaining int           `json:"amountRemaining"`
	Status          string        `json:"status"`
	Transactions    []Transaction `json:"transactions"`
}

type PaymentInfo struct {
	Code string           `json:"code"`
	Desc string           `json:"desc"`
	Data *PaymentInfoData `json:"data"`
}

// WebhookData is the inner payload of a gateway webhook delivery.
type WebhookData struct {
	OrderCode           int64  `json:"orderCode"`
	Amount              int    `json:"amount"`
	Description         string `json:"description"`
	Reference           string `json:"reference"`
	TransactionDateTime string `json:"transactionDateTime"`
	Currency            string `json:"currency"`
	PaymentLinkID       string `json:"paymentLinkId"`
	Code                string `json:"code"`
	Desc                string `json:"desc"`
}

// WebhookPayload is the signed JSON body the gateway POSTs to the webhook
// endpoint. Delivery is at-least-once and unordered.
type WebhookPayload struct {
	Code      string       `json:"code"`
	Desc      string       `json:"desc"`
	Success   bool         `json:"success"`
	Data      *WebhookData `json:"data"`
	Signature string       `json:"signature"`
}

// IsSuccess reports whether the payload describes a completed payment.
func (p *WebhookPayload) IsSuccess() bool {
	if p.Data == nil {
		return false
	}
	if p.Code != CodeSuccess && !p.Success {
		return false
	}
	return p.Data.Code == CodeSuccess || p.Data.Code == StatusPaid
}
