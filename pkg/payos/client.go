package payos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"condotel-booking/pkg/utils"

	"go.uber.org/zap"
)

// ErrDuplicateOrderCode is returned when the gateway rejects a payment link
// because the order code was already used. Callers retry with a fresh code.
var ErrDuplicateOrderCode = errors.New("payos: duplicate order code")

// Client talks to the payment gateway's payment-request API.
type Client struct {
	httpClient *http.Client
	config     utils.PayOSConfig
	log        *zap.Logger
}

func NewClient(config utils.PayOSConfig, log *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		config:     config,
		log:        log.With(zap.String("client", "payos")),
	}
}

// ChecksumKey exposes the shared secret for webhook verification.
func (c *Client) ChecksumKey() string {
	return c.config.ChecksumKey
}

// CreatePaymentLink registers a payment request and returns the checkout URL.
func (c *Client) CreatePaymentLink(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("payos: amount must be greater than 0")
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("payos: items list cannot be empty")
	}

	// The gateway requires the item total to equal the request amount.
	totalItems := 0
	for _, item := range req.Items {
		if item.Name == "" || item.Price <= 0 || item.Quantity <= 0 {
			return nil, fmt.Errorf("payos: invalid item %q", item.Name)
		}
		totalItems += item.Price * item.Quantity
	}
	if totalItems != req.Amount {
		return nil, fmt.Errorf("payos: items total %d does not match amount %d", totalItems, req.Amount)
	}

	req.Description = TruncateDescription(req.Description)
	req.Signature = SignCreatePayment(c.config.ChecksumKey,
		req.Amount, req.CancelURL, req.Description, req.OrderCode, req.ReturnURL)

	var result CreatePaymentResponse
	if err := c.post(ctx, "/v2/payment-requests", req, &result); err != nil {
		return nil, err
	}

	if result.Code != CodeSuccess {
		if result.Code == CodeDuplicateOrder {
			return nil, fmt.Errorf("payos: %s (code %s): %w", result.Desc, result.Code, ErrDuplicateOrderCode)
		}
		return nil, fmt.Errorf("payos: %s (code %s)", result.Desc, result.Code)
	}

	c.log.Info("Payment link created",
		zap.Int64("order_code", req.OrderCode),
		zap.Int("amount", req.Amount),
		zap.String("payment_link_id", result.Data.PaymentLinkID),
	)

	return &result, nil
}

// GetPaymentInfo fetches the current state of a payment link.
func (c *Client) GetPaymentInfo(ctx context.Context, paymentLinkID string) (*PaymentInfo, error) {
	var result PaymentInfo
	if err := c.get(ctx, "/v2/payment-requests/"+paymentLinkID, &result); err != nil {
		return nil, err
	}

	if result.Code != CodeSuccess {
		return nil, fmt.Errorf("payos: %s (code %s)", result.Desc, result.Code)
	}

	return &result, nil
}

// CancelPaymentLink voids an open payment link.
func (c *Client) CancelPaymentLink(ctx context.Context, paymentLinkID, reason string) error {
	if reason == "" {
		reason = "User cancelled"
	}

	body := map[string]string{"cancellationReason": reason}

	var result CreatePaymentResponse
	if err := c.post(ctx, "/v2/payment-requests/"+paymentLinkID+"/cancel", body, &result); err != nil {
		return err
	}

	if result.Code != CodeSuccess {
		return fmt.Errorf("payos: %s (code %s)", result.Desc, result.Code)
	}

	return nil
}

// TruncateDescription clips a payment description to the gateway's limit.
func TruncateDescription(description string) string {
	if len(description) > DescriptionLimit {
		return description[:DescriptionLimit]
	}
	return description
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("payos: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("payos: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("payos: build request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("x-client-id", c.config.ClientID)
	req.Header.Set("x-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payos: cannot connect to gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("payos: read response: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("payos: parse response (status %d): %w", resp.StatusCode, err)
	}

	return nil
}
