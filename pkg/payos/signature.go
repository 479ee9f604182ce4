package payos

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// SignCreatePayment computes the HMAC-SHA256 signature the gateway expects on
// payment-link creation: the five canonical fields joined as a query string in
// alphabetical key order.
func SignCreatePayment(checksumKey string, amount int, cancelURL, description string, orderCode int64, returnURL string) string {
	payload := fmt.Sprintf("amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		amount, cancelURL, description, orderCode, returnURL)

	return hmacHex(checksumKey, payload)
}

// SignWebhook computes the signature over the canonical pipe-joined webhook
// fields: code|orderCode|amount|transactionDateTime|currency.
func SignWebhook(checksumKey string, payload *WebhookPayload) string {
	if payload == nil || payload.Data == nil {
		return ""
	}

	canonical := fmt.Sprintf("%s|%d|%d|%s|%s",
		payload.Code,
		payload.Data.OrderCode,
		payload.Data.Amount,
		payload.Data.TransactionDateTime,
		payload.Data.Currency,
	)

	return hmacHex(checksumKey, canonical)
}

// VerifyWebhook parses the raw body and checks the supplied signature against
// the canonical field string. Returns the parsed payload only when the
// signature matches; a failed verification must cause zero state change.
func VerifyWebhook(checksumKey, signature string, body []byte) (*WebhookPayload, bool) {
	if signature == "" || len(body) == 0 {
		return nil, false
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false
	}
	if payload.Data == nil {
		return nil, false
	}

	expected := SignWebhook(checksumKey, &payload)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return nil, false
	}

	return &payload, true
}

func hmacHex(key, payload string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
