package payos

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChecksumKey = "test-checksum-key"

func signedWebhookBody(t *testing.T, payload *WebhookPayload) []byte {
	t.Helper()
	payload.Signature = SignWebhook(testChecksumKey, payload)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func samplePayload() *WebhookPayload {
	return &WebhookPayload{
		Code:    CodeSuccess,
		Desc:    "success",
		Success: true,
		Data: &WebhookData{
			OrderCode:           1756400000123456,
			Amount:              250000,
			Description:         "Booking 1a2b3c4d",
			Reference:           "FT123456",
			TransactionDateTime: "2026-08-29 10:15:00",
			Currency:            "VND",
			Code:                CodeSuccess,
		},
	}
}

func TestVerifyWebhookAcceptsValidSignature(t *testing.T) {
	payload := samplePayload()
	body := signedWebhookBody(t, payload)

	parsed, ok := VerifyWebhook(testChecksumKey, payload.Signature, body)
	require.True(t, ok)
	require.NotNil(t, parsed)
	assert.Equal(t, payload.Data.OrderCode, parsed.Data.OrderCode)
	assert.Equal(t, payload.Data.Amount, parsed.Data.Amount)
	assert.True(t, parsed.IsSuccess())
}

func TestVerifyWebhookAcceptsUppercaseSignature(t *testing.T) {
	payload := samplePayload()
	body := signedWebhookBody(t, payload)

	upper := ""
	for _, c := range payload.Signature {
		if c >= 'a' && c <= 'f' {
			upper += string(c - 32)
		} else {
			upper += string(c)
		}
	}

	_, ok := VerifyWebhook(testChecksumKey, upper, body)
	assert.True(t, ok)
}

func TestVerifyWebhookRejectsTamperedAmount(t *testing.T) {
	payload := samplePayload()
	body := signedWebhookBody(t, payload)

	var tampered WebhookPayload
	require.NoError(t, json.Unmarshal(body, &tampered))
	tampered.Data.Amount = 1
	tamperedBody, err := json.Marshal(&tampered)
	require.NoError(t, err)

	_, ok := VerifyWebhook(testChecksumKey, payload.Signature, tamperedBody)
	assert.False(t, ok)
}

func TestVerifyWebhookRejectsWrongKey(t *testing.T) {
	payload := samplePayload()
	body := signedWebhookBody(t, payload)

	_, ok := VerifyWebhook("another-key", payload.Signature, body)
	assert.False(t, ok)
}

func TestVerifyWebhookRejectsMissingPieces(t *testing.T) {
	payload := samplePayload()
	body := signedWebhookBody(t, payload)

	_, ok := VerifyWebhook(testChecksumKey, "", body)
	assert.False(t, ok)

	_, ok = VerifyWebhook(testChecksumKey, payload.Signature, nil)
	assert.False(t, ok)

	_, ok = VerifyWebhook(testChecksumKey, payload.Signature, []byte("{not json"))
	assert.False(t, ok)

	noData := []byte(`{"code":"00","desc":"ok","signature":"abc"}`)
	_, ok = VerifyWebhook(testChecksumKey, "abc", noData)
	assert.False(t, ok)
}

func TestSignCreatePaymentCanonicalOrder(t *testing.T) {
	a := SignCreatePayment(testChecksumKey, 250000, "https://x/cancel", "Booking abc", 42, "https://x/return")
	b := SignCreatePayment(testChecksumKey, 250000, "https://x/cancel", "Booking abc", 42, "https://x/return")
	assert.Equal(t, a, b)

	c := SignCreatePayment(testChecksumKey, 250001, "https://x/cancel", "Booking abc", 42, "https://x/return")
	assert.NotEqual(t, a, c)
}

func TestWebhookPayloadIsSuccess(t *testing.T) {
	payload := samplePayload()
	assert.True(t, payload.IsSuccess())

	failed := samplePayload()
	failed.Code = "01"
	failed.Success = false
	assert.False(t, failed.IsSuccess())

	innerFailed := samplePayload()
	innerFailed.Data.Code = "01"
	assert.False(t, innerFailed.IsSuccess())

	paidAlias := samplePayload()
	paidAlias.Data.Code = StatusPaid
	assert.True(t, paidAlias.IsSuccess())

	assert.False(t, (&WebhookPayload{Code: CodeSuccess}).IsSuccess())
}

func TestTruncateDescription(t *testing.T) {
	assert.Equal(t, "short", TruncateDescription("short"))

	long := "this description is definitely longer than the limit"
	got := TruncateDescription(long)
	assert.Len(t, got, DescriptionLimit)
	assert.Equal(t, long[:DescriptionLimit], got)
}
