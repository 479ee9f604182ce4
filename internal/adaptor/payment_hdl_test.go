package adaptor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"condotel-booking/internal/data/entity"
	"condotel-booking/internal/dto/request"
	"condotel-booking/internal/dto/response"
	"condotel-booking/internal/usecase"
	"condotel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubPaymentService scripts the service layer so handler behavior can be
// tested in isolation.
type stubPaymentService struct {
	webhookOutcome usecase.EventOutcome
	webhookErr     error
	webhookBodies  [][]byte

	returnRedirect string
	returnErr      error
	returnCalls    []int64

	link    *response.PaymentLinkResponse
	linkErr error
}

func (s *stubPaymentService) CreatePaymentLink(ctx context.Context, customerID string, req *request.CreatePaymentLinkRequest) (*response.PaymentLinkResponse, error) {
	return s.link, s.linkErr
}

func (s *stubPaymentService) CreateOrderLink(ctx context.Context, order *entity.PaymentOrder, amount int, description string) (*response.PaymentLinkResponse, error) {
	return s.link, s.linkErr
}

func (s *stubPaymentService) GetPaymentStatus(ctx context.Context, orderCode int64) (*response.PaymentStatusResponse, error) {
	return nil, usecase.ErrUnknownOrderCode
}

func (s *stubPaymentService) CancelPaymentLink(ctx context.Context, orderCode int64, reason string) error {
	return nil
}

func (s *stubPaymentService) HandleWebhook(ctx context.Context, body []byte) (usecase.EventOutcome, error) {
	s.webhookBodies = append(s.webhookBodies, body)
	return s.webhookOutcome, s.webhookErr
}

func (s *stubPaymentService) HandleReturn(ctx context.Context, orderCode int64, cancelled bool) (string, error) {
	s.returnCalls = append(s.returnCalls, orderCode)
	return s.returnRedirect, s.returnErr
}

func (s *stubPaymentService) ApplyEvent(ctx context.Context, event usecase.PaymentEvent) (usecase.EventOutcome, error) {
	return s.webhookOutcome, s.webhookErr
}

func TestWebhookHandler(t *testing.T) {
	t.Run("valid delivery is acknowledged with the outcome", func(t *testing.T) {
		stub := &stubPaymentService{webhookOutcome: usecase.OutcomeConfirmed}
		handler := NewPaymentHandler(stub, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewBufferString(`{"code":"00"}`))
		rec := httptest.NewRecorder()
		handler.Webhook(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, stub.webhookBodies, 1)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "confirmed", body["message"])
	})

	t.Run("bad signature is a 400", func(t *testing.T) {
		stub := &stubPaymentService{
			webhookOutcome: usecase.OutcomeIgnored,
			webhookErr:     fmt.Errorf("invalid webhook signature"),
		}
		handler := NewPaymentHandler(stub, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()
		handler.Webhook(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown order code is acknowledged so the gateway stops retrying", func(t *testing.T) {
		stub := &stubPaymentService{
			webhookOutcome: usecase.OutcomeIgnored,
			webhookErr:     fmt.Errorf("resolve order code: %w", usecase.ErrUnknownOrderCode),
		}
		handler := NewPaymentHandler(stub, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewBufferString(`{"code":"00"}`))
		rec := httptest.NewRecorder()
		handler.Webhook(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("reconciliation failure is a 500 so the gateway retries", func(t *testing.T) {
		stub := &stubPaymentService{
			webhookOutcome: usecase.OutcomeIgnored,
			webhookErr:     fmt.Errorf("begin reconciliation transaction: connection refused"),
		}
		handler := NewPaymentHandler(stub, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewBufferString(`{"code":"00"}`))
		rec := httptest.NewRecorder()
		handler.Webhook(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestReturnHandler(t *testing.T) {
	t.Run("redirects the browser to the frontend result page", func(t *testing.T) {
		stub := &stubPaymentService{returnRedirect: "https://front.example/payment/result?orderCode=42&outcome=confirmed"}
		handler := NewPaymentHandler(stub, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/return?orderCode=42", nil)
		rec := httptest.NewRecorder()
		handler.Return(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, stub.returnRedirect, rec.Header().Get("Location"))
		assert.Equal(t, []int64{42}, stub.returnCalls)
	})

	t.Run("still redirects when reconciliation errors", func(t *testing.T) {
		stub := &stubPaymentService{
			returnRedirect: "https://front.example/payment/result?status=unknown",
			returnErr:      usecase.ErrUnknownOrderCode,
		}
		handler := NewPaymentHandler(stub, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/return?orderCode=42&cancelled=true", nil)
		rec := httptest.NewRecorder()
		handler.Return(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, stub.returnRedirect, rec.Header().Get("Location"))
	})

	t.Run("garbage order code never reaches the service", func(t *testing.T) {
		stub := &stubPaymentService{}
		handler := NewPaymentHandler(stub, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/return?orderCode=abc", nil)
		rec := httptest.NewRecorder()
		handler.Return(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, stub.returnCalls)
	})
}

func TestCreatePaymentLinkHandler(t *testing.T) {
	t.Run("requires an authenticated user", func(t *testing.T) {
		handler := NewPaymentHandler(&stubPaymentService{}, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/link", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()
		handler.CreatePaymentLink(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns the minted link", func(t *testing.T) {
		stub := &stubPaymentService{
			link: &response.PaymentLinkResponse{
				OrderCode:   123456,
				CheckoutURL: "https://pay.example/123456",
				Amount:      500000,
			},
		}
		handler := NewPaymentHandler(stub, zap.NewNop())

		payload, _ := json.Marshal(request.CreatePaymentLinkRequest{BookingID: uuid.New().String()})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/link", bytes.NewBuffer(payload))
		req = req.WithContext(utils.SetUserContext(req.Context(), uuid.New(), utils.RoleTenant))
		rec := httptest.NewRecorder()
		handler.CreatePaymentLink(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}
