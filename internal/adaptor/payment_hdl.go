package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"condotel-booking/internal/dto/request"
	"condotel-booking/internal/usecase"
	"condotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// CreatePaymentLink handles POST /api/v1/payments/link (protected)
func (h *PaymentHandler) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreatePaymentLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	link, err := h.service.CreatePaymentLink(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create payment link")
		return
	}

	utils.ResponseCreated(w, "success", link)
}

// GetPaymentStatus handles GET /api/v1/payments/{orderCode} (protected)
func (h *PaymentHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	orderCode, err := strconv.ParseInt(chi.URLParam(r, "orderCode"), 10, 64)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid order code", nil)
		return
	}

	status, err := h.service.GetPaymentStatus(r.Context(), orderCode)
	if err != nil {
		h.handleServiceError(w, err, "get payment status")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

// CancelPaymentLink handles PUT /api/v1/payments/{orderCode}/cancel (protected)
func (h *PaymentHandler) CancelPaymentLink(w http.ResponseWriter, r *http.Request) {
	orderCode, err := strconv.ParseInt(chi.URLParam(r, "orderCode"), 10, 64)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid order code", nil)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.service.CancelPaymentLink(r.Context(), orderCode, req.Reason); err != nil {
		h.handleServiceError(w, err, "cancel payment link")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// Webhook handles POST /api/v1/payments/webhook (public, signed)
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.ResponseBadRequest(w, "Cannot read request body", nil)
		return
	}

	outcome, err := h.service.HandleWebhook(r.Context(), body)
	if err != nil {
		if strings.Contains(err.Error(), "signature") || strings.Contains(err.Error(), "malformed") {
			h.log.Warn("Rejected webhook delivery", zap.Error(err))
			utils.ResponseBadRequest(w, "Invalid webhook payload", nil)
			return
		}
		if errors.Is(err, usecase.ErrUnknownOrderCode) {
			// Acknowledge so the gateway stops retrying a code we never
			// issued.
			utils.ResponseSuccess(w, "ignored", nil)
			return
		}
		h.log.Error("Webhook processing failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, string(outcome), nil)
}

// Return handles GET /api/v1/payments/return (public). The gateway redirects
// the customer's browser here after checkout.
func (h *PaymentHandler) Return(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	orderCode, err := strconv.ParseInt(query.Get("orderCode"), 10, 64)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid order code", nil)
		return
	}

	cancelled := query.Get("cancelled") == "true" || query.Get("cancel") == "true" ||
		strings.EqualFold(query.Get("status"), "CANCELLED")

	redirect, err := h.service.HandleReturn(r.Context(), orderCode, cancelled)
	if err != nil {
		h.log.Warn("Payment return reconciliation failed",
			zap.Error(err),
			zap.Int64("order_code", orderCode),
		)
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}

func (h *PaymentHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case errors.Is(err, usecase.ErrUnknownOrderCode), strings.Contains(errMsg, "not found"):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "validation failed"), strings.Contains(errMsg, "invalid"):
		h.log.Warn(operation+" failed - bad input",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	case strings.Contains(errMsg, "does not belong"):
		utils.ResponseForbidden(w, errMsg)

	case strings.Contains(errMsg, "below the gateway minimum"), strings.Contains(errMsg, "not awaiting payment"):
		h.log.Warn(operation+" failed - invalid state",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	case strings.Contains(errMsg, "after") && strings.Contains(errMsg, "attempts"):
		h.log.Error(operation+" failed - gateway exhausted retries",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseServiceUnavailable(w, "Payment gateway unavailable, try again later")

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
