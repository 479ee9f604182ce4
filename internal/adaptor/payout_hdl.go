package adaptor

import (
	"net/http"
	"strings"

	"condotel-booking/internal/usecase"
	"condotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PayoutHandler struct {
	service usecase.PayoutService
	log     *zap.Logger
}

func NewPayoutHandler(service usecase.PayoutService, log *zap.Logger) *PayoutHandler {
	return &PayoutHandler{
		service: service,
		log:     log.With(zap.String("handler", "payout")),
	}
}

// GetPendingPayouts handles GET /api/v1/admin/payouts (admin)
func (h *PayoutHandler) GetPendingPayouts(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetPendingPayouts(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get pending payouts")
		return
	}

	utils.ResponseSuccess(w, "success", items)
}

// ConfirmPayout handles POST /api/v1/admin/payouts/{bookingId} (admin)
func (h *PayoutHandler) ConfirmPayout(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	item, err := h.service.ConfirmPayout(r.Context(), bookingID)
	if err != nil {
		h.handleServiceError(w, err, "confirm payout")
		return
	}

	utils.ResponseSuccess(w, "success", item)
}

// ProcessPayouts handles POST /api/v1/admin/payouts/process (admin)
func (h *PayoutHandler) ProcessPayouts(w http.ResponseWriter, r *http.Request) {
	batch, err := h.service.ProcessEligible(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "process payouts")
		return
	}

	utils.ResponseSuccess(w, "success", batch)
}

func (h *PayoutHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "invalid"):
		utils.ResponseBadRequest(w, errMsg, nil)

	case strings.Contains(errMsg, "not eligible"), strings.Contains(errMsg, "already paid"):
		h.log.Warn(operation+" failed - not eligible",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
