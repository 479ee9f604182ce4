package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"condotel-booking/internal/dto/request"
	"condotel-booking/internal/usecase"
	"condotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RefundHandler struct {
	service usecase.RefundService
	log     *zap.Logger
}

func NewRefundHandler(service usecase.RefundService, log *zap.Logger) *RefundHandler {
	return &RefundHandler{
		service: service,
		log:     log.With(zap.String("handler", "refund")),
	}
}

// RequestRefund handles POST /api/v1/refunds (protected)
func (h *RefundHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	refund, err := h.service.RequestRefund(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "request refund")
		return
	}

	utils.ResponseCreated(w, "success", refund)
}

// GetRefundByID handles GET /api/v1/admin/refunds/{id} (admin)
func (h *RefundHandler) GetRefundByID(w http.ResponseWriter, r *http.Request) {
	refundID := chi.URLParam(r, "id")
	if refundID == "" {
		utils.ResponseBadRequest(w, "Refund ID is required", nil)
		return
	}

	refund, err := h.service.GetRefundByID(r.Context(), refundID)
	if err != nil {
		h.handleServiceError(w, err, "get refund by ID")
		return
	}

	utils.ResponseSuccess(w, "success", refund)
}

// ListRefunds handles GET /api/v1/admin/refunds (admin)
func (h *RefundHandler) ListRefunds(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.ListRefundsRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 20),
		},
		Status: query.Get("status"),
		Search: query.Get("search"),
		From:   query.Get("from"),
		To:     query.Get("to"),
	}

	refunds, err := h.service.ListRefundRequests(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "list refunds")
		return
	}

	utils.ResponseSuccess(w, "success", refunds)
}

// ConfirmRefund handles POST /api/v1/admin/refunds/{id}/confirm (admin)
func (h *RefundHandler) ConfirmRefund(w http.ResponseWriter, r *http.Request) {
	refundID := chi.URLParam(r, "id")
	if refundID == "" {
		utils.ResponseBadRequest(w, "Refund ID is required", nil)
		return
	}

	result, err := h.service.ConfirmRefund(r.Context(), refundID)
	if err != nil {
		h.handleServiceError(w, err, "confirm refund")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// RejectRefund handles POST /api/v1/admin/refunds/{id}/reject (admin)
func (h *RefundHandler) RejectRefund(w http.ResponseWriter, r *http.Request) {
	refundID := chi.URLParam(r, "id")
	if refundID == "" {
		utils.ResponseBadRequest(w, "Refund ID is required", nil)
		return
	}

	var req request.RejectRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	refund, err := h.service.RejectRefund(r.Context(), refundID, &req)
	if err != nil {
		h.handleServiceError(w, err, "reject refund")
		return
	}

	utils.ResponseSuccess(w, "success", refund)
}

func (h *RefundHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
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

	case strings.Contains(errMsg, "already has a pending"):
		h.log.Warn(operation+" failed - duplicate request",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseConflict(w, errMsg)

	case strings.Contains(errMsg, "window closed"),
		strings.Contains(errMsg, "only confirmed"),
		strings.Contains(errMsg, "is already"),
		strings.Contains(errMsg, "is not pending"),
		strings.Contains(errMsg, "no bank details"),
		strings.Contains(errMsg, "no longer"):
		h.log.Warn(operation+" failed - invalid state",
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
