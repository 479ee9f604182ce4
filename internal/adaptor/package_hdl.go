package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"condotel-booking/internal/dto/request"
	"condotel-booking/internal/usecase"
	"condotel-booking/pkg/utils"

	"go.uber.org/zap"
)

type PackageHandler struct {
	service usecase.PackageService
	log     *zap.Logger
}

func NewPackageHandler(service usecase.PackageService, log *zap.Logger) *PackageHandler {
	return &PackageHandler{
		service: service,
		log:     log.With(zap.String("handler", "package")),
	}
}

// ListPackages handles GET /api/v1/packages (public)
func (h *PackageHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.service.ListPackages(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list packages")
		return
	}

	utils.ResponseSuccess(w, "success", packages)
}

// PurchasePackage handles POST /api/v1/host/packages (host)
func (h *PackageHandler) PurchasePackage(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.PurchasePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	purchase, err := h.service.PurchasePackage(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "purchase package")
		return
	}

	utils.ResponseCreated(w, "success", purchase)
}

// GetMySubscriptions handles GET /api/v1/host/packages (host)
func (h *PackageHandler) GetMySubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	subs, err := h.service.GetHostSubscriptions(r.Context(), userID.String())
	if err != nil {
		h.handleServiceError(w, err, "get host subscriptions")
		return
	}

	utils.ResponseSuccess(w, "success", subs)
}

func (h *PackageHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "validation failed"), strings.Contains(errMsg, "invalid"):
		utils.ResponseBadRequest(w, errMsg, nil)

	case strings.Contains(errMsg, "already has an active"):
		utils.ResponseConflict(w, errMsg)

	case strings.Contains(errMsg, "not for sale"):
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
