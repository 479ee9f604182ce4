package usecase

import (
	"context"
	"fmt"
	"time"

	"condotel-booking/internal/data/entity"
	"condotel-booking/internal/data/repository"
	"condotel-booking/internal/dto/request"
	"condotel-booking/internal/dto/response"
	"condotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RefundService interface {
	// RequestRefund cancels a confirmed booking and opens a pending refund
	// for the full amount. The booking frees its dates immediately; the
	// money moves only after an admin confirms.
	RequestRefund(ctx context.Context, customerID string, req *request.CreateRefundRequest) (*response.RefundResponse, error)

	// OpenForBooking is the same workflow entered without bank details, for
	// a customer cancelling a paid booking outright. The admin collects the
	// transfer details before confirming.
	OpenForBooking(ctx context.Context, customerID, bookingID string) (*response.RefundResponse, error)

	GetRefundByID(ctx context.Context, refundID string) (*response.RefundResponse, error)
	ListRefundRequests(ctx context.Context, req *request.ListRefundsRequest) (*response.PaginatedResponse[response.RefundResponse], error)

	// ConfirmRefund mints a settlement payment link for a pending request.
	// The request stays pending until the gateway reports the transfer.
	ConfirmRefund(ctx context.Context, refundID string) (*response.ConfirmRefundResponse, error)

	RejectRefund(ctx context.Context, refundID string, req *request.RejectRefundRequest) (*response.RefundResponse, error)
}

type refundService struct {
	repo     *repository.Repository
	payments PaymentService
	config   *utils.Config
	log      *zap.Logger
}

func NewRefundService(repo *repository.Repository, payments PaymentService, config *utils.Config, log *zap.Logger) RefundService {
	return &refundService{
		repo:     repo,
		payments: payments,
		config:   config,
		log:      log.With(zap.String("service", "refund")),
	}
}

func (s *refundService) RequestRefund(ctx context.Context, customerID string, req *request.CreateRefundRequest) (*response.RefundResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	refund, err := s.open(ctx, customerID, req.BookingID, req.BankCode, req.AccountNumber, req.AccountHolder, req.Reason)
	if err != nil {
		return nil, err
	}

	resp := response.RefundToResponse(refund)
	return &resp, nil
}

func (s *refundService) OpenForBooking(ctx context.Context, customerID, bookingID string) (*response.RefundResponse, error) {
	refund, err := s.open(ctx, customerID, bookingID, "", "", "", nil)
	if err != nil {
		return nil, err
	}

	resp := response.RefundToResponse(refund)
	return &resp, nil
}

func (s *refundService) open(ctx context.Context, customerID, rawBookingID, bankCode, accountNumber, accountHolder string, reason *string) (*entity.RefundRequest, error) {
	customerUUID, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer ID format %s: %w", customerID, err)
	}

	bookingID, err := uuid.Parse(rawBookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", rawBookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", rawBookingID)
	}
	if booking.CustomerID != customerUUID {
		return nil, fmt.Errorf("booking %s does not belong to customer", rawBookingID)
	}
	if booking.Status != entity.BookingStatusConfirmed {
		return nil, fmt.Errorf("only confirmed bookings can be refunded")
	}

	// Refunds close N days before check-in. Both sides are whole dates, so
	// a check-in exactly N days from today is still inside the window.
	cutoff := utils.Today().AddDate(0, 0, s.config.Booking.RefundNoticeDays)
	if booking.StartDate.Before(cutoff) {
		return nil, fmt.Errorf("refund window closed: check-in is less than %d days away", s.config.Booking.RefundNoticeDays)
	}

	pending, err := s.repo.Refund.HasPendingByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("check pending refund: %w", err)
	}
	if pending {
		return nil, fmt.Errorf("booking %s already has a pending refund request", rawBookingID)
	}

	// Free the dates right away so the unit can be rebooked while the
	// transfer is pending.
	updated, err := s.repo.Booking.UpdateStatus(ctx, bookingID, entity.BookingStatusConfirmed, entity.BookingStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel booking for refund: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("booking %s is no longer confirmed", rawBookingID)
	}

	refund := &entity.RefundRequest{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		BookingID:     bookingID,
		CustomerID:    customerUUID,
		RefundAmount:  booking.TotalPrice,
		BankCode:      bankCode,
		AccountNumber: accountNumber,
		AccountHolder: accountHolder,
		Status:        entity.RefundStatusPending,
		Reason:        reason,
	}

	if err := s.repo.Refund.Create(ctx, refund); err != nil {
		return nil, fmt.Errorf("create refund request: %w", err)
	}

	s.log.Info("Refund requested",
		zap.String("refund_id", refund.ID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.Float64("amount", refund.RefundAmount),
	)

	return refund, nil
}

func (s *refundService) GetRefundByID(ctx context.Context, refundID string) (*response.RefundResponse, error) {
	id, err := uuid.Parse(refundID)
	if err != nil {
		return nil, fmt.Errorf("invalid refund ID format %s: %w", refundID, err)
	}

	refund, err := s.repo.Refund.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get refund request: %w", err)
	}
	if refund == nil {
		return nil, fmt.Errorf("refund request %s not found", refundID)
	}

	resp := response.RefundToResponse(refund)
	return &resp, nil
}

func (s *refundService) ListRefundRequests(ctx context.Context, req *request.ListRefundsRequest) (*response.PaginatedResponse[response.RefundResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	filter := repository.RefundFilter{
		Status: entity.RefundStatus(req.Status),
		Search: req.Search,
		Limit:  req.Limit(),
		Offset: req.Offset(),
	}
	if req.From != "" {
		from, err := utils.ParseDate(req.From)
		if err != nil {
			return nil, fmt.Errorf("invalid from date %s: %w", req.From, err)
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := utils.ParseDate(req.To)
		if err != nil {
			return nil, fmt.Errorf("invalid to date %s: %w", req.To, err)
		}
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	refunds, total, err := s.repo.Refund.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list refund requests: %w", err)
	}

	responses := make([]response.RefundResponse, 0, len(refunds))
	for _, refund := range refunds {
		responses = append(responses, response.RefundToResponse(refund))
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}

func (s *refundService) ConfirmRefund(ctx context.Context, refundID string) (*response.ConfirmRefundResponse, error) {
	id, err := uuid.Parse(refundID)
	if err != nil {
		return nil, fmt.Errorf("invalid refund ID format %s: %w", refundID, err)
	}

	refund, err := s.repo.Refund.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get refund request: %w", err)
	}
	if refund == nil {
		return nil, fmt.Errorf("refund request %s not found", refundID)
	}
	if refund.Status != entity.RefundStatusPending {
		return nil, fmt.Errorf("refund request %s is already %s", refundID, refund.Status)
	}
	if !refund.HasBankInfo() {
		return nil, fmt.Errorf("refund request %s has no bank details", refundID)
	}

	link, err := s.payments.CreateOrderLink(ctx, &entity.PaymentOrder{
		Kind:            entity.OrderKindRefundSettlement,
		RefundRequestID: &refund.ID,
	}, int(refund.RefundAmount), fmt.Sprintf("Refund %s", refund.ID.String()[:8]))
	if err != nil {
		return nil, fmt.Errorf("create refund settlement link: %w", err)
	}

	s.log.Info("Refund settlement link created",
		zap.String("refund_id", refundID),
		zap.Int64("order_code", link.OrderCode),
	)

	return &response.ConfirmRefundResponse{
		RefundResponse: response.RefundToResponse(refund),
		OrderCode:      link.OrderCode,
		CheckoutURL:    link.CheckoutURL,
	}, nil
}

func (s *refundService) RejectRefund(ctx context.Context, refundID string, req *request.RejectRefundRequest) (*response.RefundResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(refundID)
	if err != nil {
		return nil, fmt.Errorf("invalid refund ID format %s: %w", refundID, err)
	}

	updated, err := s.repo.Refund.UpdateStatus(ctx, id, entity.RefundStatusPending, entity.RefundStatusRejected, &req.Reason)
	if err != nil {
		return nil, fmt.Errorf("reject refund request: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("refund request %s is not pending", refundID)
	}

	refund, err := s.repo.Refund.FindByID(ctx, id)
	if err != nil || refund == nil {
		return nil, fmt.Errorf("get refund request after rejection: %w", err)
	}

	s.log.Info("Refund rejected", zap.String("refund_id", refundID))

	resp := response.RefundToResponse(refund)
	return &resp, nil
}
