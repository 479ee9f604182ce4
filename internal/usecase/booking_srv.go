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

type BookingService interface {
	CreateBooking(ctx context.Context, customerID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	GetCustomerBookings(ctx context.Context, customerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	CheckAvailability(ctx context.Context, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error)
	CancelBooking(ctx context.Context, customerID, bookingID string) error
}

type bookingService struct {
	repo    *repository.Repository
	refunds RefundService
	log     *zap.Logger
}

func NewBookingService(repo *repository.Repository, refunds RefundService, log *zap.Logger) BookingService {
	return &bookingService{
		repo:    repo,
		refunds: refunds,
		log:     log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, customerID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	customerUUID, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer ID format %s: %w", customerID, err)
	}

	condotelID, err := uuid.Parse(req.CondotelID)
	if err != nil {
		return nil, fmt.Errorf("invalid condotel ID format %s: %w", req.CondotelID, err)
	}

	startDate, endDate, err := parseStayRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	condotel, err := s.repo.Condotel.FindByID(ctx, condotelID)
	if err != nil {
		return nil, fmt.Errorf("check condotel: %w", err)
	}
	if condotel == nil {
		return nil, fmt.Errorf("condotel %s not found", req.CondotelID)
	}
	if condotel.Status != entity.CondotelStatusActive {
		return nil, fmt.Errorf("condotel %s is not available for booking", req.CondotelID)
	}

	// Advisory only. The authoritative overlap check runs under row locks
	// when the payment settles; a clash there cancels the booking.
	overlapping, err := s.repo.Booking.FindOverlapping(ctx, condotelID, uuid.Nil, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, fmt.Errorf("condotel is already booked for the selected dates")
	}

	nights := int(endDate.Sub(startDate).Hours() / 24)
	totalPrice := condotel.NightlyRate * float64(nights)

	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		CondotelID: condotelID,
		CustomerID: customerUUID,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     entity.BookingStatusPending,
	}

	// A voucher and a promotion never stack; the voucher wins.
	totalPrice, err = s.applyDiscount(ctx, booking, totalPrice, req.VoucherID, req.PromotionID)
	if err != nil {
		return nil, err
	}
	booking.TotalPrice = totalPrice

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("condotel_id", condotelID.String()),
		zap.Float64("total_price", booking.TotalPrice),
	)

	resp := response.BookingToResponse(booking, condotel.Name)
	return &resp, nil
}

func (s *bookingService) applyDiscount(ctx context.Context, booking *entity.Booking, price float64, voucherID, promotionID *string) (float64, error) {
	if voucherID != nil {
		id, err := uuid.Parse(*voucherID)
		if err != nil {
			return 0, fmt.Errorf("invalid voucher ID format %s: %w", *voucherID, err)
		}

		voucher, err := s.repo.Voucher.FindByID(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("check voucher: %w", err)
		}
		if voucher == nil {
			return 0, fmt.Errorf("voucher %s not found", *voucherID)
		}
		if !voucher.UsableAt(time.Now()) {
			return 0, fmt.Errorf("voucher %s is expired or exhausted", voucher.Code)
		}

		booking.VoucherID = &id
		return voucher.DiscountOn(price), nil
	}

	if promotionID != nil {
		id, err := uuid.Parse(*promotionID)
		if err != nil {
			return 0, fmt.Errorf("invalid promotion ID format %s: %w", *promotionID, err)
		}

		promotion, err := s.repo.Voucher.FindPromotionByID(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("check promotion: %w", err)
		}
		if promotion == nil {
			return 0, fmt.Errorf("promotion %s not found", *promotionID)
		}
		if !promotion.ActiveOn(booking.StartDate) {
			return 0, fmt.Errorf("promotion %s is not active for the booking dates", promotion.Name)
		}

		booking.PromotionID = &id
		return promotion.DiscountOn(price), nil
	}

	return price, nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	condotelName := ""
	if condotel, err := s.repo.Condotel.FindByID(ctx, booking.CondotelID); err == nil && condotel != nil {
		condotelName = condotel.Name
	}

	resp := response.BookingToResponse(booking, condotelName)
	return &resp, nil
}

func (s *bookingService) GetCustomerBookings(ctx context.Context, customerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	customerUUID, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer ID format %s: %w", customerID, err)
	}

	bookings, err := s.repo.Booking.FindByCustomerID(ctx, customerUUID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get customer bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByCustomerID(ctx, customerUUID)
	if err != nil {
		return nil, fmt.Errorf("count customer bookings: %w", err)
	}

	responses := make([]response.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		responses = append(responses, response.BookingToResponse(booking, ""))
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	condotelID, err := uuid.Parse(req.CondotelID)
	if err != nil {
		return nil, fmt.Errorf("invalid condotel ID format %s: %w", req.CondotelID, err)
	}

	startDate, endDate, err := parseStayRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	overlapping, err := s.repo.Booking.FindOverlapping(ctx, condotelID, uuid.Nil, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}

	return &response.AvailabilityResponse{
		CondotelID: req.CondotelID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Available:  len(overlapping) == 0,
	}, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, customerID, bookingID string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	if booking.CustomerID.String() != customerID {
		return fmt.Errorf("booking %s does not belong to customer", bookingID)
	}

	// A paid booking cancels through the refund workflow: the notice window
	// is checked there and a pending refund request opens for the full
	// amount. Bank details come later, when the admin confirms the transfer.
	if booking.Status == entity.BookingStatusConfirmed {
		refund, err := s.refunds.OpenForBooking(ctx, customerID, bookingID)
		if err != nil {
			return err
		}
		s.log.Info("Booking cancelled with refund request",
			zap.String("booking_id", bookingID),
			zap.String("refund_id", refund.ID),
		)
		return nil
	}

	if booking.Status != entity.BookingStatusPending {
		return fmt.Errorf("booking %s is already %s", bookingID, booking.Status)
	}

	updated, err := s.repo.Booking.UpdateStatus(ctx, id, entity.BookingStatusPending, entity.BookingStatusCancelled)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if !updated {
		return fmt.Errorf("booking %s is no longer pending", bookingID)
	}

	s.log.Info("Booking cancelled", zap.String("booking_id", bookingID))
	return nil
}

// parseStayRange parses and validates a [start, end) stay at date resolution.
func parseStayRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := utils.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %s: %w", start, err)
	}

	endDate, err := utils.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %s: %w", end, err)
	}

	if !endDate.After(startDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must be after start date")
	}
	if startDate.Before(utils.Today()) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date cannot be in the past")
	}

	return startDate, endDate, nil
}
