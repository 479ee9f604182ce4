package usecase

import (
	"context"
	"fmt"
	"time"

	"condotel-booking/internal/data/entity"
	"condotel-booking/internal/data/repository"
	"condotel-booking/internal/dto/response"
	"condotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PayoutService interface {
	// ConfirmPayout releases one booking's funds to its host. Fails with a
	// specific reason when any release condition does not hold.
	ConfirmPayout(ctx context.Context, bookingID string) (*response.PayoutItem, error)

	// ProcessEligible releases every booking that currently qualifies,
	// skipping (not aborting on) the ones that fail.
	ProcessEligible(ctx context.Context) (*response.PayoutBatchResponse, error)

	GetPendingPayouts(ctx context.Context) ([]response.PendingPayoutItem, error)
}

type payoutService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewPayoutService(repo *repository.Repository, config *utils.Config, log *zap.Logger) PayoutService {
	return &payoutService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "payout")),
	}
}

// payoutCutoff is the latest end date a booking may have and still be held.
func (s *payoutService) payoutCutoff() time.Time {
	return utils.Today().AddDate(0, 0, -s.config.Booking.PayoutHoldDays)
}

func (s *payoutService) ConfirmPayout(ctx context.Context, bookingID string) (*response.PayoutItem, error) {
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

	hostID, reason, err := s.checkEligibility(ctx, booking)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return nil, fmt.Errorf("booking %s not eligible for payout: %s", bookingID, reason)
	}

	paidAt := time.Now()
	updated, err := s.repo.Booking.MarkPaidToHost(ctx, id, paidAt)
	if err != nil {
		return nil, fmt.Errorf("mark booking paid to host: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("booking %s is already paid out", bookingID)
	}

	s.log.Info("Payout released",
		zap.String("booking_id", bookingID),
		zap.String("host_id", hostID.String()),
		zap.Float64("amount", booking.TotalPrice),
	)

	return &response.PayoutItem{
		BookingID: bookingID,
		HostID:    hostID.String(),
		Amount:    booking.TotalPrice,
		EndDate:   booking.EndDate.Format("2006-01-02"),
		PaidAt:    paidAt,
	}, nil
}

func (s *payoutService) ProcessEligible(ctx context.Context) (*response.PayoutBatchResponse, error) {
	candidates, err := s.repo.Booking.FindPayoutCandidates(ctx, s.payoutCutoff())
	if err != nil {
		return nil, fmt.Errorf("find payout candidates: %w", err)
	}

	batch := &response.PayoutBatchResponse{Items: []response.PayoutItem{}}
	for _, booking := range candidates {
		hostID, reason, err := s.checkEligibility(ctx, booking)
		if err != nil || reason != "" {
			if err != nil {
				s.log.Error("Skipping payout candidate",
					zap.Error(err),
					zap.String("booking_id", booking.ID.String()),
				)
			}
			continue
		}

		paidAt := time.Now()
		updated, err := s.repo.Booking.MarkPaidToHost(ctx, booking.ID, paidAt)
		if err != nil || !updated {
			if err != nil {
				s.log.Error("Failed to release payout",
					zap.Error(err),
					zap.String("booking_id", booking.ID.String()),
				)
			}
			continue
		}

		batch.ProcessedCount++
		batch.TotalAmount += booking.TotalPrice
		batch.Items = append(batch.Items, response.PayoutItem{
			BookingID: booking.ID.String(),
			HostID:    hostID.String(),
			Amount:    booking.TotalPrice,
			EndDate:   booking.EndDate.Format("2006-01-02"),
			PaidAt:    paidAt,
		})
	}

	s.log.Info("Payout batch processed",
		zap.Int("processed", batch.ProcessedCount),
		zap.Float64("total_amount", batch.TotalAmount),
	)

	return batch, nil
}

func (s *payoutService) GetPendingPayouts(ctx context.Context) ([]response.PendingPayoutItem, error) {
	candidates, err := s.repo.Booking.FindPayoutCandidates(ctx, s.payoutCutoff())
	if err != nil {
		return nil, fmt.Errorf("find payout candidates: %w", err)
	}

	items := make([]response.PendingPayoutItem, 0, len(candidates))
	for _, booking := range candidates {
		hostID, reason, err := s.checkEligibility(ctx, booking)
		if err != nil {
			return nil, err
		}

		item := response.PendingPayoutItem{
			BookingID: booking.ID.String(),
			Amount:    booking.TotalPrice,
			EndDate:   booking.EndDate.Format("2006-01-02"),
			Eligible:  reason == "",
			Blocker:   reason,
		}
		if hostID != uuid.Nil {
			item.HostID = hostID.String()
		}
		items = append(items, item)
	}

	return items, nil
}

// checkEligibility returns the booking's host and an empty reason when the
// funds can be released, or a human-readable blocker when they cannot.
func (s *payoutService) checkEligibility(ctx context.Context, booking *entity.Booking) (uuid.UUID, string, error) {
	if booking.IsPaidToHost {
		return uuid.Nil, "already paid out", nil
	}
	if booking.Status != entity.BookingStatusConfirmed && booking.Status != entity.BookingStatusCompleted {
		return uuid.Nil, fmt.Sprintf("booking status is %s", booking.Status), nil
	}
	if booking.EndDate.After(s.payoutCutoff()) {
		return uuid.Nil, fmt.Sprintf("hold period: stay ended less than %d days ago", s.config.Booking.PayoutHoldDays), nil
	}

	pendingRefund, err := s.repo.Refund.HasPendingByBookingID(ctx, booking.ID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("check pending refund: %w", err)
	}
	if pendingRefund {
		return uuid.Nil, "a refund request is pending", nil
	}

	condotel, err := s.repo.Condotel.FindByID(ctx, booking.CondotelID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("get condotel: %w", err)
	}
	if condotel == nil {
		return uuid.Nil, "condotel no longer exists", nil
	}

	hasAccount, err := s.repo.BankAccount.HasActiveByHostID(ctx, condotel.HostID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("check host bank account: %w", err)
	}
	if !hasAccount {
		return condotel.HostID, "host has no active bank account", nil
	}

	return condotel.HostID, "", nil
}
