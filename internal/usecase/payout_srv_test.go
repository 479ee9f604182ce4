package usecase

import (
	"context"
	"testing"

	"condotel-booking/internal/data/entity"
	"condotel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPayoutService(f *fixture) PayoutService {
	return NewPayoutService(f.repo, f.config, zap.NewNop())
}

// seedPayableBooking creates a completed stay that ended daysAgo, for a host
// with an active bank account.
func seedPayableBooking(f *fixture, daysAgo int) (*entity.Booking, *entity.Condotel) {
	condotel := seedCondotel(f, 250000)
	end := utils.Today().AddDate(0, 0, -daysAgo)
	booking := seedBooking(f, condotel.ID, entity.BookingStatusCompleted, end.AddDate(0, 0, -3), end)

	account := &entity.HostBankAccount{
		HostID:        condotel.HostID,
		BankCode:      "VCB",
		AccountNumber: "111222333",
		AccountHolder: "HOST",
		IsActive:      true,
	}
	account.ID = uuid.New()
	f.banks.accounts[condotel.HostID] = account
	return booking, condotel
}

func TestConfirmPayout(t *testing.T) {
	f := newFixture() // PayoutHoldDays = 15
	svc := newPayoutService(f)

	booking, condotel := seedPayableBooking(f, 16)

	item, err := svc.ConfirmPayout(context.Background(), booking.ID.String())

	require.NoError(t, err)
	assert.Equal(t, condotel.HostID.String(), item.HostID)
	assert.Equal(t, booking.TotalPrice, item.Amount)

	stored, _ := f.bookings.FindByID(context.Background(), booking.ID)
	assert.True(t, stored.IsPaidToHost)
	require.NotNil(t, stored.PaidToHostAt)
}

func TestConfirmPayout_Blockers(t *testing.T) {
	f := newFixture()
	svc := newPayoutService(f)

	t.Run("hold period still running", func(t *testing.T) {
		booking, _ := seedPayableBooking(f, 14)
		_, err := svc.ConfirmPayout(context.Background(), booking.ID.String())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hold period")
	})

	t.Run("stay ended exactly at the cutoff is released", func(t *testing.T) {
		booking, _ := seedPayableBooking(f, 15)
		_, err := svc.ConfirmPayout(context.Background(), booking.ID.String())
		assert.NoError(t, err)
	})

	t.Run("pending refund freezes the payout", func(t *testing.T) {
		booking, _ := seedPayableBooking(f, 20)
		refund := &entity.RefundRequest{
			BookingID:  booking.ID,
			CustomerID: booking.CustomerID,
			Status:     entity.RefundStatusPending,
		}
		refund.ID = uuid.New()
		f.refunds.refunds[refund.ID] = refund

		_, err := svc.ConfirmPayout(context.Background(), booking.ID.String())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refund request is pending")
	})

	t.Run("host without an active bank account", func(t *testing.T) {
		booking, condotel := seedPayableBooking(f, 20)
		delete(f.banks.accounts, condotel.HostID)

		_, err := svc.ConfirmPayout(context.Background(), booking.ID.String())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no active bank account")
	})

	t.Run("cancelled booking never pays out", func(t *testing.T) {
		booking, _ := seedPayableBooking(f, 20)
		f.bookings.bookings[booking.ID].Status = entity.BookingStatusCancelled

		_, err := svc.ConfirmPayout(context.Background(), booking.ID.String())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "booking status is cancelled")
	})

	t.Run("double confirm", func(t *testing.T) {
		booking, _ := seedPayableBooking(f, 20)

		_, err := svc.ConfirmPayout(context.Background(), booking.ID.String())
		require.NoError(t, err)

		_, err = svc.ConfirmPayout(context.Background(), booking.ID.String())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already paid out")
	})
}

func TestProcessEligible(t *testing.T) {
	f := newFixture()
	svc := newPayoutService(f)

	eligible1, _ := seedPayableBooking(f, 20)
	eligible2, _ := seedPayableBooking(f, 30)

	// Blocked: no bank account.
	blocked, blockedCondotel := seedPayableBooking(f, 20)
	delete(f.banks.accounts, blockedCondotel.HostID)

	// Not a candidate at all: still inside the hold window.
	tooRecent, _ := seedPayableBooking(f, 5)

	batch, err := svc.ProcessEligible(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, batch.ProcessedCount)
	assert.Equal(t, eligible1.TotalPrice+eligible2.TotalPrice, batch.TotalAmount)
	assert.Len(t, batch.Items, 2)

	for _, id := range []uuid.UUID{eligible1.ID, eligible2.ID} {
		stored, _ := f.bookings.FindByID(context.Background(), id)
		assert.True(t, stored.IsPaidToHost)
	}
	for _, id := range []uuid.UUID{blocked.ID, tooRecent.ID} {
		stored, _ := f.bookings.FindByID(context.Background(), id)
		assert.False(t, stored.IsPaidToHost)
	}

	// A second run finds nothing left to release.
	batch, err = svc.ProcessEligible(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, batch.ProcessedCount)
}

func TestGetPendingPayouts(t *testing.T) {
	f := newFixture()
	svc := newPayoutService(f)

	eligible, _ := seedPayableBooking(f, 20)
	blocked, blockedCondotel := seedPayableBooking(f, 20)
	delete(f.banks.accounts, blockedCondotel.HostID)

	items, err := svc.GetPendingPayouts(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[string]bool{}
	for _, item := range items {
		byID[item.BookingID] = item.Eligible
		if !item.Eligible {
			assert.NotEmpty(t, item.Blocker)
		}
	}
	assert.True(t, byID[eligible.ID.String()])
	assert.False(t, byID[blocked.ID.String()])
}
