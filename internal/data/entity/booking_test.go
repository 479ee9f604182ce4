package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{"pending to confirmed", BookingStatusPending, BookingStatusConfirmed, true},
		{"pending to cancelled", BookingStatusPending, BookingStatusCancelled, true},
		{"confirmed to completed", BookingStatusConfirmed, BookingStatusCompleted, true},
		{"confirmed to cancelled", BookingStatusConfirmed, BookingStatusCancelled, true},
		{"pending to completed", BookingStatusPending, BookingStatusCompleted, false},
		{"cancelled to confirmed", BookingStatusCancelled, BookingStatusConfirmed, false},
		{"cancelled to pending", BookingStatusCancelled, BookingStatusPending, false},
		{"completed to cancelled", BookingStatusCompleted, BookingStatusCancelled, false},
		{"confirmed to pending", BookingStatusConfirmed, BookingStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestBookingStatusIsTerminal(t *testing.T) {
	assert.False(t, BookingStatusPending.IsTerminal())
	assert.False(t, BookingStatusConfirmed.IsTerminal())
	assert.True(t, BookingStatusCompleted.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
}

func TestBookingOverlaps(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC)
	}

	booking := Booking{StartDate: day(10), EndDate: day(15)}

	tests := []struct {
		name     string
		start    int
		end      int
		overlaps bool
	}{
		{"identical range", 10, 15, true},
		{"contained within", 11, 13, true},
		{"straddles start", 8, 11, true},
		{"straddles end", 14, 18, true},
		{"checkout day is free", 15, 18, false},
		{"ends on checkin day", 5, 10, false},
		{"entirely before", 1, 5, false},
		{"entirely after", 20, 25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, booking.Overlaps(day(tt.start), day(tt.end)))
		})
	}
}

func TestBookingNights(t *testing.T) {
	booking := Booking{
		StartDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 3, booking.Nights())
}

func TestVoucherUsableAt(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	voucher := Voucher{
		Status:     VoucherStatusActive,
		MaxUses:    2,
		UsedCount:  0,
		ExpiryDate: now.AddDate(0, 1, 0),
	}
	assert.True(t, voucher.UsableAt(now))

	exhausted := voucher
	exhausted.UsedCount = 2
	assert.False(t, exhausted.UsableAt(now))

	expired := voucher
	expired.ExpiryDate = now.AddDate(0, 0, -1)
	assert.False(t, expired.UsableAt(now))

	inactive := voucher
	inactive.Status = VoucherStatusInactive
	assert.False(t, inactive.UsableAt(now))
}

func TestVoucherDiscountOn(t *testing.T) {
	pct := 20.0
	amt := 50000.0

	percentage := Voucher{DiscountPercentage: &pct}
	assert.InDelta(t, 160000, percentage.DiscountOn(200000), 0.001)

	fixed := Voucher{DiscountAmount: &amt}
	assert.InDelta(t, 150000, fixed.DiscountOn(200000), 0.001)

	// Percentage wins when both are set.
	both := Voucher{DiscountPercentage: &pct, DiscountAmount: &amt}
	assert.InDelta(t, 160000, both.DiscountOn(200000), 0.001)

	// Fixed discount never goes below zero.
	big := 300000.0
	floor := Voucher{DiscountAmount: &big}
	assert.Equal(t, 0.0, floor.DiscountOn(200000))

	none := Voucher{}
	assert.InDelta(t, 200000, none.DiscountOn(200000), 0.001)
}

func TestRefundStatusTransitions(t *testing.T) {
	assert.True(t, RefundStatusPending.CanTransition(RefundStatusRefunded))
	assert.True(t, RefundStatusPending.CanTransition(RefundStatusRejected))
	assert.False(t, RefundStatusRefunded.CanTransition(RefundStatusPending))
	assert.False(t, RefundStatusRejected.CanTransition(RefundStatusRefunded))
}

func TestPromotionActiveOn(t *testing.T) {
	promo := Promotion{
		Status:    PromotionStatusActive,
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, promo.ActiveOn(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, promo.ActiveOn(promo.StartDate))
	assert.True(t, promo.ActiveOn(promo.EndDate))
	assert.False(t, promo.ActiveOn(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))

	promo.Status = PromotionStatusInactive
	assert.False(t, promo.ActiveOn(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)))
}
