package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// bookingTransitions is the closed transition table. Completed and Cancelled
// are terminal; nothing ever leaves them.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// CanTransition reports whether moving from s to target is allowed.
func (s BookingStatus) CanTransition(target BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s admits no further transitions.
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Booking reserves a condotel for [StartDate, EndDate) — end exclusive, date
// resolution. A Pending booking does not occupy its date range; only
// Confirmed and Completed bookings do.
type Booking struct {
	Base
	CondotelID   uuid.UUID     `db:"condotel_id"`
	CustomerID   uuid.UUID     `db:"customer_id"`
	StartDate    time.Time     `db:"start_date"`
	EndDate      time.Time     `db:"end_date"`
	TotalPrice   float64       `db:"total_price"`
	Status       BookingStatus `db:"status"`
	VoucherID    *uuid.UUID    `db:"voucher_id"`
	PromotionID  *uuid.UUID    `db:"promotion_id"`
	IsPaidToHost bool          `db:"is_paid_to_host"`
	PaidToHostAt *time.Time    `db:"paid_to_host_at"`
}

// Nights returns the number of nights covered by the booking.
func (b *Booking) Nights() int {
	return int(b.EndDate.Sub(b.StartDate).Hours() / 24)
}

// Overlaps reports whether [start, end) intersects the booking's range.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndDate) && end.After(b.StartDate)
}
