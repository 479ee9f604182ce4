package entity

import (
	"time"
)

type VoucherStatus string

const (
	VoucherStatusActive   VoucherStatus = "active"
	VoucherStatusInactive VoucherStatus = "inactive"
)

// Voucher is a bounded-use discount code. UsedCount moves only through the
// guarded ledger statements in the voucher repository: +1 on confirmed
// payment, -1 on settled refund, always 0 <= UsedCount <= MaxUses.
type Voucher struct {
	Base
	Code               string        `db:"code"`
	DiscountPercentage *float64      `db:"discount_percentage"`
	DiscountAmount     *float64      `db:"discount_amount"`
	MaxUses            int           `db:"max_uses"`
	UsedCount          int           `db:"used_count"`
	ExpiryDate         time.Time     `db:"expiry_date"`
	Status             VoucherStatus `db:"status"`
}

// UsableAt reports whether the voucher can be attached to a new booking.
func (v *Voucher) UsableAt(now time.Time) bool {
	if v.Status != VoucherStatusActive {
		return false
	}
	if now.After(v.ExpiryDate) {
		return false
	}
	return v.UsedCount < v.MaxUses
}

// DiscountOn applies the voucher to a price. Percentage wins over fixed
// amount when both are set; the result never drops below zero.
func (v *Voucher) DiscountOn(price float64) float64 {
	discounted := price
	switch {
	case v.DiscountPercentage != nil:
		discounted = price * (1 - *v.DiscountPercentage/100)
	case v.DiscountAmount != nil:
		discounted = price - *v.DiscountAmount
	}

	if discounted < 0 {
		return 0
	}
	return discounted
}
