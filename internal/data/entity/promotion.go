package entity

import (
	"time"
)

type PromotionStatus string

const (
	PromotionStatusActive   PromotionStatus = "active"
	PromotionStatusInactive PromotionStatus = "inactive"
)

// Promotion is a date-bounded percentage discount. Never stacked with a
// voucher; the voucher wins when both are supplied.
type Promotion struct {
	Base
	Name               string          `db:"name"`
	DiscountPercentage float64         `db:"discount_percentage"`
	StartDate          time.Time       `db:"start_date"`
	EndDate            time.Time       `db:"end_date"`
	Status             PromotionStatus `db:"status"`
}

// ActiveOn reports whether the promotion applies on the given date.
func (p *Promotion) ActiveOn(date time.Time) bool {
	if p.Status != PromotionStatusActive {
		return false
	}
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// DiscountOn applies the promotion percentage to a price.
func (p *Promotion) DiscountOn(price float64) float64 {
	discounted := price * (1 - p.DiscountPercentage/100)
	if discounted < 0 {
		return 0
	}
	return discounted
}
