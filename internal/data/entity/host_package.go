package entity

import (
	"time"

	"github.com/google/uuid"
)

// Package is a purchasable host subscription plan.
type Package struct {
	Base
	Name         string  `db:"name"`
	Price        float64 `db:"price"`
	DurationDays int     `db:"duration_days"`
	Status       string  `db:"status"`
}

type HostPackageStatus string

const (
	HostPackageStatusPendingPayment HostPackageStatus = "pending_payment"
	HostPackageStatusActive         HostPackageStatus = "active"
	HostPackageStatusCancelled      HostPackageStatus = "cancelled"
)

// HostPackage is a host's subscription to a package. Dates stay nil until
// the subscription payment settles; activation stamps a window of
// DurationDays starting that day.
type HostPackage struct {
	BaseSimple
	HostID       uuid.UUID         `db:"host_id"`
	PackageID    uuid.UUID         `db:"package_id"`
	Status       HostPackageStatus `db:"status"`
	StartDate    *time.Time        `db:"start_date"`
	EndDate      *time.Time        `db:"end_date"`
	DurationDays int               `db:"duration_days"`
	OrderCode    int64             `db:"order_code"`
}
