package entity

import (
	"github.com/google/uuid"
)

type CondotelStatus string

const (
	CondotelStatusActive   CondotelStatus = "active"
	CondotelStatusInactive CondotelStatus = "inactive"
)

// Condotel is a rentable unit. Listing CRUD is out of scope; booking
// admission and payouts only read these rows.
type Condotel struct {
	Base
	HostID      uuid.UUID      `db:"host_id"`
	Name        string         `db:"name"`
	NightlyRate float64        `db:"nightly_rate"`
	Status      CondotelStatus `db:"status"`
}
