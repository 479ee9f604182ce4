package entity

import (
	"github.com/google/uuid"
)

// HostBankAccount is where payouts land. A host needs at least one active
// account before the payout engine will touch their bookings.
type HostBankAccount struct {
	BaseSimple
	HostID        uuid.UUID `db:"host_id"`
	BankCode      string    `db:"bank_code"`
	AccountNumber string    `db:"account_number"`
	AccountHolder string    `db:"account_holder"`
	IsActive      bool      `db:"is_active"`
}
