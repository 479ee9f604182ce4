package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session tokens are issued by the external auth service; this backend only
// validates them.
type Session struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	Token     uuid.UUID  `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}
