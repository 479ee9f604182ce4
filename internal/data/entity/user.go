package entity

type UserRole string

const (
	RoleTenant UserRole = "tenant"
	RoleHost   UserRole = "host"
	RoleAdmin  UserRole = "admin"
)

// User rows are consumed for identity and role gating only; account
// management and credential handling live in an external service.
type User struct {
	Base
	FullName string   `db:"full_name"`
	Email    string   `db:"email"`
	Phone    *string  `db:"phone"`
	Role     UserRole `db:"role"`
	IsActive bool     `db:"is_active"`
}
