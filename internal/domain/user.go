package domain

import "time"

// Role enumerates the access levels a principal can hold.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAgent    Role = "AGENT"
	RoleAdmin    Role = "ADMIN"
)

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// User is the authenticated principal: customers submit tickets, agents and
// admins triage them.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
