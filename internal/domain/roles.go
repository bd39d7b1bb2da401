package domain

import "strings"

// Role is the closed set of privilege levels a user can hold.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleAccountManager Role = "ACCOUNT_MANAGER"
	RoleDeveloper      Role = "DEVELOPER"
	RoleUser           Role = "USER"
	RoleClient         Role = "CLIENT"
)

var validRoles = map[Role]struct{}{
	RoleAdmin:          {},
	RoleAccountManager: {},
	RoleDeveloper:      {},
	RoleUser:           {},
	RoleClient:         {},
}

// ParseRole normalises and validates an incoming role string.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := validRoles[role]; !ok {
		return "", &InvalidRoleError{Raw: raw}
	}
	return role, nil
}

// Valid reports whether the role is one of the five known values.
func (r Role) Valid() bool {
	_, ok := validRoles[r]
	return ok
}

// IsStaff reports whether the role belongs to internal staff
// (everything except USER and CLIENT).
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleAccountManager || r == RoleDeveloper
}

// Roles returns all valid roles, for validation and UI population.
func Roles() []Role {
	return []Role{RoleAdmin, RoleAccountManager, RoleDeveloper, RoleUser, RoleClient}
}
