package model

import "fmt"

// Role is the closed set of privilege levels a tenant user can hold. Invalid
// values are rejected at the parsing boundary and never persisted.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
	RoleClient     Role = "client"
)

// ParseRole converts an inbound string into a Role, failing on anything
// outside the enumerated set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperadmin, RoleAdmin, RoleEmployee, RoleClient:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
