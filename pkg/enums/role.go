package enums

import "fmt"

// Role identifies which side of the marketplace a user acts for.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleHomemaker Role = "homemaker"
	RoleDelivery  Role = "delivery"
)

var validRoles = []Role{
	RoleCustomer,
	RoleHomemaker,
	RoleDelivery,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IDPrefix returns the letter user ids carry for the role.
func (r Role) IDPrefix() string {
	switch r {
	case RoleCustomer:
		return "c"
	case RoleHomemaker:
		return "h"
	case RoleDelivery:
		return "d"
	}
	return ""
}

// EarnsPayouts reports whether the role accrues earnings and may request payouts.
func (r Role) EarnsPayouts() bool {
	return r == RoleHomemaker || r == RoleDelivery
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
