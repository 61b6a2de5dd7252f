package domain

import (
	"fmt"
	"strings"
)

// Role is the account kind chosen at role selection and stored with the account.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole accepts a role name in any letter case.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
}

// Account is a stored username/password/role triple.
// Password holds whatever the configured credential matcher produced: plaintext by default.
type Account struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// SameUsername reports whether two usernames name the same account.
func SameUsername(a, b string) bool {
	return strings.EqualFold(a, b)
}

// DefaultAdmin is seeded into an empty credential store so a fresh install can be administered.
func DefaultAdmin() Account {
	return Account{Username: "admin", Password: "password123", Role: RoleAdmin}
}
