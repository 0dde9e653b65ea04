package user

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployed Role = "EMPLOYED"
)

// ParseRole normalizes to upper case and rejects anything outside the
// two-value enum.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(s)); r {
	case RoleAdmin, RoleEmployed:
		return r, nil
	default:
		return "", fmt.Errorf("invalid role %q: must be ADMIN or EMPLOYED", s)
	}
}
