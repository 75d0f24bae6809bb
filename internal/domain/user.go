package domain

import (
	"fmt"
	"time"
)

// Role enumerates the fixed set of account roles.
type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleStandardUser Role = "StandardUser"
)

// ParseRole decodes a role name, rejecting anything outside the closed set.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleAdmin, RoleStandardUser:
		return Role(value), nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// User is the domain model for accounts that file or triage tickets.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
