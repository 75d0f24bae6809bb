package domain

import "time"

// Identity is the verified snapshot of a user carried by a bearer token.
// It is taken at issuance and is not refreshed if the user changes later.
type Identity struct {
	UserID      int64
	DisplayName string
	Role        Role
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// IsAdmin reports whether the snapshot carries the Admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
