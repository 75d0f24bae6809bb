package auth

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Capability names a permission checked before a business operation runs.
type Capability string

const (
	CapabilityAuthenticated Capability = "authenticated"
	CapabilityAdmin         Capability = "admin"
	CapabilityOwnerOrAdmin  Capability = "owner-or-admin"
)

// Principal represents the authenticated caller.
type Principal struct {
	Identity domain.Identity
}

// UserID returns the caller's user id.
func (p *Principal) UserID() int64 {
	return p.Identity.UserID
}

// Mediator is the single authorization decision point shared by the ticket
// and message managers and the route guards.
type Mediator struct{}

// NewMediator constructs a mediator.
func NewMediator() *Mediator {
	return &Mediator{}
}

// Authorize allows or denies the operation. ownerID is only consulted for
// CapabilityOwnerOrAdmin. A nil principal is unauthenticated; any failed rule
// yields the same forbidden error.
func (m *Mediator) Authorize(principal *Principal, capability Capability, ownerID int64) error {
	if principal == nil {
		return apperrors.NewUnauthorized()
	}

	switch capability {
	case CapabilityAuthenticated:
		return nil
	case CapabilityAdmin:
		if principal.Identity.IsAdmin() {
			return nil
		}
	case CapabilityOwnerOrAdmin:
		if principal.Identity.IsAdmin() || principal.Identity.UserID == ownerID {
			return nil
		}
	}
	return apperrors.NewForbidden()
}
