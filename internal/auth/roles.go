package auth

import (
	"github.com/gofiber/fiber/v2"
)

// RequireCapability guards a route with a capability that does not depend on
// a resource owner (authenticated or admin).
func RequireCapability(mediator *Mediator, capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		if err := mediator.Authorize(principal, capability, 0); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller holds the Admin role.
func RequireAdmin(mediator *Mediator) fiber.Handler {
	return RequireCapability(mediator, CapabilityAdmin)
}
