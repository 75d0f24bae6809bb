package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/observability"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and stores the token snapshot as the
// request principal. No user lookup is made; claims are trusted until expiry.
type AuthMiddleware struct {
	tokens  *TokenManager
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

// WithMetrics enables counting of rejected tokens.
func (m *AuthMiddleware) WithMetrics(metrics *observability.Metrics) *AuthMiddleware {
	m.metrics = metrics
	return m
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		m.metrics.AuthRejected("missing")
		return apperrors.NewUnauthorized()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		m.metrics.AuthRejected("malformed_header")
		return apperrors.NewUnauthorized()
	}

	identity, err := m.tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		m.logger.Debug("token rejected", zap.String("reason", err.Error()), zap.String("path", c.Path()))
		m.metrics.AuthRejected(rejectionReason(err))
		return apperrors.NewUnauthorized()
	}

	c.Locals(principalKey, &Principal{Identity: *identity})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenSignature):
		return "signature"
	case errors.Is(err, ErrTokenIssuer):
		return "issuer"
	case errors.Is(err, ErrTokenAudience):
		return "audience"
	case errors.Is(err, ErrTokenRole):
		return "role"
	default:
		return "malformed"
	}
}
