// Package middleware provides the Fiber middleware that authenticates bearer
// tokens and gates admin and permission-scoped routes.
package middleware

import (
	"context"
	"strings"

	apperrors "investa/internal/errors"
	"investa/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	ErrMissingToken = apperrors.Unauthorized("MISSING_TOKEN", "Unauthenticated.")
	ErrInsufficient = apperrors.Forbidden("INSUFFICIENT_PERMISSIONS", "Insufficient permissions")
)

// Authenticator validates a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.UserClaims, error)
}

// AuthMiddleware validates JWT bearer tokens and stores the claims in the
// request context under "claims".
type AuthMiddleware struct {
	auth   Authenticator
	logger *zap.Logger
}

func NewAuthMiddleware(auth Authenticator, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{auth: auth, logger: logger.Named("auth")}
}

// Handler rejects requests without a valid, unrevoked token.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}

	claims, err := m.auth.Authenticate(c.UserContext(), strings.TrimSpace(token))
	if err != nil {
		if _, isDomain := apperrors.AsDomain(err); isDomain {
			m.logger.Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
		}
		return err
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// AdminOnly must run after Handler.
func AdminOnly(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return ErrMissingToken
	}
	if !claims.IsAdmin() {
		return apperrors.ErrAdminOnly
	}
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok {
			return ErrMissingToken
		}
		if claims.IsAdmin() || claims.HasPermission(permission) {
			return c.Next()
		}
		return ErrInsufficient
	}
}
