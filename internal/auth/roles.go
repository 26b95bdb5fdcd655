package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/hosting-portal/pkg/util/errorutil"
)

// RequireAuthenticated ensures a principal was resolved.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin gates admin-only routes. The principal's IsAdmin flag
// already reflects the two-source evaluation.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if !principal.IsAdmin {
			return apperrors.NewForbidden("admin privileges required")
		}
		return c.Next()
	}
}
