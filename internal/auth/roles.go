package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/siyabongaprospersithole/support-ticket-system/pkg/util"
)

// RequireUser ensures an authenticated user is present.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller is an admin user.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.IsAdmin() {
			return apperrors.NewForbidden("admin required")
		}
		return c.Next()
	}
}
