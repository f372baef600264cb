package middleware

import (
	"github.com/gofiber/fiber/v2"

	"blood-link/internal/domain"
)

func RequireRole(requiredRole domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := GetCurrentIdentity(c)
		if identity == nil {
			return Unauthorized("Authentication required")
		}

		if !identity.HasRole(requiredRole) {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}

func RequireModerator() fiber.Handler {
	return RequireRole(domain.RoleModerator)
}

func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
