package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"blood-link/internal/domain"
	"blood-link/internal/service/auth"
)

const (
	IdentityContextKey = "identity"
	UserIDContextKey   = "user_id"
)

// AuthRequired validates the bearer token, mirrors the user and puts the
// identity both in Locals and in the request's user context.
func AuthRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return Unauthorized("Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return Unauthorized("Invalid authorization header format")
		}

		identity, err := authService.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			return err
		}

		c.Locals(IdentityContextKey, identity)
		c.Locals(UserIDContextKey, identity.UserID)
		c.SetUserContext(domain.WithIdentity(c.UserContext(), identity))

		return c.Next()
	}
}

func GetCurrentIdentity(c *fiber.Ctx) *domain.Identity {
	identity, ok := c.Locals(IdentityContextKey).(*domain.Identity)
	if !ok {
		return nil
	}
	return identity
}

func GetCurrentUserID(c *fiber.Ctx) uuid.UUID {
	userID, ok := c.Locals(UserIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}
