package middleware

import (
	"log"

	"villabook/internal/models"
	"villabook/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "auth_token"

// UserKey is the context-locals key the resolved user is stored under.
const UserKey = "user"

// AuthRequired validates the session cookie and attaches the resolved user
// to the request context. Missing, invalid and expired tokens all produce
// the same unauthorized outcome.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(CookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Not authorized, no token",
			})
		}

		user, err := authService.ValidateToken(token)
		if err != nil {
			log.Printf("Session validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Not authorized, invalid token",
			})
		}

		c.Locals(UserKey, user)
		return c.Next()
	}
}

// AdminRequired rejects requests whose resolved user is not an admin.
// Must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the user AuthRequired attached, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserKey).(*models.User)
	return user
}
