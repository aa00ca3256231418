package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	authutil "github.com/eduventure/eduventure-api/utils/auth"
	"github.com/eduventure/eduventure-api/utils/middleware"
	"github.com/eduventure/eduventure-api/utils/response"
)

// Logout revokes the server-side session and clears the cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	tokenString := c.Cookies(authutil.SessionCookieName)
	if tokenString != "" {
		if err := h.sessions.Revoke(c.Context(), tokenString); err != nil {
			return response.InternalServerError(c, "Failed to log out")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     authutil.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return response.Success(c, fiber.Map{"message": "Logged out"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	return response.Success(c, user)
}
