package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/model"
	"github.com/eduventure/eduventure-api/utils/auth"
	"github.com/eduventure/eduventure-api/utils/response"
)

// AuthMiddleware guards routes behind a valid session cookie.
type AuthMiddleware struct {
	sessions *auth.SessionManager
	store    database.Storage
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessions *auth.SessionManager, store database.Storage) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		store:    store,
	}
}

// Required rejects requests without a live session. The session record
// must still exist server-side, a signed cookie alone is not enough.
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(auth.SessionCookieName)
		if tokenString == "" {
			return response.Unauthorized(c, "Unauthorized")
		}

		claims, err := m.sessions.Validate(c.Context(), tokenString)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken),
				errors.Is(err, auth.ErrSessionRevoked),
				errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrInvalidClaims):
				return response.Unauthorized(c, "Unauthorized")
			default:
				return response.InternalServerError(c, "Failed to check session")
			}
		}

		user, err := m.store.GetUser(claims.UserID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return response.Unauthorized(c, "Unauthorized")
			}
			return response.InternalServerError(c, "Failed to load user")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("claims", claims)
		c.Locals("user", user)
		c.Locals("session_jti", claims.ID)

		return c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID := c.Locals("user_id")
	if userID == nil {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetClaims extracts session claims from context
func GetClaims(c *fiber.Ctx) (*auth.SessionClaims, bool) {
	claims := c.Locals("claims")
	if claims == nil {
		return nil, false
	}
	claimsData, ok := claims.(*auth.SessionClaims)
	return claimsData, ok
}
