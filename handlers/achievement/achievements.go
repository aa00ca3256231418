package achievement

import (
	"github.com/gofiber/fiber/v2"

	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/utils/middleware"
	"github.com/eduventure/eduventure-api/utils/response"
)

// AchievementHandler handles achievement requests
type AchievementHandler struct {
	store database.Storage
}

// NewAchievementHandler creates a new achievement handler
func NewAchievementHandler(store database.Storage) *AchievementHandler {
	return &AchievementHandler{store: store}
}

// ListEarned handles GET /api/achievements
func (h *AchievementHandler) ListEarned(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	achievements, err := h.store.GetUserAchievements(userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch achievements")
	}

	return response.Success(c, achievements)
}

// ListAll handles GET /api/achievements/all, the full catalog including
// achievements the user has not earned yet.
func (h *AchievementHandler) ListAll(c *fiber.Ctx) error {
	achievements, err := h.store.GetAllAchievements()
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch achievements")
	}

	return response.Success(c, achievements)
}
