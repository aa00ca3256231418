package profile

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/services/spaces"
	"github.com/eduventure/eduventure-api/utils/middleware"
	"github.com/eduventure/eduventure-api/utils/response"
)

// UploadAvatar handles POST /api/profile/avatar. The image goes to the
// Spaces bucket and the stored public URL replaces the user's avatar.
func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if h.spaces == nil {
		return response.ServiceUnavailable(c, "Avatar uploads are not configured")
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return response.BadRequest(c, "Avatar file is required")
	}
	if fileHeader.Size > spaces.MaxAvatarSize {
		return response.BadRequest(c, "Avatar must be 2MB or smaller")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read avatar")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.spaces.UploadAvatar(c.Context(), userID, file, contentType)
	if err != nil {
		return response.BadRequest(c, "Unsupported avatar file type")
	}

	user, err := h.store.UpdateUserProfile(userID, database.ProfileUpdate{Avatar: &url})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, user)
}
