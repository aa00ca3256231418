package profile

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/services/spaces"
	"github.com/eduventure/eduventure-api/utils/middleware"
	"github.com/eduventure/eduventure-api/utils/response"
	"github.com/eduventure/eduventure-api/utils/validation"
)

// ProfileHandler handles profile updates
type ProfileHandler struct {
	store     database.Storage
	spaces    *spaces.Client
	validator *validation.Validator
}

// NewProfileHandler creates a new profile handler. The spaces client is
// optional; without it avatar uploads return 503.
func NewProfileHandler(store database.Storage, spacesClient *spaces.Client) *ProfileHandler {
	return &ProfileHandler{
		store:     store,
		spaces:    spacesClient,
		validator: validation.NewValidator(),
	}
}

// UpdateProfileRequest represents the request body for updating a profile.
// Absent fields are left untouched.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=100"`
	Bio         *string `json:"bio" validate:"omitempty,max=1000"`
	Avatar      *string `json:"avatar" validate:"omitempty,url,max=500"`
}

// Update handles PUT /api/profile
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}
	if req.DisplayName != nil {
		trimmed := validation.SanitizeString(*req.DisplayName)
		req.DisplayName = &trimmed
	}

	user, err := h.store.UpdateUserProfile(userID, database.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, user)
}
