package progress

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/utils/middleware"
	"github.com/eduventure/eduventure-api/utils/response"
	"github.com/eduventure/eduventure-api/utils/validation"
)

// ProgressHandler handles per-course progress requests
type ProgressHandler struct {
	store     database.Storage
	validator *validation.Validator
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(store database.Storage) *ProgressHandler {
	return &ProgressHandler{
		store:     store,
		validator: validation.NewValidator(),
	}
}

// List handles GET /api/progress
func (h *ProgressHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	rows, err := h.store.GetUserProgress(userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch progress")
	}

	return response.Success(c, rows)
}

// GetByCourse handles GET /api/progress/:courseId
func (h *ProgressHandler) GetByCourse(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.ParseUint(c.Params("courseId"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	row, err := h.store.GetUserCourseProgress(userID, uint(courseID))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return response.NotFound(c, "Progress not found")
		}
		return response.InternalServerError(c, "Failed to fetch progress")
	}

	return response.Success(c, row)
}

// UpsertRequest represents the progress update body. Progress values
// outside 0..100 are clamped, not rejected.
type UpsertRequest struct {
	CourseID uint `json:"courseId" validate:"required,min=1"`
	Progress int  `json:"progress"`
}

// Upsert handles POST /api/progress
func (h *ProgressHandler) Upsert(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req UpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if _, err := h.store.GetCourse(req.CourseID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to update progress")
	}

	row, err := h.store.UpsertProgress(userID, req.CourseID, req.Progress)
	if err != nil {
		return response.InternalServerError(c, "Failed to update progress")
	}

	return response.Success(c, row)
}
