package course

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/utils/response"
)

// CourseHandler handles course catalog requests
type CourseHandler struct {
	store database.Storage
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(store database.Storage) *CourseHandler {
	return &CourseHandler{store: store}
}

// ListCourses handles GET /api/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.store.GetAllCourses()
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}
	return response.Success(c, courses)
}

// ListFeaturedCourses handles GET /api/courses/featured
func (h *CourseHandler) ListFeaturedCourses(c *fiber.Ctx) error {
	courses, err := h.store.GetFeaturedCourses()
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}
	return response.Success(c, courses)
}

// GetCourse handles GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	course, err := h.store.GetCourse(uint(id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}
