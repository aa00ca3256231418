package challenge

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/utils/middleware"
	"github.com/eduventure/eduventure-api/utils/response"
)

// ChallengeHandler handles challenge roadmap and completion requests
type ChallengeHandler struct {
	store database.Storage
}

// NewChallengeHandler creates a new challenge handler
func NewChallengeHandler(store database.Storage) *ChallengeHandler {
	return &ChallengeHandler{store: store}
}

// ListByCourse handles GET /api/courses/:courseId/challenges. Challenges
// come back in roadmap order.
func (h *ChallengeHandler) ListByCourse(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("courseId"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	if _, err := h.store.GetCourse(uint(courseID)); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch challenges")
	}

	challenges, err := h.store.GetChallengesByCourse(uint(courseID))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch challenges")
	}

	return response.Success(c, challenges)
}

// GetChallenge handles GET /api/challenges/:id
func (h *ChallengeHandler) GetChallenge(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid challenge ID")
	}

	challenge, err := h.store.GetChallenge(uint(id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return response.NotFound(c, "Challenge not found")
		}
		return response.InternalServerError(c, "Failed to fetch challenge")
	}

	return response.Success(c, challenge)
}

// CompleteRequest represents the completion request body. Score is
// optional and capped at the challenge's XP reward.
type CompleteRequest struct {
	Score *int `json:"score"`
}

// CompleteResponse pairs the stored completion with the user's updated
// standing.
type CompleteResponse struct {
	Completion interface{} `json:"completion"`
	User       struct {
		XPPoints int `json:"xpPoints"`
		Level    int `json:"level"`
	} `json:"user"`
}

// Complete handles POST /api/challenges/:id/complete. Completing a
// challenge twice is a no-op that returns the current standing.
func (h *ChallengeHandler) Complete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid challenge ID")
	}

	var req CompleteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	result, err := h.store.CompleteChallenge(userID, uint(id), req.Score)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrChallengeNotFound):
			return response.NotFound(c, "Challenge not found")
		case errors.Is(err, database.ErrNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to complete challenge")
		}
	}

	var res CompleteResponse
	res.Completion = result.Completion
	res.User.XPPoints = result.XPPoints
	res.User.Level = result.Level

	return response.Success(c, res)
}
