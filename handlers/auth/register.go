package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/eduventure/eduventure-api/database"
	"github.com/eduventure/eduventure-api/model"
	authutil "github.com/eduventure/eduventure-api/utils/auth"
	"github.com/eduventure/eduventure-api/utils/middleware"
	"github.com/eduventure/eduventure-api/utils/response"
	"github.com/eduventure/eduventure-api/utils/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	store                database.Storage
	sessions             *authutil.SessionManager
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store database.Storage, sessions *authutil.SessionManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		store:                store,
		sessions:             sessions,
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=30"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
	Avatar      string `json:"avatar" validate:"omitempty,url,max=500"`
	Bio         string `json:"bio" validate:"omitempty,max=1000"`
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Username = validation.SanitizeString(req.Username)
	req.DisplayName = validation.SanitizeString(req.DisplayName)

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}
	if ok, msg := validation.ValidateUsername(req.Username); !ok {
		return response.BadRequest(c, msg)
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, authutil.ErrPasswordTooShort) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to register")
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Avatar:       req.Avatar,
		Bio:          req.Bio,
	}
	if err := h.store.CreateUser(user); err != nil {
		if errors.Is(err, database.ErrDuplicateUsername) {
			return response.BadRequest(c, "Username already exists")
		}
		return response.InternalServerError(c, "Failed to register")
	}

	if err := h.startSession(c, user); err != nil {
		return response.InternalServerError(c, "Failed to create session")
	}

	return response.Created(c, user)
}
