package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/health-records-service/internal/api/dto"
	"github.com/spec-kit/health-records-service/internal/service"
	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

// AuthHandler issues tokens for registered principals.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PrincipalID == "" || req.Password == "" {
		return apperrors.NewValidationError("principal_id and password required", nil)
	}

	token, expiresAt, err := h.auth.Login(c.Context(), req.PrincipalID, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{Token: token, ExpiresAt: expiresAt}})
}
