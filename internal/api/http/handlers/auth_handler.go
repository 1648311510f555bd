package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-analytics/internal/api/dto"
	"github.com/spec-kit/sla-analytics/internal/service"
)

// AuthHandler exposes the token endpoint for configured API clients.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// IssueToken handles POST /auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ClientID == "" || req.ClientSecret == "" {
		return fiber.NewError(http.StatusBadRequest, "client_id and client_secret required")
	}

	token, expiresAt, err := h.auth.IssueToken(req.ClientID, req.ClientSecret)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.TokenResponse{Token: token, ExpiresAt: expiresAt},
	})
}
