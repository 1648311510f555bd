package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

// RequireOperator ensures the caller may trigger analysis runs.
func RequireOperator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if principal.Role != domain.ClientRoleOperator {
			return fiber.NewError(http.StatusForbidden, "operator role required")
		}
		return c.Next()
	}
}
