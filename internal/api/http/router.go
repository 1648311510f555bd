package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-analytics/internal/api/http/handlers"
	"github.com/spec-kit/sla-analytics/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Auth           *handlers.AuthHandler
	Analysis       *handlers.AnalysisHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Expose)

	app.Post("/auth/token", cfg.Auth.IssueToken)

	analysis := app.Group("/analysis", cfg.AuthMiddleware.Handle)
	analysis.Post("/runs", auth.RequireOperator(), cfg.Analysis.TriggerRun)
	analysis.Get("/reports/latest", cfg.Analysis.LatestReport)
	analysis.Get("/runs/:id", cfg.Analysis.GetRun)
	analysis.Get("/dimensions/:name", cfg.Analysis.GetDimension)
}
