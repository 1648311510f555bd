package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-analytics/internal/api/dto"
	"github.com/spec-kit/sla-analytics/internal/service"
)

// AnalysisHandler exposes run triggers and stored reports.
type AnalysisHandler struct {
	analysis *service.AnalysisService
}

// NewAnalysisHandler constructs handler.
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysisService}
}

// TriggerRun handles POST /analysis/runs.
func (h *AnalysisHandler) TriggerRun(c *fiber.Ctx) error {
	var req dto.TriggerRunRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid payload")
		}
	}

	opts := service.RunOptions{
		Source:     req.Source,
		Dimensions: req.Dimensions,
		TopN:       req.TopN,
	}
	if req.AsOf != "" {
		asOf, err := parseAsOf(req.AsOf)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "as_of must be a date (2006-01-02) or RFC 3339 timestamp")
		}
		opts.AsOf = &asOf
	}

	report, err := h.analysis.RunFromSource(c.Context(), opts)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": report})
}

// LatestReport handles GET /analysis/reports/latest.
func (h *AnalysisHandler) LatestReport(c *fiber.Ctx) error {
	payload, err := h.analysis.LatestReport(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": json.RawMessage(payload)})
}

// GetRun handles GET /analysis/runs/:id.
func (h *AnalysisHandler) GetRun(c *fiber.Ctx) error {
	report, err := h.analysis.RunReport(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// GetDimension handles GET /analysis/dimensions/:name.
func (h *AnalysisHandler) GetDimension(c *fiber.Ctx) error {
	breakdown, err := h.analysis.BreakdownFor(c.Context(), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": breakdown})
}

func parseAsOf(value string) (time.Time, error) {
	if asOf, err := time.Parse("2006-01-02", value); err == nil {
		return asOf, nil
	}
	return time.Parse(time.RFC3339, value)
}
