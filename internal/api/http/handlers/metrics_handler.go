package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/common/expfmt"

	"github.com/spec-kit/sla-analytics/internal/observability"
)

// MetricsHandler serves the Prometheus text exposition.
type MetricsHandler struct {
	metrics *observability.Metrics
}

// NewMetricsHandler returns a new handler instance.
func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Expose handles GET /metrics.
func (h *MetricsHandler) Expose(c *fiber.Ctx) error {
	families, err := h.metrics.Gather()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return err
		}
	}

	c.Set(fiber.HeaderContentType, string(expfmt.FmtText))
	return c.Send(buf.Bytes())
}
