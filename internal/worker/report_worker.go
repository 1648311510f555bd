package worker

import (
	"github.com/spec-kit/sla-analytics/internal/service"
)

// StartReportWorker registers run-event handlers.
func StartReportWorker(alertService *service.AlertService) {
	if alertService == nil {
		return
	}
	alertService.RegisterHandlers()
}
