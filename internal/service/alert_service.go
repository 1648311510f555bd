package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/config"
	"github.com/spec-kit/sla-analytics/internal/events"
)

// AlertService reacts to run lifecycle events: it logs run summaries and
// pushes stub notifications to the configured webhook/email targets.
type AlertService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewAlertService creates the service.
func NewAlertService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *AlertService {
	return &AlertService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to run events.
func (a *AlertService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventRunStarted, a.handleRunStarted)
	a.dispatcher.Subscribe(events.EventRunCompleted, a.handleRunCompleted)
	a.dispatcher.Subscribe(events.EventRunFailed, a.handleRunFailed)
	a.dispatcher.Subscribe(events.EventBacklogThreshold, a.handleBacklogThreshold)
}

func (a *AlertService) handleRunStarted(ctx context.Context, event events.Event) error {
	a.logger.Info("analysis run started", zap.String("run_id", event.RunID), zap.Any("payload", event.Payload))
	return nil
}

func (a *AlertService) handleRunCompleted(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("run_id", event.RunID)}
	if payload, ok := event.Payload.(events.RunCompletedPayload); ok {
		fields = append(fields,
			zap.Int("records", payload.TotalRecords),
			zap.Int("backlog", payload.Backlog),
			zap.Float64("sla_start_pct", payload.StartSLA),
			zap.Float64("sla_completion_pct", payload.CompletionSLA),
			zap.Int64("duration_ms", payload.DurationMS),
		)
	}
	a.logger.Info("analysis run completed", fields...)
	a.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (a *AlertService) handleRunFailed(ctx context.Context, event events.Event) error {
	a.logger.Warn("analysis run failed", zap.String("run_id", event.RunID), zap.Any("payload", event.Payload))
	a.sendEmailNotificationStub(ctx, event)
	a.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (a *AlertService) handleBacklogThreshold(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("run_id", event.RunID)}
	if payload, ok := event.Payload.(events.BacklogThresholdPayload); ok {
		fields = append(fields,
			zap.Int("backlog", payload.Backlog),
			zap.Int("threshold", payload.Threshold),
		)
	}
	a.logger.Warn("backlog above threshold", fields...)
	a.sendEmailNotificationStub(ctx, event)
	a.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (a *AlertService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(a.cfg.EmailFrom) == "" {
		return
	}
	a.logger.Debug("sendEmailNotificationStub",
		zap.String("from", a.cfg.EmailFrom),
		zap.String("run_id", event.RunID),
		zap.String("event_type", string(event.Type)))
}

func (a *AlertService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(a.cfg.WebhookURL) == "" {
		return
	}
	a.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", a.cfg.WebhookURL),
		zap.String("run_id", event.RunID),
		zap.String("event_type", string(event.Type)))
}
