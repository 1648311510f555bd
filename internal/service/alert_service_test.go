package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/config"
	"github.com/spec-kit/sla-analytics/internal/events"
)

func TestAlertServiceHandlesRunEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	alerts := NewAlertService(dispatcher, zap.NewNop(), config.NotificationConfig{
		EmailFrom:  "sla@example.com",
		WebhookURL: "https://hooks.example.com/sla",
	})
	alerts.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:    "evt-1",
		Type:  events.EventRunCompleted,
		RunID: "run-1",
		Payload: events.RunCompletedPayload{
			TotalRecords:  10,
			Backlog:       3,
			StartSLA:      80,
			CompletionSLA: 90,
			DurationMS:    12,
		},
	})
	if err != nil {
		t.Fatalf("expected handlers to accept the event, got %v", err)
	}

	err = dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventBacklogThreshold,
		RunID:   "run-1",
		Payload: events.BacklogThresholdPayload{Backlog: 3, Threshold: 1},
	})
	if err != nil {
		t.Fatalf("expected threshold handler to accept the event, got %v", err)
	}
}

func TestAlertServiceWithoutDispatcher(t *testing.T) {
	alerts := NewAlertService(nil, zap.NewNop(), config.NotificationConfig{})
	alerts.RegisterHandlers()
}
