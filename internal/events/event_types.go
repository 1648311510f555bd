package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRunStarted       EventType = "analysis_run_started"
	EventRunCompleted     EventType = "analysis_run_completed"
	EventRunFailed        EventType = "analysis_run_failed"
	EventBacklogThreshold EventType = "backlog_threshold_exceeded"
)

// Event represents an analysis event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RunID     string      `json:"run_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RunStartedPayload payload.
type RunStartedPayload struct {
	Source        string    `json:"source"`
	ReferenceDate time.Time `json:"reference_date"`
	Rows          int       `json:"rows"`
}

// RunCompletedPayload payload.
type RunCompletedPayload struct {
	TotalRecords  int     `json:"total_records"`
	Backlog       int     `json:"backlog"`
	StartSLA      float64 `json:"sla_start_pct"`
	CompletionSLA float64 `json:"sla_completion_pct"`
	DurationMS    int64   `json:"duration_ms"`
}

// RunFailedPayload payload.
type RunFailedPayload struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// BacklogThresholdPayload payload.
type BacklogThresholdPayload struct {
	Backlog   int `json:"backlog"`
	Threshold int `json:"threshold"`
}
