package domain

import "time"

// RunStatus enumerates lifecycle states for analysis runs.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// AnalysisRun records one execution of the derivation-and-aggregation pipeline.
type AnalysisRun struct {
	ID               string
	Status           RunStatus
	Source           string
	ReferenceInstant time.Time
	TotalRecords     int
	MissingColumns   []string
	SLATarget        float64
	CleanupTarget    float64
	StartedAt        time.Time
	FinishedAt       *time.Time
	Error            *string
}
