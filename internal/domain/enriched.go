package domain

import "time"

// EnrichedTicket is a Ticket plus every attribute derived against the run's
// reference instant. Derivation is a pure function of the embedded record and
// that instant; re-running it with the same inputs reproduces the same values.
type EnrichedTicket struct {
	Ticket

	Lifecycle      LifecycleStatus `json:"lifecycle_status"`
	Closing        ClosingStatus   `json:"closing_status"`
	Financial      FinancialStatus `json:"financial_status"`
	InBacklog      bool            `json:"in_backlog"`
	BacklogAt      *time.Time      `json:"backlog_at"`
	PendingClosure bool            `json:"pending_closure"`

	DelayClass        DelayClass `json:"delay_class"`
	DelayDays         int        `json:"delay_days"`
	ForecastDelayDays int        `json:"forecast_delay_days"`

	StartVerdict        SLAVerdict `json:"start_verdict"`
	CompletionVerdict   SLAVerdict `json:"completion_verdict"`
	StartDelayDays      int        `json:"start_delay_days"`
	CompletionDelayDays int        `json:"completion_delay_days"`

	ArrivalDays    int   `json:"arrival_days"`
	CompletionDays int   `json:"completion_days"`
	ClosingDays    int   `json:"closing_days"`
	ServiceDays    int   `json:"service_days"`
	ArrivalSeconds int64 `json:"arrival_seconds"`
	BusinessDays   int   `json:"business_days"`

	AgeDays   int       `json:"age_days"`
	AgeBucket AgeBucket `json:"age_bucket"`
	NearDue   bool      `json:"near_due"`

	AdjustedCompletedAt *time.Time `json:"adjusted_completed_at"`
}
