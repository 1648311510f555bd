package engine

import (
	"time"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

// Rule pairs a named predicate with the outcome assigned when it is the first
// in its list to match. Every list is evaluated top to bottom per record; a
// record that matches nothing receives the list's explicit fallback.
type Rule[T any] struct {
	Name string
	When func(t *domain.Ticket, ref time.Time) bool
	Out  T
}

func firstMatch[T any](rules []Rule[T], t *domain.Ticket, ref time.Time, fallback T) T {
	for _, rule := range rules {
		if rule.When(t, ref) {
			return rule.Out
		}
	}
	return fallback
}

var lifecycleRules = []Rule[domain.LifecycleStatus]{
	{
		Name: "completion absent",
		When: func(t *domain.Ticket, _ time.Time) bool { return t.CompletedAt == nil },
		Out:  domain.LifecyclePending,
	},
}

var closingRules = []Rule[domain.ClosingStatus]{
	{
		Name: "completion and closing absent",
		When: func(t *domain.Ticket, _ time.Time) bool { return t.CompletedAt == nil && t.ClosedAt == nil },
		Out:  domain.ClosingPending,
	},
}

var financialRules = []Rule[domain.FinancialStatus]{
	{
		Name: "closing absent",
		When: func(t *domain.Ticket, _ time.Time) bool { return t.ClosedAt == nil },
		Out:  domain.FinancialPending,
	},
}

var backlogRules = []Rule[bool]{
	{
		Name: "neither completed nor closed",
		When: func(t *domain.Ticket, _ time.Time) bool { return t.CompletedAt == nil && t.ClosedAt == nil },
		Out:  true,
	},
}

// delayRules is mutually exclusive by construction: the first match decides.
// A completed record without a forecast matches nothing and falls back to
// Undetermined rather than being dropped.
var delayRules = []Rule[domain.DelayClass]{
	{
		Name: "completed after forecast",
		When: func(t *domain.Ticket, _ time.Time) bool {
			return t.CompletedAt != nil && t.ForecastCompletionAt != nil &&
				t.CompletedAt.After(*t.ForecastCompletionAt)
		},
		Out: domain.DelayCompletedLate,
	},
	{
		Name: "open past forecast",
		When: func(t *domain.Ticket, ref time.Time) bool {
			return t.CompletedAt == nil && t.ForecastCompletionAt != nil &&
				t.ForecastCompletionAt.Before(ref)
		},
		Out: domain.DelayOverdue,
	},
	{
		Name: "open without forecast",
		When: func(t *domain.Ticket, _ time.Time) bool {
			return t.CompletedAt == nil && t.ForecastCompletionAt == nil
		},
		Out: domain.DelayOpenNoForecast,
	},
	{
		Name: "within forecast",
		When: func(t *domain.Ticket, ref time.Time) bool {
			completedInTime := t.CompletedAt != nil && t.ForecastCompletionAt != nil &&
				!t.CompletedAt.After(*t.ForecastCompletionAt)
			openWithTime := t.CompletedAt == nil && t.ForecastCompletionAt != nil &&
				!t.ForecastCompletionAt.Before(ref)
			return completedInTime || openWithTime
		},
		Out: domain.DelayOnTime,
	},
}

var startVerdictRules = []Rule[domain.SLAVerdict]{
	{
		Name: "forecast arrival absent",
		When: func(t *domain.Ticket, _ time.Time) bool { return t.ForecastArrivalAt == nil },
		Out:  domain.VerdictUndefined,
	},
	{
		Name: "no start milestone",
		When: func(t *domain.Ticket, _ time.Time) bool { return startInstant(t) == nil },
		Out:  domain.VerdictUndefined,
	},
	{
		Name: "started on or before forecast",
		When: func(t *domain.Ticket, _ time.Time) bool {
			return !startInstant(t).After(*t.ForecastArrivalAt)
		},
		Out: domain.VerdictWithinTarget,
	},
}

var completionVerdictRules = []Rule[domain.SLAVerdict]{
	{
		Name: "forecast completion absent",
		When: func(t *domain.Ticket, _ time.Time) bool { return t.ForecastCompletionAt == nil },
		Out:  domain.VerdictUndefined,
	},
	{
		Name: "completion absent",
		When: func(t *domain.Ticket, _ time.Time) bool { return t.CompletedAt == nil },
		Out:  domain.VerdictPending,
	},
	{
		Name: "completed on or before forecast",
		When: func(t *domain.Ticket, _ time.Time) bool {
			return !t.CompletedAt.After(*t.ForecastCompletionAt)
		},
		Out: domain.VerdictWithinTarget,
	},
}

// ageBucketRules only buckets completed records; everything else falls back
// to the youngest bucket.
var ageBucketRules = []Rule[domain.AgeBucket]{
	{
		Name: "completed, older than 90 days",
		When: func(t *domain.Ticket, ref time.Time) bool {
			return t.CompletedAt != nil && ageDays(t, ref) > 90
		},
		Out: domain.AgeOver90,
	},
	{
		Name: "completed, older than 60 days",
		When: func(t *domain.Ticket, ref time.Time) bool {
			return t.CompletedAt != nil && ageDays(t, ref) > 60
		},
		Out: domain.AgeOver60,
	},
	{
		Name: "completed, older than 30 days",
		When: func(t *domain.Ticket, ref time.Time) bool {
			return t.CompletedAt != nil && ageDays(t, ref) > 30
		},
		Out: domain.AgeOver30,
	},
}

// startInstant is the first-forwarding time when recorded, else the arrival
// time, else nil.
func startInstant(t *domain.Ticket) *time.Time {
	if t.FirstForwardedAt != nil {
		return t.FirstForwardedAt
	}
	return t.ArrivedAt
}

// ageDays is the whole-day age of the record at the reference instant.
func ageDays(t *domain.Ticket, ref time.Time) int {
	if t.CreatedAt == nil {
		return 0
	}
	return clampDays(wholeDays(*t.CreatedAt, ref))
}
