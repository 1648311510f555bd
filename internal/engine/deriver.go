package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

// DefaultPendingClosureDays is the closing-overdue threshold applied when the
// caller supplies none.
const DefaultPendingClosureDays = 30

// Deriver evaluates every derived attribute for every record against one
// reference instant. Derivation is sequential and has no cross-record
// dependency; aggregation only starts once the whole batch is enriched.
type Deriver struct {
	pendingClosureDays int
	logger             *zap.Logger
}

// NewDeriver builds a deriver with the given pending-closure threshold in days.
func NewDeriver(pendingClosureDays int, logger *zap.Logger) *Deriver {
	if pendingClosureDays <= 0 {
		pendingClosureDays = DefaultPendingClosureDays
	}
	return &Deriver{pendingClosureDays: pendingClosureDays, logger: logger}
}

// Enrich computes the derived attributes of every record in the dataset. The
// reference instant is taken at calendar-date precision and is the only clock
// the derivation ever sees, so equal inputs always reproduce equal outputs.
func (d *Deriver) Enrich(ds *Dataset, ref time.Time) []domain.EnrichedTicket {
	ref = DateOnly(ref)
	ds.ReferenceInstant = ref

	if degraded := ds.Caps.DegradedFields(); len(degraded) > 0 {
		names := make([]string, 0, len(degraded))
		for _, field := range degraded {
			names = append(names, string(field))
		}
		d.logger.Warn("derived fields missing prerequisites; absence semantics apply",
			zap.Strings("fields", names))
	}

	enriched := make([]domain.EnrichedTicket, 0, len(ds.Tickets))
	for i := range ds.Tickets {
		enriched = append(enriched, d.enrichOne(&ds.Tickets[i], ref))
	}
	ds.Enriched = enriched

	d.logger.Info("derivation complete",
		zap.Int("records", len(enriched)),
		zap.Time("reference_instant", ref))
	return enriched
}

func (d *Deriver) enrichOne(t *domain.Ticket, ref time.Time) domain.EnrichedTicket {
	e := domain.EnrichedTicket{Ticket: *t}

	e.Lifecycle = firstMatch(lifecycleRules, t, ref, domain.LifecycleCompleted)
	e.Closing = firstMatch(closingRules, t, ref, domain.ClosingClosed)
	e.Financial = firstMatch(financialRules, t, ref, domain.FinancialClosed)

	e.InBacklog = firstMatch(backlogRules, t, ref, false)
	if e.InBacklog {
		at := ref
		e.BacklogAt = &at
	}
	e.PendingClosure = t.ClosedAt == nil && t.CompletedAt != nil &&
		wholeDays(*t.CompletedAt, ref) > d.pendingClosureDays

	e.DelayClass = firstMatch(delayRules, t, ref, domain.DelayUndetermined)
	e.DelayDays = delayDaysFor(e.DelayClass, t, ref)
	e.ForecastDelayDays = forecastDelayDays(t, ref)

	e.StartVerdict = firstMatch(startVerdictRules, t, ref, domain.VerdictMissedTarget)
	e.CompletionVerdict = firstMatch(completionVerdictRules, t, ref, domain.VerdictMissedTarget)
	if e.StartVerdict == domain.VerdictMissedTarget && t.ArrivedAt != nil && t.ForecastArrivalAt != nil {
		e.StartDelayDays = clampDays(wholeDays(*t.ForecastArrivalAt, *t.ArrivedAt))
	}
	if e.CompletionVerdict == domain.VerdictMissedTarget && t.CompletedAt != nil && t.ForecastCompletionAt != nil {
		e.CompletionDelayDays = clampDays(wholeDays(*t.ForecastCompletionAt, *t.CompletedAt))
	}

	e.ArrivalDays = elapsedDays(t.CreatedAt, t.ArrivedAt)
	e.CompletionDays = elapsedDays(t.CreatedAt, t.CompletedAt)
	e.ClosingDays = elapsedDays(t.CreatedAt, t.ClosedAt)
	e.ServiceDays = serviceDays(t)
	e.ArrivalSeconds = arrivalSeconds(t)
	e.BusinessDays = businessSpan(t, ref)

	e.AgeDays = ageDays(t, ref)
	e.AgeBucket = firstMatch(ageBucketRules, t, ref, domain.AgeUnder30)
	e.NearDue = e.AgeDays >= 20 && e.AgeDays < 30

	e.AdjustedCompletedAt = adjustedCompletion(t)
	return e
}

// delayDaysFor counts delay days for the branch that classified the record.
// Unlike the elapsed-to-milestone counts, no same-day remap applies here.
func delayDaysFor(class domain.DelayClass, t *domain.Ticket, ref time.Time) int {
	switch class {
	case domain.DelayCompletedLate:
		return clampDays(wholeDays(*t.ForecastCompletionAt, *t.CompletedAt))
	case domain.DelayOverdue:
		return clampDays(wholeDays(*t.ForecastCompletionAt, ref))
	case domain.DelayOpenNoForecast:
		if t.CreatedAt == nil {
			return 0
		}
		return clampDays(wholeDays(*t.CreatedAt, ref))
	default:
		return 0
	}
}

// forecastDelayDays counts days past the completion forecast, inclusive of
// the forecast day itself, regardless of delay classification.
func forecastDelayDays(t *domain.Ticket, ref time.Time) int {
	if t.ForecastCompletionAt == nil {
		return 0
	}
	return clampDays(wholeDays(*t.ForecastCompletionAt, ref) + 1)
}

// elapsedDays counts whole days from creation to a milestone. A computed 0 is
// remapped to 1: a same-day milestone counts as one elapsed day. The remap
// deliberately also catches records where either timestamp is absent.
func elapsedDays(created, milestone *time.Time) int {
	days := 0
	if created != nil && milestone != nil {
		days = clampDays(wholeDays(*created, *milestone))
	}
	if days == 0 {
		return 1
	}
	return days
}

// serviceDays is the completion sibling of elapsedDays without the same-day
// remap; a same-day or absent completion stays 0.
func serviceDays(t *domain.Ticket) int {
	if t.CreatedAt == nil || t.CompletedAt == nil {
		return 0
	}
	return clampDays(wholeDays(*t.CreatedAt, *t.CompletedAt))
}

func arrivalSeconds(t *domain.Ticket) int64 {
	if t.CreatedAt == nil || t.ArrivedAt == nil {
		return 0
	}
	seconds := int64(t.ArrivedAt.Sub(*t.CreatedAt).Seconds())
	if seconds < 0 {
		return 0
	}
	return seconds
}

// businessSpan counts weekdays from creation to completion, or to the
// reference instant while the record is still open.
func businessSpan(t *domain.Ticket, ref time.Time) int {
	if t.CreatedAt == nil {
		return 0
	}
	end := ref
	if t.CompletedAt != nil {
		end = *t.CompletedAt
	}
	return businessDaysBetween(*t.CreatedAt, end)
}

// adjustedCompletion falls back to the closing time when completion was never
// recorded, for reporting surfaces that need a single end milestone.
func adjustedCompletion(t *domain.Ticket) *time.Time {
	if t.CompletedAt != nil {
		return t.CompletedAt
	}
	return t.ClosedAt
}
