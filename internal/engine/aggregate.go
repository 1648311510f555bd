package engine

import (
	"math"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

// Measure names one KPI in the flat result map.
type Measure string

const (
	MeasureTotalTickets        Measure = "total_tickets"
	MeasureTotalCompleted      Measure = "total_completed"
	MeasureStartOnTarget       Measure = "start_on_target"
	MeasureCompletionOnTarget  Measure = "completion_on_target"
	MeasureStartSLA            Measure = "sla_start_pct"
	MeasureCompletionSLA       Measure = "sla_completion_pct"
	MeasureStartVsTarget       Measure = "sla_start_vs_target_pp"
	MeasureCompletionVsTarget  Measure = "sla_completion_vs_target_pp"
	MeasureCompletionVsCleanup Measure = "sla_completion_vs_cleanup_pp"
	MeasureCurrentBacklog      Measure = "current_backlog"
	MeasureDistinctSuppliers   Measure = "distinct_suppliers"
	MeasureDistinctUnits       Measure = "distinct_commercial_units"
	MeasureDelayedTickets      Measure = "delayed_tickets"
	MeasureOpenNoForecast      Measure = "open_no_forecast"
	MeasureMissedCompletion    Measure = "missed_completion"
	MeasurePendingClosure      Measure = "pending_closure"
	MeasureNearDue             Measure = "near_due"
	MeasureAvgForecastDelay    Measure = "avg_forecast_delay_days"
	MeasureAvgArrivalDays      Measure = "avg_arrival_days"
	MeasureAvgCompletionDays   Measure = "avg_completion_days"
	MeasureAvgClosingDays      Measure = "avg_closing_days"
	MeasureAvgServiceDays      Measure = "avg_service_days"
	MeasureAvgTicketValue      Measure = "avg_ticket_value"
	MeasureTotalTicketValue    Measure = "total_ticket_value"
	MeasureAvgArrivalTime      Measure = "avg_arrival_time"
	MeasureTotalArrivalTime    Measure = "total_arrival_time"
)

// KPIMap is the flat KPI-name-to-value result of one run. Percentage values
// are plain numbers; rendering "%" or "pp" is the consumer's concern.
type KPIMap map[Measure]any

// Targets are the configured percentage goals KPI deltas are measured against.
type Targets struct {
	SLA     float64
	Cleanup float64
}

// Calculator reduces the enriched dataset into the KPI map.
type Calculator struct {
	targets Targets
	logger  *zap.Logger
}

// NewCalculator builds a calculator with the given targets.
func NewCalculator(targets Targets, logger *zap.Logger) *Calculator {
	return &Calculator{targets: targets, logger: logger}
}

// KPIs computes every measure from the enriched dataset. Any ratio with a
// zero denominator is 0, and a measure whose source column was absent from
// the feed degrades to its zero value with the gap already reported upstream.
func (c *Calculator) KPIs(ds *Dataset) KPIMap {
	rows := ds.Enriched
	if rows == nil {
		c.logger.Warn("kpi calculation requested before derivation; treating dataset as empty")
	}

	total := len(rows)
	completed := lo.CountBy(rows, func(e domain.EnrichedTicket) bool { return e.CompletedAt != nil })
	startOnTarget := lo.CountBy(rows, func(e domain.EnrichedTicket) bool {
		return e.StartVerdict == domain.VerdictWithinTarget
	})
	completionOnTarget := lo.CountBy(rows, func(e domain.EnrichedTicket) bool {
		return e.CompletionVerdict == domain.VerdictWithinTarget
	})

	startSLA := ratio(startOnTarget, total)
	completionSLA := ratio(completionOnTarget, completed)

	kpis := KPIMap{
		MeasureTotalTickets:        total,
		MeasureTotalCompleted:      completed,
		MeasureStartOnTarget:       startOnTarget,
		MeasureCompletionOnTarget:  completionOnTarget,
		MeasureStartSLA:            startSLA,
		MeasureCompletionSLA:       completionSLA,
		MeasureStartVsTarget:       round2(startSLA - c.targets.SLA),
		MeasureCompletionVsTarget:  round2(completionSLA - c.targets.SLA),
		MeasureCompletionVsCleanup: round2(completionSLA - c.targets.Cleanup),
		MeasureCurrentBacklog: lo.CountBy(rows, func(e domain.EnrichedTicket) bool {
			return e.InBacklog
		}),
		MeasureDelayedTickets: lo.CountBy(rows, func(e domain.EnrichedTicket) bool {
			return e.DelayClass == domain.DelayCompletedLate || e.DelayClass == domain.DelayOverdue
		}),
		MeasureOpenNoForecast: lo.CountBy(rows, func(e domain.EnrichedTicket) bool {
			return e.DelayClass == domain.DelayOpenNoForecast
		}),
		MeasureMissedCompletion: total - completionOnTarget,
		MeasurePendingClosure: lo.CountBy(rows, func(e domain.EnrichedTicket) bool {
			return e.PendingClosure
		}),
		MeasureNearDue: lo.CountBy(rows, func(e domain.EnrichedTicket) bool {
			return e.NearDue
		}),
	}

	kpis[MeasureDistinctSuppliers] = c.distinctCount(ds, ColSupplier, rows,
		func(e domain.EnrichedTicket) string { return e.Supplier })
	kpis[MeasureDistinctUnits] = c.distinctCount(ds, ColCommercialUnit, rows,
		func(e domain.EnrichedTicket) string { return e.CommercialUnit })

	kpis[MeasureAvgForecastDelay] = meanWhere(rows,
		func(e domain.EnrichedTicket) bool { return e.ForecastCompletionAt != nil },
		func(e domain.EnrichedTicket) int { return e.ForecastDelayDays })
	kpis[MeasureAvgArrivalDays] = meanWhere(rows,
		func(e domain.EnrichedTicket) bool { return e.ArrivedAt != nil },
		func(e domain.EnrichedTicket) int { return e.ArrivalDays })
	kpis[MeasureAvgCompletionDays] = meanWhere(rows,
		func(e domain.EnrichedTicket) bool { return e.CompletedAt != nil },
		func(e domain.EnrichedTicket) int { return e.CompletionDays })
	kpis[MeasureAvgClosingDays] = meanWhere(rows,
		func(e domain.EnrichedTicket) bool { return e.ClosedAt != nil },
		func(e domain.EnrichedTicket) int { return e.ClosingDays })
	kpis[MeasureAvgServiceDays] = meanWhere(rows,
		func(e domain.EnrichedTicket) bool { return e.CompletedAt != nil },
		func(e domain.EnrichedTicket) int { return e.ServiceDays })

	totalValue := decimal.Zero
	valued := 0
	if ds.Caps.Has(ColTotalValue) {
		for i := range rows {
			if rows[i].TotalValue != nil {
				totalValue = totalValue.Add(*rows[i].TotalValue)
				valued++
			}
		}
	}
	kpis[MeasureTotalTicketValue] = totalValue.Round(2)
	if valued > 0 {
		kpis[MeasureAvgTicketValue] = totalValue.Div(decimal.NewFromInt(int64(valued))).Round(2)
	} else {
		kpis[MeasureAvgTicketValue] = decimal.Zero
	}

	totalSeconds := int64(0)
	arrived := 0
	if ds.Caps.Has(ColArrivedAt) {
		for i := range rows {
			if rows[i].ArrivedAt != nil {
				totalSeconds += rows[i].ArrivalSeconds
				arrived++
			}
		}
	}
	kpis[MeasureTotalArrivalTime] = FormatHMS(totalSeconds)
	if arrived > 0 {
		kpis[MeasureAvgArrivalTime] = FormatHMS(totalSeconds / int64(arrived))
	} else {
		kpis[MeasureAvgArrivalTime] = FormatHMS(0)
	}

	return kpis
}

func (c *Calculator) distinctCount(ds *Dataset, column string, rows []domain.EnrichedTicket, value func(domain.EnrichedTicket) string) int {
	if !ds.Caps.Has(column) {
		return 0
	}
	distinct := lo.Uniq(lo.FilterMap(rows, func(e domain.EnrichedTicket, _ int) (string, bool) {
		v := value(e)
		return v, v != ""
	}))
	return len(distinct)
}

// ratio is n/d as a percentage, defined as 0 when the denominator is 0.
func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

// meanWhere averages the value over qualifying rows only; no qualifying rows
// means 0, never NaN.
func meanWhere(rows []domain.EnrichedTicket, qualifies func(domain.EnrichedTicket) bool, value func(domain.EnrichedTicket) int) float64 {
	sum := 0
	count := 0
	for i := range rows {
		if qualifies(rows[i]) {
			sum += value(rows[i])
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return round2(float64(sum) / float64(count))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
