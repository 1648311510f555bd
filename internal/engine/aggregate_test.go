package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

func TestKPIsEmptyDataset(t *testing.T) {
	ds := &Dataset{Caps: NewCapabilities(RequiredColumns)}
	NewDeriver(0, zap.NewNop()).Enrich(ds, refMar16)

	kpis := newTestCalculator().KPIs(ds)

	if got := intKPI(t, kpis, MeasureTotalTickets); got != 0 {
		t.Fatalf("expected 0 tickets, got %d", got)
	}
	if got := floatKPI(t, kpis, MeasureStartSLA); got != 0 {
		t.Fatalf("expected 0 start rate on an empty batch, got %.2f", got)
	}
	if got := floatKPI(t, kpis, MeasureCompletionSLA); got != 0 {
		t.Fatalf("expected 0 completion rate on an empty batch, got %.2f", got)
	}
	if got := floatKPI(t, kpis, MeasureStartVsTarget); got != -96 {
		t.Fatalf("expected -96pp against the target, got %.2f", got)
	}
	if got := floatKPI(t, kpis, MeasureCompletionVsCleanup); got != -98 {
		t.Fatalf("expected -98pp against the cleanup target, got %.2f", got)
	}
	if got := decimalKPI(t, kpis, MeasureTotalTicketValue); got.StringFixed(2) != "0.00" {
		t.Fatalf("expected zero total value, got %s", got)
	}
	if got := stringKPI(t, kpis, MeasureAvgArrivalTime); got != "00:00:00" {
		t.Fatalf("expected 00:00:00 average arrival, got %s", got)
	}
}

func TestKPIsBeforeDerivationTreatedAsEmpty(t *testing.T) {
	ds := &Dataset{
		Tickets: []domain.Ticket{{CreatedAt: stamp(2026, 3, 2, 8, 0)}},
		Caps:    NewCapabilities(RequiredColumns),
	}

	kpis := newTestCalculator().KPIs(ds)
	if got := intKPI(t, kpis, MeasureTotalTickets); got != 0 {
		t.Fatalf("expected an underived dataset to read as empty, got %d", got)
	}
}

func TestKPIsSmallBatch(t *testing.T) {
	value := func(s string) *decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			t.Fatalf("bad fixture value %s: %v", s, err)
		}
		return &d
	}

	ds := &Dataset{
		Tickets: []domain.Ticket{
			{
				CreatedAt:            stamp(2026, 3, 2, 8, 0),
				ArrivedAt:            stamp(2026, 3, 2, 9, 0),
				ForecastArrivalAt:    stamp(2026, 3, 3, 0, 0),
				ForecastCompletionAt: stamp(2026, 3, 6, 0, 0),
				CompletedAt:          stamp(2026, 3, 4, 8, 0),
				ClosedAt:             stamp(2026, 3, 5, 8, 0),
				Supplier:             "ACME",
				CommercialUnit:       "North",
				TotalValue:           value("100.10"),
			},
			{
				CreatedAt:            stamp(2026, 3, 2, 8, 0),
				ArrivedAt:            stamp(2026, 3, 2, 10, 0),
				ForecastArrivalAt:    stamp(2026, 3, 1, 0, 0),
				ForecastCompletionAt: stamp(2026, 3, 4, 0, 0),
				CompletedAt:          stamp(2026, 3, 9, 8, 0),
				Supplier:             "ACME",
				CommercialUnit:       "South",
				TotalValue:           value("200.20"),
			},
			{
				CreatedAt:            stamp(2026, 3, 2, 8, 0),
				ForecastCompletionAt: stamp(2026, 3, 6, 0, 0),
				Supplier:             "BETA",
				TotalValue:           value("50.00"),
			},
			{
				CreatedAt: stamp(2026, 3, 2, 8, 0),
			},
		},
		Caps: NewCapabilities(RequiredColumns),
	}
	NewDeriver(0, zap.NewNop()).Enrich(ds, refMar16)

	kpis := newTestCalculator().KPIs(ds)

	counts := map[Measure]int{
		MeasureTotalTickets:       4,
		MeasureTotalCompleted:     2,
		MeasureStartOnTarget:      1,
		MeasureCompletionOnTarget: 1,
		MeasureCurrentBacklog:     2,
		MeasureDelayedTickets:     2,
		MeasureOpenNoForecast:     1,
		MeasureMissedCompletion:   3,
		MeasurePendingClosure:     0,
		MeasureNearDue:            0,
		MeasureDistinctSuppliers:  2,
		MeasureDistinctUnits:      2,
	}
	for measure, want := range counts {
		if got := intKPI(t, kpis, measure); got != want {
			t.Fatalf("%s: expected %d, got %d", measure, want, got)
		}
	}

	rates := map[Measure]float64{
		MeasureStartSLA:            25,
		MeasureCompletionSLA:       50,
		MeasureStartVsTarget:       -71,
		MeasureCompletionVsTarget:  -46,
		MeasureCompletionVsCleanup: -48,
		MeasureAvgForecastDelay:    11.67,
		MeasureAvgArrivalDays:      1,
		MeasureAvgCompletionDays:   4.5,
		MeasureAvgClosingDays:      3,
		MeasureAvgServiceDays:      4.5,
	}
	for measure, want := range rates {
		if got := floatKPI(t, kpis, measure); got != want {
			t.Fatalf("%s: expected %.2f, got %.2f", measure, want, got)
		}
	}

	if got := decimalKPI(t, kpis, MeasureTotalTicketValue); got.StringFixed(2) != "350.30" {
		t.Fatalf("expected total value 350.30, got %s", got)
	}
	if got := decimalKPI(t, kpis, MeasureAvgTicketValue); got.StringFixed(2) != "116.77" {
		t.Fatalf("expected average value 116.77, got %s", got)
	}
	if got := stringKPI(t, kpis, MeasureTotalArrivalTime); got != "03:00:00" {
		t.Fatalf("expected total arrival time 03:00:00, got %s", got)
	}
	if got := stringKPI(t, kpis, MeasureAvgArrivalTime); got != "01:30:00" {
		t.Fatalf("expected average arrival time 01:30:00, got %s", got)
	}
}

func TestKPIsDegradeWhenSourceColumnsAbsent(t *testing.T) {
	ds := &Dataset{
		Tickets: []domain.Ticket{
			{
				CreatedAt:  stamp(2026, 3, 2, 8, 0),
				ArrivedAt:  stamp(2026, 3, 2, 9, 0),
				Supplier:   "ACME",
				TotalValue: tpDecimal("99.90"),
			},
		},
		Caps: NewCapabilities([]string{ColCreatedAt, ColCompletedAt}),
	}
	NewDeriver(0, zap.NewNop()).Enrich(ds, refMar16)

	kpis := newTestCalculator().KPIs(ds)

	if got := intKPI(t, kpis, MeasureDistinctSuppliers); got != 0 {
		t.Fatalf("expected supplier count to degrade to 0, got %d", got)
	}
	if got := decimalKPI(t, kpis, MeasureTotalTicketValue); got.StringFixed(2) != "0.00" {
		t.Fatalf("expected total value to degrade to zero, got %s", got)
	}
	if got := stringKPI(t, kpis, MeasureTotalArrivalTime); got != "00:00:00" {
		t.Fatalf("expected arrival time to degrade to 00:00:00, got %s", got)
	}
}

func newTestCalculator() *Calculator {
	return NewCalculator(Targets{SLA: 96, Cleanup: 98}, zap.NewNop())
}

func tpDecimal(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intKPI(t *testing.T, kpis KPIMap, m Measure) int {
	t.Helper()
	v, ok := kpis[m].(int)
	if !ok {
		t.Fatalf("expected int for %s, got %T", m, kpis[m])
	}
	return v
}

func floatKPI(t *testing.T, kpis KPIMap, m Measure) float64 {
	t.Helper()
	v, ok := kpis[m].(float64)
	if !ok {
		t.Fatalf("expected float64 for %s, got %T", m, kpis[m])
	}
	return v
}

func decimalKPI(t *testing.T, kpis KPIMap, m Measure) decimal.Decimal {
	t.Helper()
	v, ok := kpis[m].(decimal.Decimal)
	if !ok {
		t.Fatalf("expected decimal for %s, got %T", m, kpis[m])
	}
	return v
}

func stringKPI(t *testing.T, kpis KPIMap, m Measure) string {
	t.Helper()
	v, ok := kpis[m].(string)
	if !ok {
		t.Fatalf("expected string for %s, got %T", m, kpis[m])
	}
	return v
}
