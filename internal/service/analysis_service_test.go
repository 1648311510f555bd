package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/config"
	"github.com/spec-kit/sla-analytics/internal/engine"
	"github.com/spec-kit/sla-analytics/internal/events"
)

func TestAnalysisServiceRun(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.EventType
	record := func(ctx context.Context, event events.Event) error {
		seen = append(seen, event.Type)
		return nil
	}
	dispatcher.Subscribe(events.EventRunStarted, record)
	dispatcher.Subscribe(events.EventRunCompleted, record)

	svc := NewAnalysisService(AnalysisDependencies{
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		Analysis:   testAnalysisConfig(),
	})

	asOf := time.Date(2026, 3, 16, 10, 45, 0, 0, time.UTC)
	report, err := svc.Run(context.Background(), testTable(), RunOptions{
		Source: "fixture.csv",
		AsOf:   &asOf,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.RunID == "" {
		t.Fatal("expected a run id")
	}
	if report.TotalRecords != 3 {
		t.Fatalf("expected 3 records, got %d", report.TotalRecords)
	}
	if report.Source != "fixture.csv" {
		t.Fatalf("expected source label fixture.csv, got %q", report.Source)
	}
	want := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	if !report.ReferenceDate.Equal(want) {
		t.Fatalf("expected reference date truncated to %v, got %v", want, report.ReferenceDate)
	}
	if got := report.KPIs[engine.MeasureTotalTickets]; got != 3 {
		t.Fatalf("expected total_tickets 3, got %v", got)
	}
	if len(report.Breakdowns) != 2 {
		t.Fatalf("expected 2 breakdowns, got %d", len(report.Breakdowns))
	}
	if report.Breakdowns[0].Dimension != "priority" {
		t.Fatalf("expected first breakdown priority, got %q", report.Breakdowns[0].Dimension)
	}
	if len(seen) != 2 || seen[0] != events.EventRunStarted || seen[1] != events.EventRunCompleted {
		t.Fatalf("expected started then completed events, got %v", seen)
	}
}

func TestAnalysisServiceDimensionOverride(t *testing.T) {
	svc := NewAnalysisService(AnalysisDependencies{
		Logger:   zap.NewNop(),
		Analysis: testAnalysisConfig(),
	})

	report, err := svc.Run(context.Background(), testTable(), RunOptions{
		Dimensions: []string{"region"},
		TopN:       1,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Breakdowns) != 1 {
		t.Fatalf("expected 1 breakdown, got %d", len(report.Breakdowns))
	}
	if report.Breakdowns[0].Dimension != "region" {
		t.Fatalf("expected region breakdown, got %q", report.Breakdowns[0].Dimension)
	}
	if len(report.Breakdowns[0].Rows) != 1 {
		t.Fatalf("expected truncation to one row, got %d", len(report.Breakdowns[0].Rows))
	}
}

func TestAnalysisServiceBacklogAlert(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var alerts []events.Event
	dispatcher.Subscribe(events.EventBacklogThreshold, func(ctx context.Context, event events.Event) error {
		alerts = append(alerts, event)
		return nil
	})

	cfg := testAnalysisConfig()
	cfg.BacklogAlert = 1
	svc := NewAnalysisService(AnalysisDependencies{
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		Analysis:   cfg,
	})

	if _, err := svc.Run(context.Background(), testTable(), RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected one backlog alert, got %d", len(alerts))
	}
	payload, ok := alerts[0].Payload.(events.BacklogThresholdPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", alerts[0].Payload)
	}
	if payload.Backlog != 2 || payload.Threshold != 1 {
		t.Fatalf("expected backlog 2 over threshold 1, got %+v", payload)
	}
}

func TestAnalysisServiceRunFromSource(t *testing.T) {
	svc := NewAnalysisService(AnalysisDependencies{
		Source:      fakeSource{table: testTable()},
		Logger:      zap.NewNop(),
		Analysis:    testAnalysisConfig(),
		SourceLabel: "raw_tickets",
	})

	report, err := svc.RunFromSource(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run from source: %v", err)
	}
	if report.Source != "raw_tickets" {
		t.Fatalf("expected configured source label, got %q", report.Source)
	}
	if report.TotalRecords != 3 {
		t.Fatalf("expected 3 records, got %d", report.TotalRecords)
	}
}

func TestAnalysisServiceRunFromSourceWithoutSource(t *testing.T) {
	svc := NewAnalysisService(AnalysisDependencies{
		Logger:   zap.NewNop(),
		Analysis: testAnalysisConfig(),
	})
	if _, err := svc.RunFromSource(context.Background(), RunOptions{}); err == nil {
		t.Fatal("expected error without a configured source")
	}
}

type fakeSource struct {
	table engine.RawTable
}

func (f fakeSource) FetchTable(ctx context.Context) (engine.RawTable, error) {
	return f.table, nil
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		SLATarget:          96,
		CleanupTarget:      98,
		PendingClosureDays: 30,
		TopN:               20,
		TopResponsibles:    15,
		Dimensions:         []string{"priority", "division"},
	}
}

// testTable carries one completed-on-time ticket and two still open, so a
// run yields a backlog of two.
func testTable() engine.RawTable {
	return engine.RawTable{
		Columns: []string{"ticket_number", "priority", "region", "created_at", "forecast_completion_at", "completed_at"},
		Rows: [][]string{
			{"INC-1", "P1", "SP", "2026-03-02 08:00:00", "2026-03-10 00:00:00", "2026-03-06 12:00:00"},
			{"INC-2", "P1", "SP", "2026-03-03 08:00:00", "2026-03-05 00:00:00", ""},
			{"INC-3", "P2", "BA", "2026-03-04 08:00:00", "", ""},
		},
	}
}
