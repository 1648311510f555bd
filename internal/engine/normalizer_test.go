package engine

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

func TestNormalizeSynthesizesMissingColumns(t *testing.T) {
	table := RawTable{
		Columns: []string{ColTicketNumber, ColRegion, ColCreatedAt},
		Rows:    [][]string{{"T-1", "SP", "2026-01-05 08:00:00"}},
	}

	ds := newTestNormalizer().Normalize(table)

	if ds.Report.Rows != 1 {
		t.Fatalf("expected 1 row, got %d", ds.Report.Rows)
	}
	if want := len(RequiredColumns) - 3; len(ds.Report.MissingColumns) != want {
		t.Fatalf("expected %d missing columns, got %d", want, len(ds.Report.MissingColumns))
	}
	if ds.Caps.Has(ColCompletedAt) {
		t.Fatalf("expected capabilities to reflect the source header, not the synthesized schema")
	}

	ticket := ds.Tickets[0]
	if ticket.Number != "T-1" {
		t.Fatalf("expected ticket number T-1, got %q", ticket.Number)
	}
	if ticket.Supplier != "" || ticket.CompletedAt != nil || ticket.TotalValue != nil {
		t.Fatalf("expected synthesized columns to read as absent")
	}
}

func TestNormalizeParsesDateLayouts(t *testing.T) {
	table := RawTable{
		Columns: []string{ColCreatedAt, ColCompletedAt},
		Rows: [][]string{
			{"2026-01-05 08:00:00", "not-a-date"},
			{"05/01/2026", ""},
		},
	}

	ds := newTestNormalizer().Normalize(table)

	want := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	if ds.Tickets[0].CreatedAt == nil || !ds.Tickets[0].CreatedAt.Equal(want) {
		t.Fatalf("expected created_at %v, got %v", want, ds.Tickets[0].CreatedAt)
	}
	dayFirst := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	if ds.Tickets[1].CreatedAt == nil || !ds.Tickets[1].CreatedAt.Equal(dayFirst) {
		t.Fatalf("expected day-first created_at %v, got %v", dayFirst, ds.Tickets[1].CreatedAt)
	}

	if ds.Tickets[0].CompletedAt != nil {
		t.Fatalf("expected unparseable completed_at to be absent")
	}
	stat := ds.Report.DateStats[ColCompletedAt]
	if stat.Parsed != 0 || stat.Failed != 1 {
		t.Fatalf("expected completed_at stats {0 1}, got %+v", stat)
	}
	created := ds.Report.DateStats[ColCreatedAt]
	if created.Parsed != 2 || created.Failed != 0 {
		t.Fatalf("expected created_at stats {2 0}, got %+v", created)
	}
}

func TestNormalizeEmptyDateCellsAreNotFailures(t *testing.T) {
	table := RawTable{
		Columns: []string{ColCompletedAt},
		Rows:    [][]string{{""}, {"  "}},
	}

	ds := newTestNormalizer().Normalize(table)
	stat := ds.Report.DateStats[ColCompletedAt]
	if stat.Parsed != 0 || stat.Failed != 0 {
		t.Fatalf("expected empty cells to stay uncounted, got %+v", stat)
	}
}

func TestNormalizeMoneyFormats(t *testing.T) {
	table := RawTable{
		Columns: []string{ColTotalValue},
		Rows:    [][]string{{"1234.56"}, {"1.234,56"}, {"abc"}, {""}},
	}

	ds := newTestNormalizer().Normalize(table)

	if ds.Tickets[0].TotalValue == nil || ds.Tickets[0].TotalValue.StringFixed(2) != "1234.56" {
		t.Fatalf("expected plain decimal 1234.56, got %v", ds.Tickets[0].TotalValue)
	}
	if ds.Tickets[1].TotalValue == nil || ds.Tickets[1].TotalValue.StringFixed(2) != "1234.56" {
		t.Fatalf("expected comma-decimal 1234.56, got %v", ds.Tickets[1].TotalValue)
	}
	if ds.Tickets[2].TotalValue != nil || ds.Tickets[3].TotalValue != nil {
		t.Fatalf("expected malformed and empty values to stay absent")
	}
	if ds.Report.ValueStat.Parsed != 2 || ds.Report.ValueStat.Failed != 1 {
		t.Fatalf("expected value stats {2 1}, got %+v", ds.Report.ValueStat)
	}
}

func TestNormalizeAssignsRegionDivision(t *testing.T) {
	table := RawTable{
		Columns: []string{ColRegion},
		Rows:    [][]string{{"SP"}, {"  BA "}, {"XX"}},
	}

	ds := newTestNormalizer().Normalize(table)

	if ds.Tickets[0].Division != "DIV 08" || ds.Tickets[0].OperationalUnit != "GO 03" {
		t.Fatalf("expected SP in DIV 08 / GO 03, got %s / %s", ds.Tickets[0].Division, ds.Tickets[0].OperationalUnit)
	}
	if ds.Tickets[1].Division != "DIV 02" {
		t.Fatalf("expected trimmed BA in DIV 02, got %s", ds.Tickets[1].Division)
	}
	if ds.Tickets[2].Division != domain.UndefinedDivision || ds.Tickets[2].OperationalUnit != domain.UndefinedOperationalUnit {
		t.Fatalf("expected sentinels for unknown region, got %s / %s", ds.Tickets[2].Division, ds.Tickets[2].OperationalUnit)
	}
	if ds.Report.UnknownRegions != 1 {
		t.Fatalf("expected 1 unknown region, got %d", ds.Report.UnknownRegions)
	}
}

func TestNormalizeToleratesRaggedRows(t *testing.T) {
	table := RawTable{
		Columns: []string{ColTicketNumber, ColRegion, ColSupplier},
		Rows:    [][]string{{"T-1"}, {"T-2", "RJ", "ACME", "extra"}},
	}

	ds := newTestNormalizer().Normalize(table)

	if ds.Tickets[0].Region != "" || ds.Tickets[0].Supplier != "" {
		t.Fatalf("expected short row cells to read as empty")
	}
	if ds.Tickets[1].Supplier != "ACME" {
		t.Fatalf("expected ACME, got %q", ds.Tickets[1].Supplier)
	}
}

func newTestNormalizer() *Normalizer {
	return NewNormalizer(domain.DefaultRegionLookup(), zap.NewNop())
}
