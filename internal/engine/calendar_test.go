package engine

import (
	"testing"
	"time"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

func TestCalendarSpanCoversCreationRange(t *testing.T) {
	ds := &Dataset{Tickets: []domain.Ticket{
		{CreatedAt: stamp(2026, 3, 9, 14, 0)},
		{CreatedAt: stamp(2026, 3, 6, 8, 0)},
		{},
	}}

	days := CalendarSpan(ds)

	if len(days) != 4 {
		t.Fatalf("expected 4 days from March 6 to March 9, got %d", len(days))
	}
	if !days[0].Date.Equal(time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected the span to start on March 6, got %v", days[0].Date)
	}
	if !days[0].BusinessDay {
		t.Fatalf("expected Friday March 6 to be a business day")
	}
	if days[1].BusinessDay || days[2].BusinessDay {
		t.Fatalf("expected the weekend to be flagged off")
	}
	if days[0].Period != "2026-03" {
		t.Fatalf("expected period 2026-03, got %s", days[0].Period)
	}
	if days[0].Year != 2026 || days[0].MonthName != "March" || days[0].Weekday != time.Friday {
		t.Fatalf("unexpected date attributes: %+v", days[0])
	}
	if days[0].ISOWeek != 10 || days[3].ISOWeek != 11 {
		t.Fatalf("expected ISO weeks 10 and 11, got %d and %d", days[0].ISOWeek, days[3].ISOWeek)
	}
}

func TestCalendarSpanEmptyWithoutCreationTimes(t *testing.T) {
	ds := &Dataset{Tickets: []domain.Ticket{{}, {}}}
	if days := CalendarSpan(ds); len(days) != 0 {
		t.Fatalf("expected no calendar rows without creation times, got %d", len(days))
	}
}
