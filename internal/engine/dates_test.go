package engine

import (
	"testing"
	"time"
)

func TestFormatHMSNinetyMinutes(t *testing.T) {
	if got := FormatHMS(5400); got != "01:30:00" {
		t.Fatalf("expected 01:30:00, got %s", got)
	}
}

func TestFormatHMSZeroAndNegative(t *testing.T) {
	if got := FormatHMS(0); got != "00:00:00" {
		t.Fatalf("expected 00:00:00 for zero, got %s", got)
	}
	if got := FormatHMS(-30); got != "00:00:00" {
		t.Fatalf("expected 00:00:00 for negative seconds, got %s", got)
	}
}

func TestFormatHMSHoursGrowPastOneDay(t *testing.T) {
	if got := FormatHMS(25*3600 + 5); got != "25:00:05" {
		t.Fatalf("expected 25:00:05, got %s", got)
	}
}

func TestBusinessDaysEqualDatesYieldZero(t *testing.T) {
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	if got := businessDaysBetween(day, day); got != 0 {
		t.Fatalf("expected 0 business days for equal dates, got %d", got)
	}
	later := time.Date(2026, 3, 4, 23, 0, 0, 0, time.UTC)
	if got := businessDaysBetween(day, later); got != 0 {
		t.Fatalf("expected 0 business days within one date, got %d", got)
	}
}

func TestBusinessDaysMondayToFriday(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	friday := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if got := businessDaysBetween(monday, friday); got != 4 {
		t.Fatalf("expected 4 business days Monday to Friday, got %d", got)
	}
}

func TestBusinessDaysSkipWeekend(t *testing.T) {
	friday := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	nextMonday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if got := businessDaysBetween(friday, nextMonday); got != 1 {
		t.Fatalf("expected 1 business day across the weekend, got %d", got)
	}
}

func TestBusinessDaysEndBeforeStartYieldsZero(t *testing.T) {
	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if got := businessDaysBetween(start, end); got != 0 {
		t.Fatalf("expected 0 business days for inverted interval, got %d", got)
	}
}

func TestBusinessDaysIgnoreTimeOfDay(t *testing.T) {
	friday := time.Date(2026, 3, 6, 23, 50, 0, 0, time.UTC)
	nextMonday := time.Date(2026, 3, 9, 0, 10, 0, 0, time.UTC)
	if got := businessDaysBetween(friday, nextMonday); got != 1 {
		t.Fatalf("expected time of day to be irrelevant, got %d", got)
	}
}

func TestDateOnlyTruncatesToMidnight(t *testing.T) {
	instant := time.Date(2026, 3, 4, 17, 42, 31, 900, time.UTC)
	got := DateOnly(instant)
	want := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWholeDaysTruncatesPartialDays(t *testing.T) {
	from := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	to := from.Add(47 * time.Hour)
	if got := wholeDays(from, to); got != 1 {
		t.Fatalf("expected 1 whole day in 47h, got %d", got)
	}
	if got := clampDays(wholeDays(to, from)); got != 0 {
		t.Fatalf("expected clamped negative span to be 0, got %d", got)
	}
}
