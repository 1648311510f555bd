package engine

import (
	"fmt"
	"time"
)

// DateOnly truncates a timestamp to midnight of its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// wholeDays is the whole-day difference to − from, truncated toward zero.
func wholeDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// clampDays enforces the non-negative duration invariant.
func clampDays(days int) int {
	if days < 0 {
		return 0
	}
	return days
}

// businessDaysBetween counts weekdays in the half-open date interval
// [start, end). Equal dates yield 0 and the count is never negative.
func businessDaysBetween(start, end time.Time) int {
	startDay := DateOnly(start)
	endDay := DateOnly(end)
	if !startDay.Before(endDay) {
		return 0
	}

	count := 0
	for day := startDay; day.Before(endDay); day = day.AddDate(0, 0, 1) {
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

// FormatHMS renders a second count as zero-padded HH:MM:SS using integer
// division only. Hours grow past two digits rather than wrapping.
func FormatHMS(totalSeconds int64) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
