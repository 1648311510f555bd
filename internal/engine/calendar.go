package engine

import (
	"time"
)

// CalendarDay describes one calendar date in the span covered by the dataset.
type CalendarDay struct {
	Date        time.Time    `json:"date"`
	Year        int          `json:"year"`
	Month       time.Month   `json:"month"`
	MonthName   string       `json:"month_name"`
	Weekday     time.Weekday `json:"weekday"`
	BusinessDay bool         `json:"business_day"`
	ISOYear     int          `json:"iso_year"`
	ISOWeek     int          `json:"iso_week"`
	Period      string       `json:"period"`
}

// CalendarSpan enumerates every date from the earliest to the latest creation
// time in the dataset, flagging weekdays and attaching the ISO week and the
// month period label. Datasets without any creation time yield no rows.
func CalendarSpan(ds *Dataset) []CalendarDay {
	var minDay, maxDay time.Time
	found := false
	for i := range ds.Tickets {
		created := ds.Tickets[i].CreatedAt
		if created == nil {
			continue
		}
		day := DateOnly(*created)
		if !found {
			minDay, maxDay = day, day
			found = true
			continue
		}
		if day.Before(minDay) {
			minDay = day
		}
		if day.After(maxDay) {
			maxDay = day
		}
	}
	if !found {
		return nil
	}

	days := make([]CalendarDay, 0, int(maxDay.Sub(minDay).Hours()/24)+1)
	for day := minDay; !day.After(maxDay); day = day.AddDate(0, 0, 1) {
		isoYear, isoWeek := day.ISOWeek()
		days = append(days, CalendarDay{
			Date:        day,
			Year:        day.Year(),
			Month:       day.Month(),
			MonthName:   day.Month().String(),
			Weekday:     day.Weekday(),
			BusinessDay: day.Weekday() != time.Saturday && day.Weekday() != time.Sunday,
			ISOYear:     isoYear,
			ISOWeek:     isoWeek,
			Period:      day.Format("2006-01"),
		})
	}
	return days
}
