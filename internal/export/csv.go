package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/sla-analytics/internal/domain"
	"github.com/spec-kit/sla-analytics/internal/engine"
)

const timestampLayout = "2006-01-02 15:04:05"

var enrichedHeader = []string{
	"ticket_number", "region", "division", "operational_unit", "base",
	"origin", "classification", "requester", "queue", "group", "priority",
	"substatus", "status", "subtype", "ticket_type", "business", "site_name",
	"commercial_unit", "cost_time", "supplier", "initial_score", "originator",
	"regional", "responsible", "network", "module", "total_value",
	"created_at", "arrived_at", "forecast_arrival_at", "forecast_completion_at",
	"completed_at", "closed_at", "first_forwarded_at",
	"lifecycle_status", "closing_status", "financial_status", "in_backlog",
	"pending_closure", "delay_class", "delay_days", "forecast_delay_days",
	"start_verdict", "completion_verdict", "start_delay_days",
	"completion_delay_days", "arrival_days", "completion_days", "closing_days",
	"service_days", "arrival_seconds", "business_days", "age_days",
	"age_bucket", "near_due",
}

var lateAndOpenHeader = []string{
	"ticket_number", "region", "division", "operational_unit", "supplier",
	"responsible", "status", "created_at", "forecast_completion_at",
	"completed_at", "delay_class", "delay_days", "age_days",
}

var calendarHeader = []string{
	"date", "year", "month", "month_name", "weekday", "business_day",
	"iso_year", "iso_week", "period",
}

var missedStartHeader = []string{
	"ticket_number", "region", "division", "operational_unit", "supplier",
	"responsible", "created_at", "forecast_arrival_at", "first_forwarded_at",
	"arrived_at", "start_delay_days",
}

var missedCompletionHeader = []string{
	"ticket_number", "region", "division", "operational_unit", "supplier",
	"responsible", "created_at", "forecast_completion_at", "completed_at",
	"completion_delay_days",
}

var accumulatedHeader = []string{
	"date", "created", "completed", "cumulative_created", "cumulative_completed",
}

// WriteEnrichedCSV exports every normalized record together with its derived
// attributes, one column per field.
func WriteEnrichedCSV(path string, tickets []domain.EnrichedTicket) error {
	records := make([][]string, 0, len(tickets))
	for i := range tickets {
		records = append(records, enrichedRecord(&tickets[i]))
	}
	return writeCSV(path, enrichedHeader, records)
}

// WriteLateAndOpenCSV exports the actionable extract with the columns an
// operator needs to chase a delayed ticket.
func WriteLateAndOpenCSV(path string, tickets []domain.EnrichedTicket) error {
	records := make([][]string, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		records = append(records, []string{
			t.Number,
			t.Region,
			t.Division,
			t.OperationalUnit,
			t.Supplier,
			t.Responsible,
			t.Status,
			formatInstant(t.CreatedAt),
			formatInstant(t.ForecastCompletionAt),
			formatInstant(t.CompletedAt),
			string(t.DelayClass),
			strconv.Itoa(t.DelayDays),
			strconv.Itoa(t.AgeDays),
		})
	}
	return writeCSV(path, lateAndOpenHeader, records)
}

// WriteBreakdownCSV exports one dimensional table.
func WriteBreakdownCSV(path string, breakdown engine.Breakdown) error {
	header := []string{
		breakdown.Dimension, "tickets", "start_on_target",
		"completion_on_target", "start_rate", "completion_rate",
		"avg_business_days", "total_value",
	}
	records := make([][]string, 0, len(breakdown.Rows))
	for _, row := range breakdown.Rows {
		records = append(records, []string{
			row.Value,
			strconv.Itoa(row.Tickets),
			strconv.Itoa(row.StartOnTarget),
			strconv.Itoa(row.CompletionOnTarget),
			formatRate(row.StartRate),
			formatRate(row.CompletionRate),
			formatRate(row.AvgBusinessDays),
			row.TotalValue.StringFixed(2),
		})
	}
	return writeCSV(path, header, records)
}

// WriteMissedStartCSV exports the records that missed the start target.
func WriteMissedStartCSV(path string, tickets []domain.EnrichedTicket) error {
	records := make([][]string, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		records = append(records, []string{
			t.Number,
			t.Region,
			t.Division,
			t.OperationalUnit,
			t.Supplier,
			t.Responsible,
			formatInstant(t.CreatedAt),
			formatInstant(t.ForecastArrivalAt),
			formatInstant(t.FirstForwardedAt),
			formatInstant(t.ArrivedAt),
			strconv.Itoa(t.StartDelayDays),
		})
	}
	return writeCSV(path, missedStartHeader, records)
}

// WriteMissedCompletionCSV exports the records that missed the completion target.
func WriteMissedCompletionCSV(path string, tickets []domain.EnrichedTicket) error {
	records := make([][]string, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		records = append(records, []string{
			t.Number,
			t.Region,
			t.Division,
			t.OperationalUnit,
			t.Supplier,
			t.Responsible,
			formatInstant(t.CreatedAt),
			formatInstant(t.ForecastCompletionAt),
			formatInstant(t.CompletedAt),
			strconv.Itoa(t.CompletionDelayDays),
		})
	}
	return writeCSV(path, missedCompletionHeader, records)
}

// WriteAccumulatedCSV exports the cumulative intake/completion series.
func WriteAccumulatedCSV(path string, rows []engine.AccumulatedRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Date.Format("2006-01-02"),
			strconv.Itoa(row.Created),
			strconv.Itoa(row.Completed),
			strconv.Itoa(row.CumulativeCreated),
			strconv.Itoa(row.CumulativeCompleted),
		})
	}
	return writeCSV(path, accumulatedHeader, records)
}

// WriteCalendarCSV exports the dataset's calendar span.
func WriteCalendarCSV(path string, days []engine.CalendarDay) error {
	records := make([][]string, 0, len(days))
	for _, day := range days {
		records = append(records, []string{
			day.Date.Format("2006-01-02"),
			strconv.Itoa(day.Year),
			strconv.Itoa(int(day.Month)),
			day.MonthName,
			day.Weekday.String(),
			strconv.FormatBool(day.BusinessDay),
			strconv.Itoa(day.ISOYear),
			strconv.Itoa(day.ISOWeek),
			day.Period,
		})
	}
	return writeCSV(path, calendarHeader, records)
}

func writeCSV(path string, header []string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func enrichedRecord(t *domain.EnrichedTicket) []string {
	return []string{
		t.Number, t.Region, t.Division, t.OperationalUnit, t.Base,
		t.Origin, t.Classification, t.Requester, t.Queue, t.Group, t.Priority,
		t.Substatus, t.Status, t.Subtype, t.Type, t.Business, t.SiteName,
		t.CommercialUnit, t.CostTime, t.Supplier, t.InitialScore, t.Originator,
		t.Regional, t.Responsible, t.Network, t.Module, formatMoney(t.TotalValue),
		formatInstant(t.CreatedAt), formatInstant(t.ArrivedAt),
		formatInstant(t.ForecastArrivalAt), formatInstant(t.ForecastCompletionAt),
		formatInstant(t.CompletedAt), formatInstant(t.ClosedAt),
		formatInstant(t.FirstForwardedAt),
		string(t.Lifecycle), string(t.Closing), string(t.Financial),
		strconv.FormatBool(t.InBacklog),
		strconv.FormatBool(t.PendingClosure),
		string(t.DelayClass),
		strconv.Itoa(t.DelayDays),
		strconv.Itoa(t.ForecastDelayDays),
		string(t.StartVerdict), string(t.CompletionVerdict),
		strconv.Itoa(t.StartDelayDays),
		strconv.Itoa(t.CompletionDelayDays),
		strconv.Itoa(t.ArrivalDays),
		strconv.Itoa(t.CompletionDays),
		strconv.Itoa(t.ClosingDays),
		strconv.Itoa(t.ServiceDays),
		strconv.FormatInt(t.ArrivalSeconds, 10),
		strconv.Itoa(t.BusinessDays),
		strconv.Itoa(t.AgeDays),
		string(t.AgeBucket),
		strconv.FormatBool(t.NearDue),
	}
}

func formatInstant(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(timestampLayout)
}

func formatMoney(value *decimal.Decimal) string {
	if value == nil {
		return ""
	}
	return value.StringFixed(2)
}

func formatRate(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
