package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

// DefaultTopN bounds breakdown tables when the caller supplies no limit.
const DefaultTopN = 20

// Dimensions lists every categorical column a breakdown can group by.
// Division and operational unit are derived during normalization; the rest
// map one-to-one onto raw feed columns.
var Dimensions = []string{
	ColDivision,
	ColOperationalUnit,
	ColRegion,
	ColRegional,
	ColType,
	ColSubtype,
	ColPriority,
	ColSupplier,
	ColQueue,
	ColGroup,
	ColOrigin,
	ColClassification,
	ColBusiness,
	ColBase,
	ColSiteName,
	ColCommercialUnit,
	ColResponsible,
	ColRequester,
	ColOriginator,
	ColNetwork,
	ColModule,
	ColStatus,
	ColSubstatus,
}

// BreakdownRow aggregates one distinct dimension value.
type BreakdownRow struct {
	Value              string          `json:"value"`
	Tickets            int             `json:"tickets"`
	StartOnTarget      int             `json:"start_on_target"`
	CompletionOnTarget int             `json:"completion_on_target"`
	StartRate          float64         `json:"start_rate"`
	CompletionRate     float64         `json:"completion_rate"`
	AvgBusinessDays    float64         `json:"avg_business_days"`
	TotalValue         decimal.Decimal `json:"total_value"`
}

// Breakdown is one dimensional table, sorted by ticket count descending.
type Breakdown struct {
	Dimension string         `json:"dimension"`
	Rows      []BreakdownRow `json:"rows"`
}

// MonthlyRow aggregates one creation (year, month) bucket.
type MonthlyRow struct {
	Year               int        `json:"year"`
	Month              time.Month `json:"month"`
	Label              string     `json:"label"`
	Tickets            int        `json:"tickets"`
	StartOnTarget      int        `json:"start_on_target"`
	CompletionOnTarget int        `json:"completion_on_target"`
	StartRate          float64    `json:"start_rate"`
	CompletionRate     float64    `json:"completion_rate"`
}

// ResponsibleCount ranks one responsible party by assigned tickets.
type ResponsibleCount struct {
	Responsible string `json:"responsible"`
	Tickets     int    `json:"tickets"`
}

// AccumulatedRow tracks cumulative intake and completion per calendar day.
type AccumulatedRow struct {
	Date                time.Time `json:"date"`
	Created             int       `json:"created"`
	Completed           int       `json:"completed"`
	CumulativeCreated   int       `json:"cumulative_created"`
	CumulativeCompleted int       `json:"cumulative_completed"`
}

// Aggregator produces dimensional breakdowns and ranking extracts from the
// enriched dataset. It never mutates the dataset.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator builds an aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Breakdown groups the enriched rows by the dimension column, derives the
// per-group rates, sorts by ticket count descending (stable on ties) and
// truncates to topN. An unknown or absent dimension yields an empty table
// with a diagnostic, never an error.
func (a *Aggregator) Breakdown(ds *Dataset, dimension string, topN int) Breakdown {
	result := Breakdown{Dimension: dimension}
	if ds.Enriched == nil {
		a.logger.Warn("breakdown requested before derivation", zap.String("dimension", dimension))
		return result
	}
	if !a.dimensionAvailable(ds, dimension) {
		return result
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	order := make([]string, 0)
	groups := make(map[string]*BreakdownRow)
	businessSums := make(map[string]int)

	for i := range ds.Enriched {
		e := &ds.Enriched[i]
		value, ok := dimensionValue(e, dimension)
		if !ok {
			return Breakdown{Dimension: dimension}
		}
		row, seen := groups[value]
		if !seen {
			row = &BreakdownRow{Value: value, TotalValue: decimal.Zero}
			groups[value] = row
			order = append(order, value)
		}
		row.Tickets++
		if e.StartVerdict == domain.VerdictWithinTarget {
			row.StartOnTarget++
		}
		if e.CompletionVerdict == domain.VerdictWithinTarget {
			row.CompletionOnTarget++
		}
		businessSums[value] += e.BusinessDays
		if e.TotalValue != nil {
			row.TotalValue = row.TotalValue.Add(*e.TotalValue)
		}
	}

	rows := make([]BreakdownRow, 0, len(order))
	for _, value := range order {
		row := groups[value]
		row.StartRate = round2(ratio(row.StartOnTarget, row.Tickets))
		row.CompletionRate = round2(ratio(row.CompletionOnTarget, row.Tickets))
		row.AvgBusinessDays = round2(float64(businessSums[value]) / float64(row.Tickets))
		row.TotalValue = row.TotalValue.Round(2)
		rows = append(rows, *row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Tickets > rows[j].Tickets })
	if len(rows) > topN {
		rows = rows[:topN]
	}
	result.Rows = rows
	return result
}

// MonthlyEvolution groups by (year, month) of creation, ascending, without
// truncation. Records without a creation time are skipped.
func (a *Aggregator) MonthlyEvolution(ds *Dataset) []MonthlyRow {
	if ds.Enriched == nil {
		a.logger.Warn("monthly evolution requested before derivation")
		return nil
	}

	keys := make([]int, 0)
	buckets := make(map[int]*MonthlyRow)
	for i := range ds.Enriched {
		e := &ds.Enriched[i]
		if e.CreatedAt == nil {
			continue
		}
		year, month := e.CreatedAt.Year(), e.CreatedAt.Month()
		key := year*100 + int(month)
		row, seen := buckets[key]
		if !seen {
			row = &MonthlyRow{
				Year:  year,
				Month: month,
				Label: fmt.Sprintf("%s %d", month.String(), year),
			}
			buckets[key] = row
			keys = append(keys, key)
		}
		row.Tickets++
		if e.StartVerdict == domain.VerdictWithinTarget {
			row.StartOnTarget++
		}
		if e.CompletionVerdict == domain.VerdictWithinTarget {
			row.CompletionOnTarget++
		}
	}

	sort.Ints(keys)
	rows := make([]MonthlyRow, 0, len(keys))
	for _, key := range keys {
		row := buckets[key]
		row.StartRate = round2(ratio(row.StartOnTarget, row.Tickets))
		row.CompletionRate = round2(ratio(row.CompletionOnTarget, row.Tickets))
		rows = append(rows, *row)
	}
	return rows
}

// TopResponsibles ranks responsible parties by assigned tickets.
func (a *Aggregator) TopResponsibles(ds *Dataset, topN int) []ResponsibleCount {
	if ds.Enriched == nil || !ds.Caps.Has(ColResponsible) {
		return nil
	}
	order := make([]string, 0)
	counts := make(map[string]int)
	for i := range ds.Enriched {
		name := ds.Enriched[i].Responsible
		if name == "" {
			continue
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	ranking := make([]ResponsibleCount, 0, len(order))
	for _, name := range order {
		ranking = append(ranking, ResponsibleCount{Responsible: name, Tickets: counts[name]})
	}
	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].Tickets > ranking[j].Tickets })
	if topN > 0 && len(ranking) > topN {
		ranking = ranking[:topN]
	}
	return ranking
}

// LateAndOpen extracts the records needing attention: completed late, overdue,
// or open without any forecast.
func (a *Aggregator) LateAndOpen(ds *Dataset) []domain.EnrichedTicket {
	return lo.Filter(ds.Enriched, func(e domain.EnrichedTicket, _ int) bool {
		return e.DelayClass == domain.DelayCompletedLate ||
			e.DelayClass == domain.DelayOverdue ||
			e.DelayClass == domain.DelayOpenNoForecast
	})
}

// MissedStart extracts records whose start verdict missed the target.
func (a *Aggregator) MissedStart(ds *Dataset) []domain.EnrichedTicket {
	return lo.Filter(ds.Enriched, func(e domain.EnrichedTicket, _ int) bool {
		return e.StartVerdict == domain.VerdictMissedTarget
	})
}

// MissedCompletion extracts records whose completion verdict missed the target.
func (a *Aggregator) MissedCompletion(ds *Dataset) []domain.EnrichedTicket {
	return lo.Filter(ds.Enriched, func(e domain.EnrichedTicket, _ int) bool {
		return e.CompletionVerdict == domain.VerdictMissedTarget
	})
}

// AccumulatedByDay builds the cumulative created/completed series across the
// calendar days observed in the dataset.
func (a *Aggregator) AccumulatedByDay(ds *Dataset) []AccumulatedRow {
	if ds.Enriched == nil {
		return nil
	}

	created := make(map[time.Time]int)
	completed := make(map[time.Time]int)
	for i := range ds.Enriched {
		e := &ds.Enriched[i]
		if e.CreatedAt != nil {
			created[DateOnly(*e.CreatedAt)]++
		}
		if e.CompletedAt != nil {
			completed[DateOnly(*e.CompletedAt)]++
		}
	}

	days := make([]time.Time, 0, len(created)+len(completed))
	seen := make(map[time.Time]struct{})
	for day := range created {
		if _, ok := seen[day]; !ok {
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}
	for day := range completed {
		if _, ok := seen[day]; !ok {
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	rows := make([]AccumulatedRow, 0, len(days))
	cumulativeCreated, cumulativeCompleted := 0, 0
	for _, day := range days {
		cumulativeCreated += created[day]
		cumulativeCompleted += completed[day]
		rows = append(rows, AccumulatedRow{
			Date:                day,
			Created:             created[day],
			Completed:           completed[day],
			CumulativeCreated:   cumulativeCreated,
			CumulativeCompleted: cumulativeCompleted,
		})
	}
	return rows
}

func (a *Aggregator) dimensionAvailable(ds *Dataset, dimension string) bool {
	if !lo.Contains(Dimensions, dimension) {
		a.logger.Warn("unknown breakdown dimension", zap.String("dimension", dimension))
		return false
	}
	switch dimension {
	case ColDivision, ColOperationalUnit:
		return true
	default:
		if !ds.Caps.Has(dimension) {
			a.logger.Warn("breakdown dimension absent from source", zap.String("dimension", dimension))
			return false
		}
	}
	return true
}

func dimensionValue(e *domain.EnrichedTicket, dimension string) (string, bool) {
	switch dimension {
	case ColDivision:
		return e.Division, true
	case ColOperationalUnit:
		return e.OperationalUnit, true
	case ColRegion:
		return e.Region, true
	case ColRegional:
		return e.Regional, true
	case ColType:
		return e.Type, true
	case ColSubtype:
		return e.Subtype, true
	case ColPriority:
		return e.Priority, true
	case ColSupplier:
		return e.Supplier, true
	case ColQueue:
		return e.Queue, true
	case ColGroup:
		return e.Group, true
	case ColOrigin:
		return e.Origin, true
	case ColClassification:
		return e.Classification, true
	case ColBusiness:
		return e.Business, true
	case ColBase:
		return e.Base, true
	case ColSiteName:
		return e.SiteName, true
	case ColCommercialUnit:
		return e.CommercialUnit, true
	case ColResponsible:
		return e.Responsible, true
	case ColRequester:
		return e.Requester, true
	case ColOriginator:
		return e.Originator, true
	case ColNetwork:
		return e.Network, true
	case ColModule:
		return e.Module, true
	case ColStatus:
		return e.Status, true
	case ColSubstatus:
		return e.Substatus, true
	default:
		return "", false
	}
}
