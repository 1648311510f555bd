package engine

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

// dateLayouts are tried in order; the feed historically carries day-first
// values while the database source renders timestamps as Postgres text.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseStat tallies coercion outcomes for one column.
type ParseStat struct {
	Parsed int `json:"parsed"`
	Failed int `json:"failed"`
}

// NormalizeReport is the diagnostic trail of one normalization pass.
type NormalizeReport struct {
	Rows           int                  `json:"rows"`
	MissingColumns []string             `json:"missing_columns"`
	DateStats      map[string]ParseStat `json:"date_stats"`
	ValueStat      ParseStat            `json:"value_stat"`
	UnknownRegions int                  `json:"unknown_regions"`
}

// Dataset is the engine's working set for one run. Enriched stays nil until
// the deriver has run.
type Dataset struct {
	Tickets          []domain.Ticket
	Caps             Capabilities
	Report           NormalizeReport
	Enriched         []domain.EnrichedTicket
	ReferenceInstant time.Time
}

// Normalizer turns a raw table into typed records with a guaranteed schema.
type Normalizer struct {
	lookup domain.RegionLookup
	logger *zap.Logger
}

// NewNormalizer builds a normalizer around the given region lookup.
func NewNormalizer(lookup domain.RegionLookup, logger *zap.Logger) *Normalizer {
	return &Normalizer{lookup: lookup, logger: logger}
}

// Normalize coerces every expected column, synthesizing absent ones, and
// attaches the region assignment per record. Schema gaps and unparseable
// values degrade to absent values with a diagnostic, never an error.
func (n *Normalizer) Normalize(table RawTable) *Dataset {
	index := table.columnIndex()
	caps := NewCapabilities(table.Columns)

	report := NormalizeReport{
		Rows:      len(table.Rows),
		DateStats: make(map[string]ParseStat, len(DateColumns)),
	}
	for _, column := range RequiredColumns {
		if !caps.Has(column) {
			report.MissingColumns = append(report.MissingColumns, column)
		}
	}
	if len(report.MissingColumns) > 0 {
		n.logger.Warn("source lacks expected columns; synthesizing as absent",
			zap.Strings("columns", report.MissingColumns))
	}

	col := func(row []string, name string) string {
		idx, ok := index[name]
		if !ok {
			return ""
		}
		return strings.TrimSpace(cell(row, idx))
	}

	parseDate := func(row []string, name string) *time.Time {
		raw := col(row, name)
		if raw == "" {
			return nil
		}
		stat := report.DateStats[name]
		ts, ok := parseTimestamp(raw)
		if !ok {
			stat.Failed++
			report.DateStats[name] = stat
			return nil
		}
		stat.Parsed++
		report.DateStats[name] = stat
		return ts
	}

	tickets := make([]domain.Ticket, 0, len(table.Rows))
	for _, row := range table.Rows {
		ticket := domain.Ticket{
			Number:         col(row, ColTicketNumber),
			Region:         col(row, ColRegion),
			Base:           col(row, ColBase),
			Origin:         col(row, ColOrigin),
			Classification: col(row, ColClassification),
			Requester:      col(row, ColRequester),
			Queue:          col(row, ColQueue),
			Group:          col(row, ColGroup),
			Priority:       col(row, ColPriority),
			Substatus:      col(row, ColSubstatus),
			Status:         col(row, ColStatus),
			Subtype:        col(row, ColSubtype),
			Type:           col(row, ColType),
			Business:       col(row, ColBusiness),
			SiteName:       col(row, ColSiteName),
			CommercialUnit: col(row, ColCommercialUnit),
			CostTime:       col(row, ColCostTime),
			Supplier:       col(row, ColSupplier),
			InitialScore:   col(row, ColInitialScore),
			Originator:     col(row, ColOriginator),
			Regional:       col(row, ColRegional),
			Responsible:    col(row, ColResponsible),
			Network:        col(row, ColNetwork),
			Module:         col(row, ColModule),

			CreatedAt:            parseDate(row, ColCreatedAt),
			ArrivedAt:            parseDate(row, ColArrivedAt),
			ForecastArrivalAt:    parseDate(row, ColForecastArrivalAt),
			ForecastCompletionAt: parseDate(row, ColForecastCompletionAt),
			CompletedAt:          parseDate(row, ColCompletedAt),
			ClosedAt:             parseDate(row, ColClosedAt),
			FirstForwardedAt:     parseDate(row, ColFirstForwardedAt),
		}

		if raw := col(row, ColTotalValue); raw != "" {
			if value, ok := parseMoney(raw); ok {
				ticket.TotalValue = &value
				report.ValueStat.Parsed++
			} else {
				report.ValueStat.Failed++
			}
		}

		assignment, ok := n.lookup.Locate(ticket.Region)
		if !ok {
			assignment = domain.RegionAssignment{
				Division:        domain.UndefinedDivision,
				OperationalUnit: domain.UndefinedOperationalUnit,
			}
			report.UnknownRegions++
		}
		ticket.Division = assignment.Division
		ticket.OperationalUnit = assignment.OperationalUnit

		tickets = append(tickets, ticket)
	}

	for _, column := range DateColumns {
		stat := report.DateStats[column]
		if stat.Failed > 0 {
			n.logger.Warn("unparseable date values became absent",
				zap.String("column", column),
				zap.Int("parsed", stat.Parsed),
				zap.Int("failed", stat.Failed))
		}
	}

	n.logger.Info("normalized raw table",
		zap.Int("rows", report.Rows),
		zap.Int("missing_columns", len(report.MissingColumns)),
		zap.Int("unknown_regions", report.UnknownRegions))

	return &Dataset{Tickets: tickets, Caps: caps, Report: report}
}

func parseTimestamp(raw string) (*time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts, true
		}
	}
	return nil, false
}

// parseMoney accepts plain decimal values and the feed's comma-decimal form.
func parseMoney(raw string) (decimal.Decimal, bool) {
	if value, err := decimal.NewFromString(raw); err == nil {
		return value, true
	}
	if strings.Contains(raw, ",") {
		swapped := strings.ReplaceAll(strings.ReplaceAll(raw, ".", ""), ",", ".")
		if value, err := decimal.NewFromString(swapped); err == nil {
			return value, true
		}
	}
	return decimal.Decimal{}, false
}
