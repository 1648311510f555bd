package engine

// Raw feed column names, matched case-sensitively against the source header.
const (
	ColTicketNumber   = "ticket_number"
	ColRegion         = "region"
	ColBase           = "base"
	ColOrigin         = "origin"
	ColClassification = "classification"
	ColRequester      = "requester"
	ColQueue          = "queue"
	ColGroup          = "group"
	ColPriority       = "priority"
	ColSubstatus      = "substatus"
	ColStatus         = "status"
	ColSubtype        = "subtype"
	ColType           = "ticket_type"
	ColBusiness       = "business"
	ColSiteName       = "site_name"
	ColCommercialUnit = "commercial_unit"
	ColCostTime       = "cost_time"
	ColSupplier       = "supplier"
	ColInitialScore   = "initial_score"
	ColOriginator     = "originator"
	ColRegional       = "regional"
	ColResponsible    = "responsible"
	ColNetwork        = "network"
	ColModule         = "module"
	ColTotalValue     = "total_value"

	ColCreatedAt            = "created_at"
	ColArrivedAt            = "arrived_at"
	ColForecastArrivalAt    = "forecast_arrival_at"
	ColForecastCompletionAt = "forecast_completion_at"
	ColCompletedAt          = "completed_at"
	ColClosedAt             = "closed_at"
	ColFirstForwardedAt     = "first_forwarded_at"
)

// Derived dimension columns attached by the normalizer via the region lookup.
const (
	ColDivision        = "division"
	ColOperationalUnit = "operational_unit"
)

// RequiredColumns is the fixed schema the normalizer guarantees, in order.
// Missing columns are synthesized as absent, never rejected.
var RequiredColumns = []string{
	ColTicketNumber,
	ColRegion,
	ColBase,
	ColOrigin,
	ColClassification,
	ColRequester,
	ColQueue,
	ColGroup,
	ColPriority,
	ColSubstatus,
	ColStatus,
	ColSubtype,
	ColType,
	ColBusiness,
	ColSiteName,
	ColCommercialUnit,
	ColCostTime,
	ColSupplier,
	ColInitialScore,
	ColOriginator,
	ColRegional,
	ColResponsible,
	ColNetwork,
	ColModule,
	ColTotalValue,
	ColCreatedAt,
	ColArrivedAt,
	ColForecastArrivalAt,
	ColForecastCompletionAt,
	ColCompletedAt,
	ColClosedAt,
	ColFirstForwardedAt,
}

// DateColumns are coerced to timestamps during normalization.
var DateColumns = []string{
	ColCreatedAt,
	ColArrivedAt,
	ColForecastArrivalAt,
	ColForecastCompletionAt,
	ColCompletedAt,
	ColClosedAt,
	ColFirstForwardedAt,
}

// RawTable is the in-memory input handed to the engine by an I/O collaborator.
// Rows hold the untyped cell values aligned with Columns; short rows are read
// as if padded with empty cells.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// columnIndex maps each column name to its position in the header.
func (t RawTable) columnIndex() map[string]int {
	index := make(map[string]int, len(t.Columns))
	for i, name := range t.Columns {
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	return index
}

// cell returns the value at (row, col index) tolerating ragged rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
