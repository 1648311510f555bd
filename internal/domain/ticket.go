package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket is one normalized service-ticket record as handed to the deriver.
// String fields hold the raw feed value; timestamp fields are nil when the
// source value was missing or unparseable. Division and OperationalUnit are
// attached during normalization from the region lookup.
type Ticket struct {
	Number          string `json:"ticket_number"`
	Region          string `json:"region"`
	Division        string `json:"division"`
	OperationalUnit string `json:"operational_unit"`
	Base            string `json:"base"`
	Origin          string `json:"origin"`
	Classification  string `json:"classification"`
	Requester       string `json:"requester"`
	Queue           string `json:"queue"`
	Group           string `json:"group"`
	Priority        string `json:"priority"`
	Substatus       string `json:"substatus"`
	Status          string `json:"status"`
	Subtype         string `json:"subtype"`
	Type            string `json:"ticket_type"`
	Business        string `json:"business"`
	SiteName        string `json:"site_name"`
	CommercialUnit  string `json:"commercial_unit"`
	CostTime        string `json:"cost_time"`
	Supplier        string `json:"supplier"`
	InitialScore    string `json:"initial_score"`
	Originator      string `json:"originator"`
	Regional        string `json:"regional"`
	Responsible     string `json:"responsible"`
	Network         string `json:"network"`
	Module          string `json:"module"`

	TotalValue *decimal.Decimal `json:"total_value"`

	CreatedAt            *time.Time `json:"created_at"`
	ArrivedAt            *time.Time `json:"arrived_at"`
	ForecastArrivalAt    *time.Time `json:"forecast_arrival_at"`
	ForecastCompletionAt *time.Time `json:"forecast_completion_at"`
	CompletedAt          *time.Time `json:"completed_at"`
	ClosedAt             *time.Time `json:"closed_at"`
	FirstForwardedAt     *time.Time `json:"first_forwarded_at"`
}
