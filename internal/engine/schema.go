package engine

import "sort"

// DerivedField names every attribute the deriver attaches to a record.
type DerivedField string

const (
	FieldLifecycle           DerivedField = "lifecycle_status"
	FieldClosing             DerivedField = "closing_status"
	FieldFinancial           DerivedField = "financial_status"
	FieldBacklog             DerivedField = "in_backlog"
	FieldPendingClosure      DerivedField = "pending_closure"
	FieldDelayClass          DerivedField = "delay_class"
	FieldDelayDays           DerivedField = "delay_days"
	FieldForecastDelayDays   DerivedField = "forecast_delay_days"
	FieldStartVerdict        DerivedField = "start_verdict"
	FieldCompletionVerdict   DerivedField = "completion_verdict"
	FieldStartDelayDays      DerivedField = "start_delay_days"
	FieldCompletionDelayDays DerivedField = "completion_delay_days"
	FieldArrivalDays         DerivedField = "arrival_days"
	FieldCompletionDays      DerivedField = "completion_days"
	FieldClosingDays         DerivedField = "closing_days"
	FieldServiceDays         DerivedField = "service_days"
	FieldArrivalSeconds      DerivedField = "arrival_seconds"
	FieldBusinessDays        DerivedField = "business_days"
	FieldAgeDays             DerivedField = "age_days"
	FieldAgeBucket           DerivedField = "age_bucket"
	FieldNearDue             DerivedField = "near_due"
	FieldAdjustedCompletion  DerivedField = "adjusted_completed_at"
)

// DerivedSchema enumerates, per derived field, the raw columns it reads.
// A field whose prerequisites are absent from the source still gets a value
// (the absence semantics of the rules apply), but the gap is diagnosable up
// front instead of per KPI.
var DerivedSchema = map[DerivedField][]string{
	FieldLifecycle:           {ColCompletedAt},
	FieldClosing:             {ColCompletedAt, ColClosedAt},
	FieldFinancial:           {ColClosedAt},
	FieldBacklog:             {ColCompletedAt, ColClosedAt},
	FieldPendingClosure:      {ColCompletedAt, ColClosedAt},
	FieldDelayClass:          {ColCompletedAt, ColForecastCompletionAt, ColCreatedAt},
	FieldDelayDays:           {ColCompletedAt, ColForecastCompletionAt, ColCreatedAt},
	FieldForecastDelayDays:   {ColForecastCompletionAt},
	FieldStartVerdict:        {ColForecastArrivalAt, ColFirstForwardedAt, ColArrivedAt},
	FieldCompletionVerdict:   {ColForecastCompletionAt, ColCompletedAt},
	FieldStartDelayDays:      {ColForecastArrivalAt, ColArrivedAt},
	FieldCompletionDelayDays: {ColForecastCompletionAt, ColCompletedAt},
	FieldArrivalDays:         {ColCreatedAt, ColArrivedAt},
	FieldCompletionDays:      {ColCreatedAt, ColCompletedAt},
	FieldClosingDays:         {ColCreatedAt, ColClosedAt},
	FieldServiceDays:         {ColCreatedAt, ColCompletedAt},
	FieldArrivalSeconds:      {ColCreatedAt, ColArrivedAt},
	FieldBusinessDays:        {ColCreatedAt, ColCompletedAt},
	FieldAgeDays:             {ColCreatedAt},
	FieldAgeBucket:           {ColCreatedAt, ColCompletedAt},
	FieldNearDue:             {ColCreatedAt},
	FieldAdjustedCompletion:  {ColCompletedAt, ColClosedAt},
}

// Capabilities is the set of raw columns the source actually carried, captured
// once per run before synthesis fills the gaps.
type Capabilities struct {
	present map[string]struct{}
}

// NewCapabilities records which columns the source header contained.
func NewCapabilities(columns []string) Capabilities {
	present := make(map[string]struct{}, len(columns))
	for _, name := range columns {
		present[name] = struct{}{}
	}
	return Capabilities{present: present}
}

// Has reports whether the source carried the column.
func (c Capabilities) Has(column string) bool {
	_, ok := c.present[column]
	return ok
}

// CanDerive reports whether every raw column the field reads was present.
func (c Capabilities) CanDerive(field DerivedField) bool {
	for _, column := range DerivedSchema[field] {
		if !c.Has(column) {
			return false
		}
	}
	return true
}

// MissingFor lists the absent prerequisites of a derived field.
func (c Capabilities) MissingFor(field DerivedField) []string {
	var missing []string
	for _, column := range DerivedSchema[field] {
		if !c.Has(column) {
			missing = append(missing, column)
		}
	}
	return missing
}

// DegradedFields lists derived fields with at least one absent prerequisite.
func (c Capabilities) DegradedFields() []DerivedField {
	var degraded []DerivedField
	for field := range DerivedSchema {
		if !c.CanDerive(field) {
			degraded = append(degraded, field)
		}
	}
	sort.Slice(degraded, func(i, j int) bool { return degraded[i] < degraded[j] })
	return degraded
}
