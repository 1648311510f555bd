package domain

// LifecycleStatus tracks whether a ticket reached completion.
type LifecycleStatus string

const (
	LifecyclePending   LifecycleStatus = "Pending"
	LifecycleCompleted LifecycleStatus = "Completed"
)

// ClosingStatus tracks whether a ticket reached either completion or closing.
type ClosingStatus string

const (
	ClosingPending ClosingStatus = "Pending"
	ClosingClosed  ClosingStatus = "Closed"
)

// FinancialStatus tracks whether a ticket was financially closed.
type FinancialStatus string

const (
	FinancialPending FinancialStatus = "Pending"
	FinancialClosed  FinancialStatus = "Closed"
)

// DelayClass is the mutually exclusive delay classification of a ticket.
type DelayClass string

const (
	DelayCompletedLate  DelayClass = "Completed Late"
	DelayOverdue        DelayClass = "Overdue"
	DelayOpenNoForecast DelayClass = "Open (No Forecast)"
	DelayOnTime         DelayClass = "On Time"
	DelayUndetermined   DelayClass = "Undetermined"
)

// SLAVerdict states whether a forecast milestone was met.
type SLAVerdict string

const (
	VerdictWithinTarget SLAVerdict = "Within Target"
	VerdictMissedTarget SLAVerdict = "Missed Target"
	VerdictPending      SLAVerdict = "Pending"
	VerdictUndefined    SLAVerdict = "Undefined"
)

// AgeBucket groups completed tickets by how old they were at the reference instant.
type AgeBucket string

const (
	AgeOver90  AgeBucket = "+90 days"
	AgeOver60  AgeBucket = "+60 days"
	AgeOver30  AgeBucket = "+30 days"
	AgeUnder30 AgeBucket = "-30 days"
)
