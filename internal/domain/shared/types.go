package shared

// LoanStatus defines the lifecycle states of a loan
type LoanStatus string

const (
	LoanStatusPending    LoanStatus = "PENDING"
	LoanStatusApproved   LoanStatus = "APPROVED"
	LoanStatusRejected   LoanStatus = "REJECTED"
	LoanStatusPaid       LoanStatus = "PAID"
	LoanStatusDelinquent LoanStatus = "DELINQUENT"
	LoanStatusRefinanced LoanStatus = "REFINANCED"
)

// ActiveLoanStatuses are the states in which a loan still carries an
// outstanding obligation. Capacity checks and delinquency scans operate on
// these states only.
var ActiveLoanStatuses = []LoanStatus{
	LoanStatusApproved,
	LoanStatusDelinquent,
	LoanStatusRefinanced,
}

// IsActive reports whether the status carries an outstanding obligation
func (s LoanStatus) IsActive() bool {
	for _, st := range ActiveLoanStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// MovementDirection defines cash-box movement directions
type MovementDirection string

const (
	MovementDirectionIn  MovementDirection = "IN"
	MovementDirectionOut MovementDirection = "OUT"
)

// AlertSeverity defines delinquency alert severities
type AlertSeverity string

const (
	AlertSeverityMedium AlertSeverity = "MEDIUM"
	AlertSeverityHigh   AlertSeverity = "HIGH"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
