package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/shared"
)

// DelinquencyAssessment is the result of evaluating one loan against an
// as-of date.
type DelinquencyAssessment struct {
	Overdue     bool
	DaysOverdue int
	Severity    shared.AlertSeverity
}

// EvaluateDelinquency decides whether a loan is overdue as of a given date.
// A loan is overdue when its earliest unpaid installment fell due strictly
// before the as-of date and principal is still outstanding. Severity is HIGH
// past highAfterDays, MEDIUM otherwise. Comparison is at day granularity.
func EvaluateDelinquency(earliestDue time.Time, outstanding decimal.Decimal, asOf time.Time, highAfterDays int) DelinquencyAssessment {
	due := truncateToDay(earliestDue)
	ref := truncateToDay(asOf)

	if !due.Before(ref) || outstanding.Sign() <= 0 {
		return DelinquencyAssessment{}
	}

	days := int(ref.Sub(due).Hours() / 24)
	severity := shared.AlertSeverityMedium
	if days > highAfterDays {
		severity = shared.AlertSeverityHigh
	}

	return DelinquencyAssessment{
		Overdue:     true,
		DaysOverdue: days,
		Severity:    severity,
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
