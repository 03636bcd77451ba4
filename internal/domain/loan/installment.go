package loan

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrAlreadyPaid indicates a second payment against a settled installment
var ErrAlreadyPaid = errors.New("installment is already paid")

// Installment is one scheduled payment of a loan. A batch of term_months
// rows is created when the loan is approved; refinancing creates a new batch
// under the next schedule version.
type Installment struct {
	ID                 uuid.UUID       `json:"id"`
	LoanID             uuid.UUID       `json:"loan_id"`
	ScheduleVersion    int             `json:"schedule_version"`
	Number             int             `json:"number"`
	DueDate            time.Time       `json:"due_date"`
	ScheduledPayment   decimal.Decimal `json:"scheduled_payment"`
	ScheduledPrincipal decimal.Decimal `json:"scheduled_principal"`
	ScheduledInterest  decimal.Decimal `json:"scheduled_interest"`
	RemainingBalance   decimal.Decimal `json:"remaining_balance"`
	PaidPrincipal      decimal.Decimal `json:"paid_principal"`
	PaidInterest       decimal.Decimal `json:"paid_interest"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
}

// Pay settles the installment at its scheduled amounts
func (i *Installment) Pay(at time.Time) error {
	if i.PaidAt != nil {
		return ErrAlreadyPaid
	}

	i.PaidPrincipal = i.ScheduledPrincipal
	i.PaidInterest = i.ScheduledInterest
	i.PaidAt = &at
	return nil
}

// IsPaid reports whether the installment has been settled
func (i *Installment) IsPaid() bool {
	return i.PaidAt != nil
}
