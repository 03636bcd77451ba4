package fine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNegativeAmount = errors.New("fine amount cannot be negative")
	ErrAlreadyPaid    = errors.New("fine is already paid")
	ErrOverpayment    = errors.New("payment exceeds the amount due")
	ErrFinesDisabled  = errors.New("group fine amount is not configured")
)

// Fine is a penalty assessed against a member, attached to a meeting
// session. Delinquency fines carry an assessment key (loan id + period) so a
// repeated scan in the same period cannot double-charge; attendance fines
// have no key.
type Fine struct {
	ID            uuid.UUID       `json:"id"`
	MemberID      uuid.UUID       `json:"member_id"`
	SessionID     uuid.UUID       `json:"session_id"`
	LoanID        *uuid.UUID      `json:"loan_id,omitempty"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Reason        string          `json:"reason"`
	AssessmentKey string          `json:"assessment_key,omitempty"`
	IssuedAt      time.Time       `json:"issued_at"`
	DueDate       time.Time       `json:"due_date"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

// DelinquencyAssessmentKey builds the uniqueness key for a delinquency fine.
// The period is the as-of month, so one scan per collection cycle assesses
// at most one fine per loan.
func DelinquencyAssessmentKey(loanID uuid.UUID, asOf time.Time) string {
	return fmt.Sprintf("%s:%s", loanID, asOf.Format("2006-01"))
}

// NewDelinquencyFine assesses a fine for an overdue loan
func NewDelinquencyFine(memberID, sessionID, loanID uuid.UUID, amount decimal.Decimal, asOf time.Time, dueDays int) (*Fine, error) {
	if amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}

	id := loanID
	return &Fine{
		ID:            uuid.New(),
		MemberID:      memberID,
		SessionID:     sessionID,
		LoanID:        &id,
		AmountDue:     amount,
		AmountPaid:    decimal.Zero,
		Reason:        "mora por préstamo vencido",
		AssessmentKey: DelinquencyAssessmentKey(loanID, asOf),
		IssuedAt:      asOf,
		DueDate:       asOf.AddDate(0, 0, dueDays),
	}, nil
}

// NewAttendanceFine assesses a fine for an absence at a session
func NewAttendanceFine(memberID, sessionID uuid.UUID, amount decimal.Decimal, issuedAt time.Time, dueDays int) (*Fine, error) {
	if amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}

	return &Fine{
		ID:         uuid.New(),
		MemberID:   memberID,
		SessionID:  sessionID,
		AmountDue:  amount,
		AmountPaid: decimal.Zero,
		Reason:     "inasistencia a sesión",
		IssuedAt:   issuedAt,
		DueDate:    issuedAt.AddDate(0, 0, dueDays),
	}, nil
}

// Pay registers a payment against the fine; the fine settles when the full
// amount due is covered
func (f *Fine) Pay(amount decimal.Decimal, at time.Time) error {
	if f.PaidAt != nil {
		return ErrAlreadyPaid
	}
	if amount.Sign() <= 0 {
		return ErrNegativeAmount
	}
	if f.AmountPaid.Add(amount).GreaterThan(f.AmountDue) {
		return ErrOverpayment
	}

	f.AmountPaid = f.AmountPaid.Add(amount)
	if f.AmountPaid.Equal(f.AmountDue) {
		f.PaidAt = &at
	}
	return nil
}
