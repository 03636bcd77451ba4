package loan

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrNonPositivePrincipal = errors.New("loan principal must be positive")
	ErrNonPositiveTerm      = errors.New("loan term must be at least one month")
	ErrNotPending           = errors.New("loan is not pending a decision")
	ErrNotActive            = errors.New("loan has no outstanding obligation")
	ErrNotApproved          = errors.New("loan is not approved")
	ErrEmptyRejectionReason = errors.New("rejection reason cannot be empty")
)

// Loan represents a member's internal loan. InterestRate is snapshotted from
// the group rules at request time so later rule changes never reprice an
// existing loan. ScheduleVersion starts at 1 and increments on refinance;
// installments are tagged with the version they belong to, preserving the
// full schedule history.
type Loan struct {
	ID              uuid.UUID         `json:"id"`
	MemberID        uuid.UUID         `json:"member_id"`
	GroupID         uuid.UUID         `json:"group_id"`
	Principal       decimal.Decimal   `json:"principal"`
	InterestRate    decimal.Decimal   `json:"interest_rate"`
	TermMonths      int               `json:"term_months"`
	MonthlyPayment  decimal.Decimal   `json:"monthly_payment"`
	TotalInterest   decimal.Decimal   `json:"total_interest"`
	TotalPayable    decimal.Decimal   `json:"total_payable"`
	Status          shared.LoanStatus `json:"status"`
	ScheduleVersion int               `json:"schedule_version"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	RequestedAt     time.Time         `json:"requested_at"`
	DisbursedAt     *time.Time        `json:"disbursed_at,omitempty"`
	DueDate         *time.Time        `json:"due_date,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewLoan creates a loan request in Pending state
func NewLoan(memberID, groupID uuid.UUID, principal, interestRate decimal.Decimal, termMonths int) (*Loan, error) {
	if principal.Sign() <= 0 {
		return nil, ErrNonPositivePrincipal
	}
	if termMonths < 1 {
		return nil, ErrNonPositiveTerm
	}

	now := time.Now()
	return &Loan{
		ID:              uuid.New(),
		MemberID:        memberID,
		GroupID:         groupID,
		Principal:       principal,
		InterestRate:    interestRate,
		TermMonths:      termMonths,
		Status:          shared.LoanStatusPending,
		ScheduleVersion: 1,
		RequestedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Approve transitions Pending -> Approved and stamps the schedule figures
func (l *Loan) Approve(monthlyPayment, totalInterest, totalPayable decimal.Decimal, disbursedAt, dueDate time.Time) error {
	if l.Status != shared.LoanStatusPending {
		return ErrNotPending
	}

	l.Status = shared.LoanStatusApproved
	l.MonthlyPayment = monthlyPayment
	l.TotalInterest = totalInterest
	l.TotalPayable = totalPayable
	l.DisbursedAt = &disbursedAt
	l.DueDate = &dueDate
	l.UpdatedAt = time.Now()
	return nil
}

// Reject transitions Pending -> Rejected with the failed policy as reason
func (l *Loan) Reject(reason string) error {
	if l.Status != shared.LoanStatusPending {
		return ErrNotPending
	}
	if reason == "" {
		return ErrEmptyRejectionReason
	}

	l.Status = shared.LoanStatusRejected
	l.RejectionReason = reason
	l.UpdatedAt = time.Now()
	return nil
}

// MarkDelinquent transitions an Approved or Refinanced loan to Delinquent
func (l *Loan) MarkDelinquent() error {
	if l.Status != shared.LoanStatusApproved && l.Status != shared.LoanStatusRefinanced {
		return ErrNotApproved
	}

	l.Status = shared.LoanStatusDelinquent
	l.UpdatedAt = time.Now()
	return nil
}

// MarkPaid settles the loan once cumulative principal payments cover the
// principal
func (l *Loan) MarkPaid() error {
	if !l.Status.IsActive() {
		return ErrNotActive
	}

	l.Status = shared.LoanStatusPaid
	l.UpdatedAt = time.Now()
	return nil
}

// Refinance restarts amortization over the outstanding balance under the
// same loan id. The new schedule is appended as the next version; the old
// installments stay untouched as history.
func (l *Loan) Refinance(outstanding, monthlyPayment, totalInterest, totalPayable decimal.Decimal, termMonths int, dueDate time.Time) error {
	if !l.Status.IsActive() {
		return ErrNotActive
	}
	if outstanding.Sign() <= 0 {
		return ErrNonPositivePrincipal
	}
	if termMonths < 1 {
		return ErrNonPositiveTerm
	}

	l.Status = shared.LoanStatusRefinanced
	l.Principal = outstanding
	l.TermMonths = termMonths
	l.MonthlyPayment = monthlyPayment
	l.TotalInterest = totalInterest
	l.TotalPayable = totalPayable
	l.ScheduleVersion++
	l.DueDate = &dueDate
	l.UpdatedAt = time.Now()
	return nil
}
