package loan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/shared"
)

// Repository manages loan and installment persistence
type Repository interface {
	Create(ctx context.Context, loan *Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*Loan, error)
	ListByGroupAndStatus(ctx context.Context, groupID uuid.UUID, statuses []shared.LoanStatus) ([]*Loan, error)
	Update(ctx context.Context, loan *Loan) error

	// LockForUpdate acquires a pessimistic lock for delinquency and payment
	// processing
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Loan, error)

	// CountActiveByMember counts loans still carrying an obligation
	CountActiveByMember(ctx context.Context, memberID uuid.UUID) (int, error)

	// SumActiveInstallmentsByMember sums the monthly payments of the
	// member's active loans, the figure capacity rule 2 compares against
	// savings
	SumActiveInstallmentsByMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error)

	CreateInstallments(ctx context.Context, installments []*Installment) error
	GetInstallments(ctx context.Context, loanID uuid.UUID, scheduleVersion int) ([]*Installment, error)

	// EarliestUnpaidInstallment returns the next installment due on the
	// loan's current schedule version, or ErrNoUnpaidInstallments
	EarliestUnpaidInstallment(ctx context.Context, loanID uuid.UUID) (*Installment, error)
	UpdateInstallment(ctx context.Context, installment *Installment) error

	// OutstandingPrincipal sums the unpaid scheduled principal on the
	// current schedule version
	OutstandingPrincipal(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error)

	// SumInterestPaidByGroup totals interest collected on payments dated
	// within the window, for cycle close
	SumInterestPaidByGroup(ctx context.Context, groupID uuid.UUID, from, to time.Time) (decimal.Decimal, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrLoanNotFound indicates missing loan
type ErrLoanNotFound struct {
	LoanID uuid.UUID
}

func (e ErrLoanNotFound) Error() string {
	return "loan not found: " + e.LoanID.String()
}

// Is implements the errors.Is interface for ErrLoanNotFound
func (e ErrLoanNotFound) Is(target error) bool {
	t, ok := target.(ErrLoanNotFound)
	if !ok {
		return false
	}
	if t.LoanID == uuid.Nil {
		return true
	}
	return e.LoanID == t.LoanID
}

// ErrNoUnpaidInstallments indicates the current schedule is fully settled
type ErrNoUnpaidInstallments struct {
	LoanID uuid.UUID
}

func (e ErrNoUnpaidInstallments) Error() string {
	return "no unpaid installments for loan: " + e.LoanID.String()
}

// Is implements the errors.Is interface for ErrNoUnpaidInstallments
func (e ErrNoUnpaidInstallments) Is(target error) bool {
	t, ok := target.(ErrNoUnpaidInstallments)
	if !ok {
		return false
	}
	if t.LoanID == uuid.Nil {
		return true
	}
	return e.LoanID == t.LoanID
}
