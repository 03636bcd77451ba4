package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/cashbox"
	"github.com/savings-group-ledger/internal/domain/cycle"
	"github.com/savings-group-ledger/internal/domain/fine"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/loan"
	"github.com/savings-group-ledger/internal/domain/member"
	"github.com/savings-group-ledger/internal/domain/savings"
	"github.com/savings-group-ledger/internal/domain/shared"
	"github.com/savings-group-ledger/internal/finance"
)

// TxManager runs a function inside a database transaction. Satisfied by
// persistence.PostgresDB.
type TxManager interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// MemberService defines member enrollment operations
type MemberService interface {
	// CreateMember enrolls a member in a group
	// Returns ErrDuplicateDocumentID if the document ID is already registered
	CreateMember(ctx context.Context, groupID uuid.UUID, name, documentID, phone string) (*member.Member, error)

	// GetMemberByID retrieves a member by ID
	// Returns ErrMemberNotFound if the member doesn't exist
	GetMemberByID(ctx context.Context, id uuid.UUID) (*member.Member, error)

	// DeactivateMember soft-deletes a member, preserving financial history
	DeactivateMember(ctx context.Context, id uuid.UUID) error
}

// SavingsService defines savings ledger operations
type SavingsService interface {
	// RecordEntry appends a contribution on top of the member's running
	// balance, inside a transaction so concurrent entries cannot fork the
	// balance chain
	RecordEntry(ctx context.Context, memberID, sessionID uuid.UUID, contribution, otherIncome decimal.Decimal) (*savings.Entry, error)

	// ListEntries returns the member's savings history, newest first
	ListEntries(ctx context.Context, memberID uuid.UUID, page, perPage int) ([]*savings.Entry, error)
}

// LoanService defines loan lifecycle operations
type LoanService interface {
	// RequestLoan validates lending capacity and records the loan; a failed
	// check persists a Rejected loan carrying the failed policy as reason.
	// The capacity decision is returned alongside the loan.
	RequestLoan(ctx context.Context, memberID uuid.UUID, amount decimal.Decimal, termMonths int) (*loan.Loan, finance.CapacityDecision, error)

	// ApproveLoan amortizes the principal, creates the installment batch and
	// records the disbursement outflow in one transaction
	ApproveLoan(ctx context.Context, loanID uuid.UUID, disbursedAt time.Time) (*loan.Loan, error)

	// RejectLoan manually rejects a pending loan
	RejectLoan(ctx context.Context, loanID uuid.UUID, reason string) (*loan.Loan, error)

	// RefinanceLoan restarts amortization over the outstanding principal as
	// a new schedule version under the same loan
	RefinanceLoan(ctx context.Context, loanID uuid.UUID, termMonths int, effectiveAt time.Time) (*loan.Loan, error)

	// GetLoan retrieves a loan with its current schedule version
	GetLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, []*loan.Installment, error)

	// RegisterPayment settles the earliest unpaid installment, records the
	// cash inflow and marks the loan Paid when nothing remains outstanding
	RegisterPayment(ctx context.Context, loanID uuid.UUID, paidAt time.Time) (*loan.Loan, *loan.Installment, error)
}

// GroupService defines group, rules and cash-box operations
type GroupService interface {
	// CreateGroup registers a savings group starting at cycle 1
	CreateGroup(ctx context.Context, name string) (*group.Group, error)

	// GetGroupByID retrieves a group by ID
	GetGroupByID(ctx context.Context, id uuid.UUID) (*group.Group, error)

	// UpsertRules validates and stores the group's lending policy
	UpsertRules(ctx context.Context, rules *group.Rules) error

	// GetRules retrieves the group's lending policy
	// Returns ErrRulesNotFound when the group has no configured rules
	GetRules(ctx context.Context, groupID uuid.UUID) (*group.Rules, error)

	// RecordMovement registers a cash-box inflow or outflow
	RecordMovement(ctx context.Context, groupID uuid.UUID, direction shared.MovementDirection, amount decimal.Decimal, description string, occurredAt time.Time) (*cashbox.Movement, error)

	// GetCashbox returns the group's balance and movement history
	GetCashbox(ctx context.Context, groupID uuid.UUID, page, perPage int) (decimal.Decimal, []*cashbox.Movement, error)
}

// FineService defines fine assessment and collection operations
type FineService interface {
	// AssessAttendanceFine charges the group's configured fine amount for a
	// missed session.
	// Returns fine.ErrFinesDisabled when the group rules carry no fine amount
	AssessAttendanceFine(ctx context.Context, memberID, sessionID uuid.UUID, issuedAt time.Time) (*fine.Fine, error)

	// RegisterPayment applies a payment toward the fine and records the cash
	// inflow; the fine settles once the full amount due is covered
	RegisterPayment(ctx context.Context, fineID uuid.UUID, amount decimal.Decimal, paidAt time.Time) (*fine.Fine, error)

	// ListUnpaid returns the member's outstanding fines
	ListUnpaid(ctx context.Context, memberID uuid.UUID) ([]*fine.Fine, error)
}

// ScanService publishes delinquency scan requests to the processor
type ScanService interface {
	// RequestScan publishes a scan request for the group, carrying the
	// timestamp of the last completed scan so the processor can skip loans
	// already handled in the current period
	RequestScan(ctx context.Context, groupID uuid.UUID, correlationID string) (*shared.ScanRequest, error)
}

// CycleService defines the cycle-close workflow
type CycleService interface {
	// CloseCycle aggregates the cycle totals, distributes the net profit
	// proportionally to savings, archives the closure record and resets the
	// savings ledger for the next cycle, all inside one transaction.
	// Returns ErrDuplicateClosure if the cycle is already closed and
	// finance.ErrUndistributableProfit when profit exists but savings are zero.
	CloseCycle(ctx context.Context, groupID uuid.UUID, correlationID string) (*cycle.Closure, error)

	// ListClosures returns the group's closure history, newest cycle first
	ListClosures(ctx context.Context, groupID uuid.UUID, page, perPage int) ([]*cycle.Closure, error)
}
