package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/loan"
	"github.com/savings-group-ledger/internal/domain/shared"
	"github.com/savings-group-ledger/internal/platform/persistence"
)

// LoanRepository implements the loan.Repository interface for PostgreSQL
type LoanRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLoanRepository creates a new PostgreSQL loan repository
func NewLoanRepository(logger *slog.Logger, db *persistence.PostgresDB) loan.Repository {
	return &LoanRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *LoanRepository) WithTx(tx pgx.Tx) loan.Repository {
	return &LoanRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const loanColumns = `id, member_id, group_id, principal, interest_rate, term_months, monthly_payment,
		total_interest, total_payable, status, schedule_version, rejection_reason,
		requested_at, disbursed_at, due_date, created_at, updated_at`

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID,
		&l.MemberID,
		&l.GroupID,
		&l.Principal,
		&l.InterestRate,
		&l.TermMonths,
		&l.MonthlyPayment,
		&l.TotalInterest,
		&l.TotalPayable,
		&l.Status,
		&l.ScheduleVersion,
		&l.RejectionReason,
		&l.RequestedAt,
		&l.DisbursedAt,
		&l.DueDate,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create stores a new loan request
func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	query := `
		INSERT INTO loans (id, member_id, group_id, principal, interest_rate, term_months, monthly_payment,
			total_interest, total_payable, status, schedule_version, rejection_reason,
			requested_at, disbursed_at, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.querier.Exec(ctx, query,
		l.ID,
		l.MemberID,
		l.GroupID,
		l.Principal,
		l.InterestRate,
		l.TermMonths,
		l.MonthlyPayment,
		l.TotalInterest,
		l.TotalPayable,
		l.Status,
		l.ScheduleVersion,
		l.RejectionReason,
		l.RequestedAt,
		l.DisbursedAt,
		l.DueDate,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create loan", "member_id", l.MemberID.String(), "error", err)
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

// GetByID retrieves a loan by its ID
func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	l, err := scanLoan(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{LoanID: id}
		}
		r.logger.Error("Failed to get loan", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return l, nil
}

// LockForUpdate obtains a pessimistic lock on the loan and returns its
// current state. Used inside the delinquency scan and payment transactions.
func (r *LoanRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	l, err := scanLoan(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{LoanID: id}
		}
		r.logger.Error("Failed to lock loan for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock loan for update: %w", err)
	}

	return l, nil
}

// ListByMember retrieves all loans for a member, newest first
func (r *LoanRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE member_id = $1 ORDER BY created_at DESC`

	rows, err := r.querier.Query(ctx, query, memberID)
	if err != nil {
		r.logger.Error("Failed to list loans", "member_id", memberID.String(), "error", err)
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	return collectLoans(rows)
}

// ListByGroupAndStatus retrieves the group's loans in any of the given
// statuses. The delinquency scan uses it to find candidates.
func (r *LoanRepository) ListByGroupAndStatus(ctx context.Context, groupID uuid.UUID, statuses []shared.LoanStatus) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE group_id = $1 AND status = ANY($2) ORDER BY created_at ASC`

	statusStrings := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusStrings = append(statusStrings, string(s))
	}

	rows, err := r.querier.Query(ctx, query, groupID, statusStrings)
	if err != nil {
		r.logger.Error("Failed to list loans by status", "group_id", groupID.String(), "error", err)
		return nil, fmt.Errorf("failed to list loans by status: %w", err)
	}
	defer rows.Close()

	return collectLoans(rows)
}

func collectLoans(rows pgx.Rows) ([]*loan.Loan, error) {
	var loans []*loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loans: %w", err)
	}
	return loans, nil
}

// Update updates an existing loan
func (r *LoanRepository) Update(ctx context.Context, l *loan.Loan) error {
	query := `
		UPDATE loans
		SET principal = $1, term_months = $2, monthly_payment = $3, total_interest = $4,
			total_payable = $5, status = $6, schedule_version = $7, rejection_reason = $8,
			disbursed_at = $9, due_date = $10, updated_at = $11
		WHERE id = $12
	`

	result, err := r.querier.Exec(ctx, query,
		l.Principal,
		l.TermMonths,
		l.MonthlyPayment,
		l.TotalInterest,
		l.TotalPayable,
		l.Status,
		l.ScheduleVersion,
		l.RejectionReason,
		l.DisbursedAt,
		l.DueDate,
		l.UpdatedAt,
		l.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update loan", "id", l.ID.String(), "error", err)
		return fmt.Errorf("failed to update loan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrLoanNotFound{LoanID: l.ID}
	}

	return nil
}

// CountActiveByMember counts the member's loans still carrying an obligation
func (r *LoanRepository) CountActiveByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM loans WHERE member_id = $1 AND status = ANY($2)`

	var count int
	err := r.querier.QueryRow(ctx, query, memberID, activeStatusStrings()).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count active loans", "member_id", memberID.String(), "error", err)
		return 0, fmt.Errorf("failed to count active loans: %w", err)
	}

	return count, nil
}

// SumActiveInstallmentsByMember sums the monthly payments of the member's
// active loans
func (r *LoanRepository) SumActiveInstallmentsByMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(monthly_payment), 0) FROM loans WHERE member_id = $1 AND status = ANY($2)`

	var total decimal.Decimal
	err := r.querier.QueryRow(ctx, query, memberID, activeStatusStrings()).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum active installments", "member_id", memberID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum active installments: %w", err)
	}

	return total, nil
}

func activeStatusStrings() []string {
	statuses := make([]string, 0, len(shared.ActiveLoanStatuses))
	for _, s := range shared.ActiveLoanStatuses {
		statuses = append(statuses, string(s))
	}
	return statuses
}

// CreateInstallments stores a schedule batch. Callers run this inside the
// approval transaction so the schedule is all-or-nothing.
func (r *LoanRepository) CreateInstallments(ctx context.Context, installments []*loan.Installment) error {
	query := `
		INSERT INTO installments (id, loan_id, schedule_version, number, due_date, scheduled_payment,
			scheduled_principal, scheduled_interest, remaining_balance, paid_principal, paid_interest, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	for _, inst := range installments {
		_, err := r.querier.Exec(ctx, query,
			inst.ID,
			inst.LoanID,
			inst.ScheduleVersion,
			inst.Number,
			inst.DueDate,
			inst.ScheduledPayment,
			inst.ScheduledPrincipal,
			inst.ScheduledInterest,
			inst.RemainingBalance,
			inst.PaidPrincipal,
			inst.PaidInterest,
			inst.PaidAt,
		)
		if err != nil {
			r.logger.Error("Failed to create installment", "loan_id", inst.LoanID.String(), "number", inst.Number, "error", err)
			return fmt.Errorf("failed to create installment %d: %w", inst.Number, err)
		}
	}

	return nil
}

const installmentColumns = `id, loan_id, schedule_version, number, due_date, scheduled_payment,
		scheduled_principal, scheduled_interest, remaining_balance, paid_principal, paid_interest, paid_at`

func scanInstallment(row pgx.Row) (*loan.Installment, error) {
	var inst loan.Installment
	err := row.Scan(
		&inst.ID,
		&inst.LoanID,
		&inst.ScheduleVersion,
		&inst.Number,
		&inst.DueDate,
		&inst.ScheduledPayment,
		&inst.ScheduledPrincipal,
		&inst.ScheduledInterest,
		&inst.RemainingBalance,
		&inst.PaidPrincipal,
		&inst.PaidInterest,
		&inst.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// GetInstallments retrieves one schedule version of a loan in order
func (r *LoanRepository) GetInstallments(ctx context.Context, loanID uuid.UUID, scheduleVersion int) ([]*loan.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE loan_id = $1 AND schedule_version = $2 ORDER BY number ASC`

	rows, err := r.querier.Query(ctx, query, loanID, scheduleVersion)
	if err != nil {
		r.logger.Error("Failed to get installments", "loan_id", loanID.String(), "error", err)
		return nil, fmt.Errorf("failed to get installments: %w", err)
	}
	defer rows.Close()

	var installments []*loan.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate installments: %w", err)
	}

	return installments, nil
}

// EarliestUnpaidInstallment returns the next installment due on the loan's
// current schedule version
func (r *LoanRepository) EarliestUnpaidInstallment(ctx context.Context, loanID uuid.UUID) (*loan.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE loan_id = $1
			AND schedule_version = (SELECT schedule_version FROM loans WHERE id = $1)
			AND paid_at IS NULL
		ORDER BY number ASC
		LIMIT 1
	`

	inst, err := scanInstallment(r.querier.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrNoUnpaidInstallments{LoanID: loanID}
		}
		r.logger.Error("Failed to get earliest unpaid installment", "loan_id", loanID.String(), "error", err)
		return nil, fmt.Errorf("failed to get earliest unpaid installment: %w", err)
	}

	return inst, nil
}

// UpdateInstallment stores payment details on an installment
func (r *LoanRepository) UpdateInstallment(ctx context.Context, inst *loan.Installment) error {
	query := `
		UPDATE installments
		SET paid_principal = $1, paid_interest = $2, paid_at = $3
		WHERE id = $4
	`

	result, err := r.querier.Exec(ctx, query,
		inst.PaidPrincipal,
		inst.PaidInterest,
		inst.PaidAt,
		inst.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update installment", "id", inst.ID.String(), "error", err)
		return fmt.Errorf("failed to update installment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrNoUnpaidInstallments{LoanID: inst.LoanID}
	}

	return nil
}

// OutstandingPrincipal sums the unpaid scheduled principal on the loan's
// current schedule version
func (r *LoanRepository) OutstandingPrincipal(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(scheduled_principal), 0)
		FROM installments
		WHERE loan_id = $1
			AND schedule_version = (SELECT schedule_version FROM loans WHERE id = $1)
			AND paid_at IS NULL
	`

	var total decimal.Decimal
	err := r.querier.QueryRow(ctx, query, loanID).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum outstanding principal", "loan_id", loanID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum outstanding principal: %w", err)
	}

	return total, nil
}

// SumInterestPaidByGroup totals interest collected on payments dated within
// the window
func (r *LoanRepository) SumInterestPaidByGroup(ctx context.Context, groupID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(i.paid_interest), 0)
		FROM installments i
		JOIN loans l ON l.id = i.loan_id
		WHERE l.group_id = $1 AND i.paid_at >= $2 AND i.paid_at <= $3
	`

	var total decimal.Decimal
	err := r.querier.QueryRow(ctx, query, groupID, from, to).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum interest collected", "group_id", groupID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum interest collected: %w", err)
	}

	return total, nil
}
