package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/fine"
	"github.com/savings-group-ledger/internal/platform/persistence"
)

// FineRepository implements the fine.Repository interface for PostgreSQL
type FineRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewFineRepository creates a new PostgreSQL fine repository
func NewFineRepository(logger *slog.Logger, db *persistence.PostgresDB) fine.Repository {
	return &FineRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *FineRepository) WithTx(tx pgx.Tx) fine.Repository {
	return &FineRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const fineColumns = `id, member_id, session_id, loan_id, amount_due, amount_paid, reason, assessment_key, issued_at, due_date, paid_at`

func scanFine(row pgx.Row) (*fine.Fine, error) {
	var f fine.Fine
	var key *string
	err := row.Scan(
		&f.ID,
		&f.MemberID,
		&f.SessionID,
		&f.LoanID,
		&f.AmountDue,
		&f.AmountPaid,
		&f.Reason,
		&key,
		&f.IssuedAt,
		&f.DueDate,
		&f.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	if key != nil {
		f.AssessmentKey = *key
	}
	return &f, nil
}

// Create stores a new fine. The unique index on assessment_key rejects a
// second delinquency fine for the same loan and period.
func (r *FineRepository) Create(ctx context.Context, f *fine.Fine) error {
	query := `
		INSERT INTO fines (id, member_id, session_id, loan_id, amount_due, amount_paid, reason, assessment_key, issued_at, due_date, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var key *string
	if f.AssessmentKey != "" {
		key = &f.AssessmentKey
	}

	_, err := r.querier.Exec(ctx, query,
		f.ID,
		f.MemberID,
		f.SessionID,
		f.LoanID,
		f.AmountDue,
		f.AmountPaid,
		f.Reason,
		key,
		f.IssuedAt,
		f.DueDate,
		f.PaidAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fine.ErrDuplicateAssessment{AssessmentKey: f.AssessmentKey}
		}
		r.logger.Error("Failed to create fine", "member_id", f.MemberID.String(), "error", err)
		return fmt.Errorf("failed to create fine: %w", err)
	}

	return nil
}

// GetByID retrieves a fine by its ID
func (r *FineRepository) GetByID(ctx context.Context, id uuid.UUID) (*fine.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE id = $1`

	f, err := scanFine(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fine.ErrFineNotFound{FineID: id}
		}
		r.logger.Error("Failed to get fine", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get fine: %w", err)
	}

	return f, nil
}

// GetByAssessmentKey retrieves a delinquency fine by its assessment key.
// Returns nil, nil when no fine matches so the scan can decide to assess.
func (r *FineRepository) GetByAssessmentKey(ctx context.Context, key string) (*fine.Fine, error) {
	if key == "" {
		return nil, errors.New("assessment key cannot be empty")
	}

	query := `SELECT ` + fineColumns + ` FROM fines WHERE assessment_key = $1`

	f, err := scanFine(r.querier.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get fine by assessment key", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get fine by assessment key: %w", err)
	}

	return f, nil
}

// ListUnpaidByMember retrieves the member's outstanding fines, oldest first
func (r *FineRepository) ListUnpaidByMember(ctx context.Context, memberID uuid.UUID) ([]*fine.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE member_id = $1 AND paid_at IS NULL ORDER BY issued_at ASC`

	rows, err := r.querier.Query(ctx, query, memberID)
	if err != nil {
		r.logger.Error("Failed to list unpaid fines", "member_id", memberID.String(), "error", err)
		return nil, fmt.Errorf("failed to list unpaid fines: %w", err)
	}
	defer rows.Close()

	var fines []*fine.Fine
	for rows.Next() {
		f, err := scanFine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fine: %w", err)
		}
		fines = append(fines, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fines: %w", err)
	}

	return fines, nil
}

// Update stores payment progress on a fine
func (r *FineRepository) Update(ctx context.Context, f *fine.Fine) error {
	query := `
		UPDATE fines
		SET amount_paid = $1, paid_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query,
		f.AmountPaid,
		f.PaidAt,
		f.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update fine", "id", f.ID.String(), "error", err)
		return fmt.Errorf("failed to update fine: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fine.ErrFineNotFound{FineID: f.ID}
	}

	return nil
}

// SumPaidByGroup totals fine payments dated within the window
func (r *FineRepository) SumPaidByGroup(ctx context.Context, groupID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(f.amount_paid), 0)
		FROM fines f
		JOIN members m ON m.id = f.member_id
		WHERE m.group_id = $1 AND f.paid_at >= $2 AND f.paid_at <= $3
	`

	var total decimal.Decimal
	err := r.querier.QueryRow(ctx, query, groupID, from, to).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum fines collected", "group_id", groupID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum fines collected: %w", err)
	}

	return total, nil
}
