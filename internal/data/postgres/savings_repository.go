package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/savings"
	"github.com/savings-group-ledger/internal/platform/persistence"
)

// SavingsRepository implements the savings.Repository interface for PostgreSQL
type SavingsRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSavingsRepository creates a new PostgreSQL savings repository
func NewSavingsRepository(logger *slog.Logger, db *persistence.PostgresDB) savings.Repository {
	return &SavingsRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *SavingsRepository) WithTx(tx pgx.Tx) savings.Repository {
	return &SavingsRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends a savings ledger entry
func (r *SavingsRepository) Create(ctx context.Context, entry *savings.Entry) error {
	query := `
		INSERT INTO savings_entries (id, member_id, session_id, prior_balance, contribution, other_income, resulting_balance, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.MemberID,
		entry.SessionID,
		entry.PriorBalance,
		entry.Contribution,
		entry.OtherIncome,
		entry.ResultingBalance,
		entry.RecordedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create savings entry", "member_id", entry.MemberID.String(), "error", err)
		return fmt.Errorf("failed to create savings entry: %w", err)
	}

	return nil
}

// GetByID retrieves a savings entry by its ID
func (r *SavingsRepository) GetByID(ctx context.Context, id uuid.UUID) (*savings.Entry, error) {
	query := `
		SELECT id, member_id, session_id, prior_balance, contribution, other_income, resulting_balance, recorded_at
		FROM savings_entries
		WHERE id = $1
	`

	var e savings.Entry
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.MemberID,
		&e.SessionID,
		&e.PriorBalance,
		&e.Contribution,
		&e.OtherIncome,
		&e.ResultingBalance,
		&e.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, savings.ErrEntryNotFound{EntryID: id}
		}
		r.logger.Error("Failed to get savings entry", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get savings entry: %w", err)
	}

	return &e, nil
}

// LatestByMember retrieves the member's most recent savings entry
func (r *SavingsRepository) LatestByMember(ctx context.Context, memberID uuid.UUID) (*savings.Entry, error) {
	query := `
		SELECT id, member_id, session_id, prior_balance, contribution, other_income, resulting_balance, recorded_at
		FROM savings_entries
		WHERE member_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	var e savings.Entry
	err := r.querier.QueryRow(ctx, query, memberID).Scan(
		&e.ID,
		&e.MemberID,
		&e.SessionID,
		&e.PriorBalance,
		&e.Contribution,
		&e.OtherIncome,
		&e.ResultingBalance,
		&e.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, savings.ErrNoEntries{MemberID: memberID}
		}
		r.logger.Error("Failed to get latest savings entry", "member_id", memberID.String(), "error", err)
		return nil, fmt.Errorf("failed to get latest savings entry: %w", err)
	}

	return &e, nil
}

// ListByMember retrieves paginated savings entries for a member, newest first
func (r *SavingsRepository) ListByMember(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]*savings.Entry, error) {
	query := `
		SELECT id, member_id, session_id, prior_balance, contribution, other_income, resulting_balance, recorded_at
		FROM savings_entries
		WHERE member_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, memberID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list savings entries", "member_id", memberID.String(), "error", err)
		return nil, fmt.Errorf("failed to list savings entries: %w", err)
	}
	defer rows.Close()

	var entries []*savings.Entry
	for rows.Next() {
		var e savings.Entry
		if err := rows.Scan(
			&e.ID,
			&e.MemberID,
			&e.SessionID,
			&e.PriorBalance,
			&e.Contribution,
			&e.OtherIncome,
			&e.ResultingBalance,
			&e.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan savings entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate savings entries: %w", err)
	}

	return entries, nil
}

// LatestBalancesByGroup returns each active member's latest resulting
// balance. Members with no entries get a zero balance so cycle close still
// lists them.
func (r *SavingsRepository) LatestBalancesByGroup(ctx context.Context, groupID uuid.UUID) ([]savings.MemberBalance, error) {
	query := `
		SELECT m.id, COALESCE(latest.resulting_balance, 0)
		FROM members m
		LEFT JOIN LATERAL (
			SELECT resulting_balance
			FROM savings_entries
			WHERE member_id = m.id
			ORDER BY recorded_at DESC
			LIMIT 1
		) latest ON TRUE
		WHERE m.group_id = $1 AND m.active = TRUE
		ORDER BY m.name ASC
	`

	rows, err := r.querier.Query(ctx, query, groupID)
	if err != nil {
		r.logger.Error("Failed to get latest balances", "group_id", groupID.String(), "error", err)
		return nil, fmt.Errorf("failed to get latest balances: %w", err)
	}
	defer rows.Close()

	var balances []savings.MemberBalance
	for rows.Next() {
		var b savings.MemberBalance
		var amount decimal.Decimal
		if err := rows.Scan(&b.MemberID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan member balance: %w", err)
		}
		b.Balance = amount
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate member balances: %w", err)
	}

	return balances, nil
}
