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

	"github.com/savings-group-ledger/internal/domain/cashbox"
	"github.com/savings-group-ledger/internal/domain/shared"
	"github.com/savings-group-ledger/internal/platform/persistence"
)

// CashboxRepository implements the cashbox.Repository interface for PostgreSQL
type CashboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCashboxRepository creates a new PostgreSQL cash-box repository
func NewCashboxRepository(logger *slog.Logger, db *persistence.PostgresDB) cashbox.Repository {
	return &CashboxRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *CashboxRepository) WithTx(tx pgx.Tx) cashbox.Repository {
	return &CashboxRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a cash movement
func (r *CashboxRepository) Create(ctx context.Context, m *cashbox.Movement) error {
	query := `
		INSERT INTO cash_movements (id, group_id, session_id, direction, amount, description, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		m.ID,
		m.GroupID,
		m.SessionID,
		m.Direction,
		m.Amount,
		m.Description,
		m.OccurredAt,
		m.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create cash movement", "group_id", m.GroupID.String(), "error", err)
		return fmt.Errorf("failed to create cash movement: %w", err)
	}

	return nil
}

// GetByID retrieves a cash movement by its ID
func (r *CashboxRepository) GetByID(ctx context.Context, id uuid.UUID) (*cashbox.Movement, error) {
	query := `
		SELECT id, group_id, session_id, direction, amount, description, occurred_at, created_at
		FROM cash_movements
		WHERE id = $1
	`

	var m cashbox.Movement
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.GroupID,
		&m.SessionID,
		&m.Direction,
		&m.Amount,
		&m.Description,
		&m.OccurredAt,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cashbox.ErrMovementNotFound{MovementID: id}
		}
		r.logger.Error("Failed to get cash movement", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get cash movement: %w", err)
	}

	return &m, nil
}

// ListByGroup retrieves paginated cash movements for a group, newest first
func (r *CashboxRepository) ListByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*cashbox.Movement, error) {
	query := `
		SELECT id, group_id, session_id, direction, amount, description, occurred_at, created_at
		FROM cash_movements
		WHERE group_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, groupID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list cash movements", "group_id", groupID.String(), "error", err)
		return nil, fmt.Errorf("failed to list cash movements: %w", err)
	}
	defer rows.Close()

	var movements []*cashbox.Movement
	for rows.Next() {
		var m cashbox.Movement
		if err := rows.Scan(
			&m.ID,
			&m.GroupID,
			&m.SessionID,
			&m.Direction,
			&m.Amount,
			&m.Description,
			&m.OccurredAt,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cash movement: %w", err)
		}
		movements = append(movements, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cash movements: %w", err)
	}

	return movements, nil
}

// Balance computes total inflows minus total outflows for the group
func (r *CashboxRepository) Balance(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'IN' THEN amount ELSE -amount END), 0)
		FROM cash_movements
		WHERE group_id = $1
	`

	var balance decimal.Decimal
	err := r.querier.QueryRow(ctx, query, groupID).Scan(&balance)
	if err != nil {
		r.logger.Error("Failed to compute cash-box balance", "group_id", groupID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to compute cash-box balance: %w", err)
	}

	return balance, nil
}

// SumByDirection totals movements in one direction dated within the window
func (r *CashboxRepository) SumByDirection(ctx context.Context, groupID uuid.UUID, direction shared.MovementDirection, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM cash_movements
		WHERE group_id = $1 AND direction = $2 AND occurred_at >= $3 AND occurred_at <= $4
	`

	var total decimal.Decimal
	err := r.querier.QueryRow(ctx, query, groupID, direction, from, to).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum cash movements", "group_id", groupID.String(), "direction", string(direction), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum cash movements: %w", err)
	}

	return total, nil
}
