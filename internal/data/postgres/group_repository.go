package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/platform/persistence"
)

// GroupRepository implements the group.Repository interface for PostgreSQL
type GroupRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewGroupRepository creates a new PostgreSQL group repository
func NewGroupRepository(logger *slog.Logger, db *persistence.PostgresDB) group.Repository {
	return &GroupRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *GroupRepository) WithTx(tx pgx.Tx) group.Repository {
	return &GroupRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new group
func (r *GroupRepository) Create(ctx context.Context, g *group.Group) error {
	query := `
		INSERT INTO groups (id, name, cycle_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query,
		g.ID,
		g.Name,
		g.CycleNumber,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create group", "error", err)
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

// GetByID retrieves a group by its ID
func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	query := `
		SELECT id, name, cycle_number, created_at, updated_at
		FROM groups
		WHERE id = $1
	`

	var g group.Group
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&g.ID,
		&g.Name,
		&g.CycleNumber,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, group.ErrGroupNotFound{GroupID: id}
		}
		r.logger.Error("Failed to get group", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return &g, nil
}

// Update updates an existing group
func (r *GroupRepository) Update(ctx context.Context, g *group.Group) error {
	query := `
		UPDATE groups
		SET name = $1, cycle_number = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.querier.Exec(ctx, query,
		g.Name,
		g.CycleNumber,
		g.UpdatedAt,
		g.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update group", "id", g.ID.String(), "error", err)
		return fmt.Errorf("failed to update group: %w", err)
	}

	if result.RowsAffected() == 0 {
		return group.ErrGroupNotFound{GroupID: g.ID}
	}

	return nil
}

// GetRules retrieves the group's policy configuration
func (r *GroupRepository) GetRules(ctx context.Context, groupID uuid.UUID) (*group.Rules, error) {
	query := `
		SELECT group_id, fine_amount, interest_rate, max_loan_amount, single_loan_at_a_time, cycle_start, cycle_end, updated_at
		FROM group_rules
		WHERE group_id = $1
	`

	var rules group.Rules
	err := r.querier.QueryRow(ctx, query, groupID).Scan(
		&rules.GroupID,
		&rules.FineAmount,
		&rules.InterestRate,
		&rules.MaxLoanAmount,
		&rules.SingleLoanAtATime,
		&rules.CycleStart,
		&rules.CycleEnd,
		&rules.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, group.ErrRulesNotFound{GroupID: groupID}
		}
		r.logger.Error("Failed to get group rules", "group_id", groupID.String(), "error", err)
		return nil, fmt.Errorf("failed to get group rules: %w", err)
	}

	return &rules, nil
}

// UpsertRules stores or replaces the group's policy configuration
func (r *GroupRepository) UpsertRules(ctx context.Context, rules *group.Rules) error {
	query := `
		INSERT INTO group_rules (group_id, fine_amount, interest_rate, max_loan_amount, single_loan_at_a_time, cycle_start, cycle_end, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (group_id) DO UPDATE
		SET fine_amount = $2, interest_rate = $3, max_loan_amount = $4, single_loan_at_a_time = $5,
			cycle_start = $6, cycle_end = $7, updated_at = $8
	`

	_, err := r.querier.Exec(ctx, query,
		rules.GroupID,
		rules.FineAmount,
		rules.InterestRate,
		rules.MaxLoanAmount,
		rules.SingleLoanAtATime,
		rules.CycleStart,
		rules.CycleEnd,
		rules.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert group rules", "group_id", rules.GroupID.String(), "error", err)
		return fmt.Errorf("failed to upsert group rules: %w", err)
	}

	return nil
}

// CreateSession stores a new meeting session
func (r *GroupRepository) CreateSession(ctx context.Context, s *group.Session) error {
	query := `
		INSERT INTO sessions (id, group_id, date, synthetic, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query,
		s.ID,
		s.GroupID,
		s.Date,
		s.Synthetic,
		s.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create session", "group_id", s.GroupID.String(), "error", err)
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// LatestSession retrieves the most recent session for the group
func (r *GroupRepository) LatestSession(ctx context.Context, groupID uuid.UUID) (*group.Session, error) {
	query := `
		SELECT id, group_id, date, synthetic, created_at
		FROM sessions
		WHERE group_id = $1
		ORDER BY date DESC
		LIMIT 1
	`

	var s group.Session
	err := r.querier.QueryRow(ctx, query, groupID).Scan(
		&s.ID,
		&s.GroupID,
		&s.Date,
		&s.Synthetic,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, group.ErrNoSessions{GroupID: groupID}
		}
		r.logger.Error("Failed to get latest session", "group_id", groupID.String(), "error", err)
		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}

	return &s, nil
}

// GetLastScanRun retrieves the group's most recent completed scan run
func (r *GroupRepository) GetLastScanRun(ctx context.Context, groupID uuid.UUID) (*group.ScanRun, error) {
	query := `
		SELECT group_id, scan_id, last_run_at, loans_assessed, delinquent_found
		FROM scan_runs
		WHERE group_id = $1
	`

	var run group.ScanRun
	err := r.querier.QueryRow(ctx, query, groupID).Scan(
		&run.GroupID,
		&run.ScanID,
		&run.LastRunAt,
		&run.LoansAssessed,
		&run.DelinquentFound,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, group.ErrNoScanRuns{GroupID: groupID}
		}
		r.logger.Error("Failed to get last scan run", "group_id", groupID.String(), "error", err)
		return nil, fmt.Errorf("failed to get last scan run: %w", err)
	}

	return &run, nil
}

// RecordScanRun stores or replaces the group's scan run marker
func (r *GroupRepository) RecordScanRun(ctx context.Context, run *group.ScanRun) error {
	query := `
		INSERT INTO scan_runs (group_id, scan_id, last_run_at, loans_assessed, delinquent_found)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_id) DO UPDATE
		SET scan_id = $2, last_run_at = $3, loans_assessed = $4, delinquent_found = $5
	`

	_, err := r.querier.Exec(ctx, query,
		run.GroupID,
		run.ScanID,
		run.LastRunAt,
		run.LoansAssessed,
		run.DelinquentFound,
	)
	if err != nil {
		r.logger.Error("Failed to record scan run", "group_id", run.GroupID.String(), "error", err)
		return fmt.Errorf("failed to record scan run: %w", err)
	}

	return nil
}
