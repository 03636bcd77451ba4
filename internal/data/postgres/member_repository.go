// Package postgres provides PostgreSQL implementations of the domain
// repositories. All financial read-modify-write sequences run through these
// repositories inside explicit transactions.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/savings-group-ledger/internal/domain/member"
	"github.com/savings-group-ledger/internal/platform/persistence"
)

// MemberRepository implements the member.Repository interface for PostgreSQL
type MemberRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewMemberRepository creates a new PostgreSQL member repository
func NewMemberRepository(logger *slog.Logger, db *persistence.PostgresDB) member.Repository {
	return &MemberRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *MemberRepository) WithTx(tx pgx.Tx) member.Repository {
	return &MemberRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new member. A unique constraint on document_id rejects
// duplicate enrollments.
func (r *MemberRepository) Create(ctx context.Context, m *member.Member) error {
	query := `
		INSERT INTO members (id, group_id, name, document_id, phone, active, joined_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		m.ID,
		m.GroupID,
		m.Name,
		m.DocumentID,
		m.Phone,
		m.Active,
		m.JoinedAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create member", "error", err)
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetByID retrieves a member by its ID
func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	query := `
		SELECT id, group_id, name, document_id, phone, active, joined_at, created_at, updated_at
		FROM members
		WHERE id = $1
	`

	var m member.Member
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.GroupID,
		&m.Name,
		&m.DocumentID,
		&m.Phone,
		&m.Active,
		&m.JoinedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, member.ErrMemberNotFound{MemberID: id}
		}
		r.logger.Error("Failed to get member", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return &m, nil
}

// GetByDocumentID retrieves a member by document ID. Returns nil, nil when
// no member matches, so enrollment can check for duplicates.
func (r *MemberRepository) GetByDocumentID(ctx context.Context, documentID string) (*member.Member, error) {
	query := `
		SELECT id, group_id, name, document_id, phone, active, joined_at, created_at, updated_at
		FROM members
		WHERE document_id = $1
	`

	var m member.Member
	err := r.querier.QueryRow(ctx, query, documentID).Scan(
		&m.ID,
		&m.GroupID,
		&m.Name,
		&m.DocumentID,
		&m.Phone,
		&m.Active,
		&m.JoinedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get member by document ID", "documentID", documentID, "error", err)
		return nil, fmt.Errorf("failed to get member by document ID: %w", err)
	}

	return &m, nil
}

// ListByGroup retrieves the active members of a group ordered by name
func (r *MemberRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*member.Member, error) {
	query := `
		SELECT id, group_id, name, document_id, phone, active, joined_at, created_at, updated_at
		FROM members
		WHERE group_id = $1 AND active = TRUE
		ORDER BY name ASC
	`

	rows, err := r.querier.Query(ctx, query, groupID)
	if err != nil {
		r.logger.Error("Failed to list members", "groupID", groupID.String(), "error", err)
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*member.Member
	for rows.Next() {
		var m member.Member
		if err := rows.Scan(
			&m.ID,
			&m.GroupID,
			&m.Name,
			&m.DocumentID,
			&m.Phone,
			&m.Active,
			&m.JoinedAt,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// Update updates an existing member
func (r *MemberRepository) Update(ctx context.Context, m *member.Member) error {
	query := `
		UPDATE members
		SET name = $1, phone = $2, active = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.querier.Exec(ctx, query,
		m.Name,
		m.Phone,
		m.Active,
		m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update member", "id", m.ID.String(), "error", err)
		return fmt.Errorf("failed to update member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return member.ErrMemberNotFound{MemberID: m.ID}
	}

	return nil
}
