package member

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines member persistence operations
type Repository interface {
	Create(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	GetByDocumentID(ctx context.Context, documentID string) (*Member, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Member, error)
	Update(ctx context.Context, member *Member) error
	WithTx(tx pgx.Tx) Repository
}

// ErrMemberNotFound indicates missing member
type ErrMemberNotFound struct {
	MemberID uuid.UUID
}

func (e ErrMemberNotFound) Error() string {
	return "member not found: " + e.MemberID.String()
}

// Is implements the errors.Is interface for ErrMemberNotFound
func (e ErrMemberNotFound) Is(target error) bool {
	t, ok := target.(ErrMemberNotFound)
	if !ok {
		return false
	}
	if t.MemberID == uuid.Nil {
		return true
	}
	return e.MemberID == t.MemberID
}

// ErrDuplicateDocumentID indicates document ID uniqueness violation
type ErrDuplicateDocumentID struct {
	DocumentID string
}

func (e ErrDuplicateDocumentID) Error() string {
	return "member with document ID already exists: " + e.DocumentID
}
