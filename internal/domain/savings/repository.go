package savings

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MemberBalance pairs a member with their latest savings balance
type MemberBalance struct {
	MemberID uuid.UUID       `json:"member_id"`
	Balance  decimal.Decimal `json:"balance"`
}

// Repository manages savings ledger persistence
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)

	// LatestByMember returns the member's most recent entry, whose resulting
	// balance is the member's current savings. Returns ErrNoEntries when the
	// member has never contributed.
	LatestByMember(ctx context.Context, memberID uuid.UUID) (*Entry, error)
	ListByMember(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]*Entry, error)

	// LatestBalancesByGroup returns each active group member's latest
	// resulting balance. Members without entries appear with a zero balance.
	LatestBalancesByGroup(ctx context.Context, groupID uuid.UUID) ([]MemberBalance, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrNoEntries indicates the member has no savings history
type ErrNoEntries struct {
	MemberID uuid.UUID
}

func (e ErrNoEntries) Error() string {
	return "no savings entries for member: " + e.MemberID.String()
}

// Is implements the errors.Is interface for ErrNoEntries
func (e ErrNoEntries) Is(target error) bool {
	t, ok := target.(ErrNoEntries)
	if !ok {
		return false
	}
	if t.MemberID == uuid.Nil {
		return true
	}
	return e.MemberID == t.MemberID
}

// ErrEntryNotFound indicates missing savings entry
type ErrEntryNotFound struct {
	EntryID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "savings entry not found: " + e.EntryID.String()
}
