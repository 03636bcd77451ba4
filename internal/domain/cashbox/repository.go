package cashbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/shared"
)

// Repository manages cash-box movement persistence
type Repository interface {
	Create(ctx context.Context, movement *Movement) error
	GetByID(ctx context.Context, id uuid.UUID) (*Movement, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*Movement, error)

	// Balance is total inflows minus total outflows for the group
	Balance(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error)

	// SumByDirection totals movements in one direction dated within the
	// window, for cycle close
	SumByDirection(ctx context.Context, groupID uuid.UUID, direction shared.MovementDirection, from, to time.Time) (decimal.Decimal, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrMovementNotFound indicates missing cash movement
type ErrMovementNotFound struct {
	MovementID uuid.UUID
}

func (e ErrMovementNotFound) Error() string {
	return "cash movement not found: " + e.MovementID.String()
}

// Is implements the errors.Is interface for ErrMovementNotFound
func (e ErrMovementNotFound) Is(target error) bool {
	t, ok := target.(ErrMovementNotFound)
	if !ok {
		return false
	}
	if t.MovementID == uuid.Nil {
		return true
	}
	return e.MovementID == t.MovementID
}
