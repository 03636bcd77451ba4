package cashbox

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrNonPositiveAmount = errors.New("movement amount must be positive")
	ErrInvalidDirection  = errors.New("movement direction must be IN or OUT")
	ErrInsufficientFunds = errors.New("cash-box balance is insufficient for the outflow")
)

// Movement is one cash-box ledger row. Amounts are always positive; the
// direction carries the sign.
type Movement struct {
	ID          uuid.UUID                `json:"id"`
	GroupID     uuid.UUID                `json:"group_id"`
	SessionID   *uuid.UUID               `json:"session_id,omitempty"`
	Direction   shared.MovementDirection `json:"direction"`
	Amount      decimal.Decimal          `json:"amount"`
	Description string                   `json:"description"`
	OccurredAt  time.Time                `json:"occurred_at"`
	CreatedAt   time.Time                `json:"created_at"`
}

// NewMovement records a cash-box inflow or outflow
func NewMovement(groupID uuid.UUID, direction shared.MovementDirection, amount decimal.Decimal, description string, occurredAt time.Time) (*Movement, error) {
	if amount.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if direction != shared.MovementDirectionIn && direction != shared.MovementDirectionOut {
		return nil, ErrInvalidDirection
	}

	return &Movement{
		ID:          uuid.New(),
		GroupID:     groupID,
		Direction:   direction,
		Amount:      amount,
		Description: description,
		OccurredAt:  occurredAt,
		CreatedAt:   time.Now(),
	}, nil
}
