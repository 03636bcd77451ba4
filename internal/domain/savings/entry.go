package savings

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNegativeContribution = errors.New("contribution cannot be negative")
	ErrNegativeOtherIncome  = errors.New("other income cannot be negative")
)

// Entry is one savings ledger row for a member at a meeting session. The
// balance is a running total: ResultingBalance = PriorBalance + Contribution
// + OtherIncome. Entries for a member ordered by session date form a
// non-decreasing balance sequence.
type Entry struct {
	ID               uuid.UUID       `json:"id"`
	MemberID         uuid.UUID       `json:"member_id"`
	SessionID        uuid.UUID       `json:"session_id"`
	PriorBalance     decimal.Decimal `json:"prior_balance"`
	Contribution     decimal.Decimal `json:"contribution"`
	OtherIncome      decimal.Decimal `json:"other_income"`
	ResultingBalance decimal.Decimal `json:"resulting_balance"`
	RecordedAt       time.Time       `json:"recorded_at"`
}

// NewResetEntry restarts the member's balance chain at zero. Written at
// cycle close after savings are paid out, so the next cycle's entries build
// on a fresh balance.
func NewResetEntry(memberID, sessionID uuid.UUID) *Entry {
	return &Entry{
		ID:               uuid.New(),
		MemberID:         memberID,
		SessionID:        sessionID,
		PriorBalance:     decimal.Zero,
		Contribution:     decimal.Zero,
		OtherIncome:      decimal.Zero,
		ResultingBalance: decimal.Zero,
		RecordedAt:       time.Now(),
	}
}

// NewEntry appends a savings contribution on top of the member's prior
// balance
func NewEntry(memberID, sessionID uuid.UUID, priorBalance, contribution, otherIncome decimal.Decimal) (*Entry, error) {
	if contribution.Sign() < 0 {
		return nil, ErrNegativeContribution
	}
	if otherIncome.Sign() < 0 {
		return nil, ErrNegativeOtherIncome
	}

	return &Entry{
		ID:               uuid.New(),
		MemberID:         memberID,
		SessionID:        sessionID,
		PriorBalance:     priorBalance,
		Contribution:     contribution,
		OtherIncome:      otherIncome,
		ResultingBalance: priorBalance.Add(contribution).Add(otherIncome),
		RecordedAt:       time.Now(),
	}, nil
}
