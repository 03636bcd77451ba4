package group

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyName          = errors.New("group name cannot be empty")
	ErrNegativeFineAmount = errors.New("fine amount cannot be negative")
	ErrRateOutOfRange     = errors.New("interest rate must be within [0, 1]")
	ErrNonPositiveCeiling = errors.New("max loan amount must be positive")
	ErrInvalidCycleWindow = errors.New("cycle end must be after cycle start")
)

// Group is a community savings group
type Group struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CycleNumber int       `json:"cycle_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Rules is the group's policy snapshot. Read-only input to every engine
// component; only directiva configuration changes it.
type Rules struct {
	GroupID           uuid.UUID       `json:"group_id"`
	FineAmount        decimal.Decimal `json:"fine_amount"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	MaxLoanAmount     decimal.Decimal `json:"max_loan_amount"`
	SingleLoanAtATime bool            `json:"single_loan_at_a_time"`
	CycleStart        time.Time       `json:"cycle_start"`
	CycleEnd          time.Time       `json:"cycle_end"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Validate checks the rule values before they are applied
func (r *Rules) Validate() error {
	if r.FineAmount.Sign() < 0 {
		return ErrNegativeFineAmount
	}
	if r.InterestRate.Sign() < 0 || r.InterestRate.GreaterThan(decimal.NewFromInt(1)) {
		return ErrRateOutOfRange
	}
	if r.MaxLoanAmount.Sign() <= 0 {
		return ErrNonPositiveCeiling
	}
	if !r.CycleEnd.After(r.CycleStart) {
		return ErrInvalidCycleWindow
	}
	return nil
}

// Session is a group meeting at which savings, payments and fines are
// recorded
type Session struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"group_id"`
	Date      time.Time `json:"date"`
	Synthetic bool      `json:"synthetic"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession opens a meeting session for a group
func NewSession(groupID uuid.UUID, date time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		GroupID:   groupID,
		Date:      date,
		CreatedAt: time.Now(),
	}
}

// NewSyntheticSession opens a session on behalf of the delinquency scan when
// no session exists for the day
func NewSyntheticSession(groupID uuid.UUID, date time.Time) *Session {
	s := NewSession(groupID, date)
	s.Synthetic = true
	return s
}
