package cycle

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Closure is the immutable record of one cycle-close event for a group.
// Written once after the closing transaction commits; never mutated.
type Closure struct {
	ID                uuid.UUID       `json:"id" bson:"id"`
	GroupID           uuid.UUID       `json:"group_id" bson:"group_id"`
	CycleNumber       int             `json:"cycle_number" bson:"cycle_number"`
	CycleStart        time.Time       `json:"cycle_start" bson:"cycle_start"`
	CycleEnd          time.Time       `json:"cycle_end" bson:"cycle_end"`
	TotalSavings      decimal.Decimal `json:"total_savings" bson:"total_savings"`
	InterestCollected decimal.Decimal `json:"interest_collected" bson:"interest_collected"`
	FinesCollected    decimal.Decimal `json:"fines_collected" bson:"fines_collected"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses" bson:"operating_expenses"`
	NetProfit         decimal.Decimal `json:"net_profit" bson:"net_profit"`
	Details           []Detail        `json:"details" bson:"details"`
	CorrelationID     string          `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	ClosedAt          time.Time       `json:"closed_at" bson:"closed_at"`
}

// Detail is one member's line in a cycle closure
type Detail struct {
	MemberID        uuid.UUID       `json:"member_id" bson:"member_id"`
	MemberName      string          `json:"member_name" bson:"member_name"`
	Savings         decimal.Decimal `json:"savings" bson:"savings"`
	ProfitShare     decimal.Decimal `json:"profit_share" bson:"profit_share"`
	TotalWithdrawal decimal.Decimal `json:"total_withdrawal" bson:"total_withdrawal"`
}
