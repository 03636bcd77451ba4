package finance

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrUndistributableProfit is returned when there is profit to share but the
// group holds no savings to weight the shares by.
var ErrUndistributableProfit = errors.New("cannot distribute profit: total savings is zero")

// CycleTotals aggregates a group's financial activity for a closing cycle.
type CycleTotals struct {
	TotalSavings      decimal.Decimal
	InterestCollected decimal.Decimal
	FinesCollected    decimal.Decimal
	OperatingExpenses decimal.Decimal
	NetProfit         decimal.Decimal
}

// ComputeCycleTotals derives the cycle result from its components. Net
// profit is floored at zero; a loss-making cycle distributes nothing rather
// than clawing back savings.
func ComputeCycleTotals(totalSavings, interest, fines, expenses decimal.Decimal) CycleTotals {
	net := interest.Add(fines).Sub(expenses)
	if net.Sign() < 0 {
		net = decimal.Zero
	}
	return CycleTotals{
		TotalSavings:      totalSavings,
		InterestCollected: interest,
		FinesCollected:    fines,
		OperatingExpenses: expenses,
		NetProfit:         net,
	}
}

// MemberSavings pairs a member with their final savings balance for the cycle.
type MemberSavings struct {
	MemberID uuid.UUID
	Savings  decimal.Decimal
}

// DistributionLine is one member's payout at cycle close.
type DistributionLine struct {
	MemberID        uuid.UUID
	Savings         decimal.Decimal
	ProfitShare     decimal.Decimal
	TotalWithdrawal decimal.Decimal
}

// Distribute splits netProfit across members in proportion to their savings.
// Shares are rounded to cents, so the distributed sum may differ from
// netProfit by at most one cent per member. Zero profit yields zero shares;
// positive profit with zero total savings is an error because there is no
// weighting to apply.
func Distribute(members []MemberSavings, netProfit decimal.Decimal) ([]DistributionLine, error) {
	if netProfit.Sign() < 0 {
		return nil, errors.New("net profit cannot be negative")
	}

	totalSavings := decimal.Zero
	for _, m := range members {
		totalSavings = totalSavings.Add(m.Savings)
	}
	if totalSavings.IsZero() && netProfit.Sign() > 0 {
		return nil, ErrUndistributableProfit
	}

	lines := make([]DistributionLine, 0, len(members))
	for _, m := range members {
		share := decimal.Zero
		if totalSavings.Sign() > 0 {
			share = netProfit.Mul(m.Savings).Div(totalSavings).Round(2)
		}
		lines = append(lines, DistributionLine{
			MemberID:        m.MemberID,
			Savings:         m.Savings,
			ProfitShare:     share,
			TotalWithdrawal: m.Savings.Add(share),
		})
	}
	return lines, nil
}
