package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	installmentCeiling = decimal.NewFromFloat(0.4)
	principalCeiling   = decimal.NewFromInt(3)
)

// CapacityRules are the group policy knobs that gate loan approval.
type CapacityRules struct {
	InterestRate      decimal.Decimal
	MaxLoanAmount     decimal.Decimal
	SingleLoanAtATime bool
}

// BorrowerProfile is a snapshot of the member's standing at evaluation time.
// ScheduledInstallments is the sum of monthly installments across the
// member's active loans.
type BorrowerProfile struct {
	SavingsBalance        decimal.Decimal
	ScheduledInstallments decimal.Decimal
	ActiveLoans           int
}

// CapacityDecision is the outcome of a capacity evaluation. A rejection is a
// normal decision, not an error; Reason carries the first rule that failed.
type CapacityDecision struct {
	Approved         bool
	Reason           string
	NewInstallment   decimal.Decimal
	TotalInstallment decimal.Decimal
}

// ValidateCapacity evaluates the group lending rules against a loan request.
// Rules run in a fixed order and the first failure wins:
//
//  1. single active loan policy
//  2. combined installment within 40% of savings
//  3. requested amount within 3x savings
//  4. requested amount within the group ceiling
func ValidateCapacity(profile BorrowerProfile, requested decimal.Decimal, termMonths int, rules CapacityRules) (CapacityDecision, error) {
	newInstallment, err := MonthlyPayment(requested, rules.InterestRate, termMonths)
	if err != nil {
		return CapacityDecision{}, err
	}
	total := profile.ScheduledInstallments.Add(newInstallment)

	decision := CapacityDecision{
		NewInstallment:   newInstallment,
		TotalInstallment: total,
	}

	if rules.SingleLoanAtATime && profile.ActiveLoans > 0 {
		decision.Reason = "member already has an active loan"
		return decision, nil
	}

	if total.GreaterThan(profile.SavingsBalance.Mul(installmentCeiling)) {
		decision.Reason = fmt.Sprintf(
			"cuota exceeds 40%% of savings: cuota %s > 0.4 x savings %s",
			money(total), money(profile.SavingsBalance),
		)
		return decision, nil
	}

	if requested.GreaterThan(profile.SavingsBalance.Mul(principalCeiling)) {
		decision.Reason = fmt.Sprintf(
			"amount exceeds 3x savings: requested %s > 3 x savings %s",
			money(requested), money(profile.SavingsBalance),
		)
		return decision, nil
	}

	if requested.GreaterThan(rules.MaxLoanAmount) {
		decision.Reason = fmt.Sprintf(
			"amount exceeds group ceiling: requested %s > max %s",
			money(requested), money(rules.MaxLoanAmount),
		)
		return decision, nil
	}

	decision.Approved = true
	return decision, nil
}
