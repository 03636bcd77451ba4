// Package finance implements the pure calculation core of the savings group
// engine: installment schedules, loan capacity rules, delinquency evaluation
// and end-of-cycle profit distribution. It has no storage or transport
// dependencies so every rule is unit-testable in isolation.
package finance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositivePrincipal = errors.New("principal must be greater than zero")
	ErrNonPositiveTerm      = errors.New("term must be at least one month")
	ErrRateOutOfRange       = errors.New("annual rate must be within [0, 1]")
)

var (
	twelve = decimal.NewFromInt(12)
	one    = decimal.NewFromInt(1)
)

// InstallmentLine is one row of an amortization schedule. Amounts are in the
// group currency, rounded to cents.
type InstallmentLine struct {
	Number    int
	Payment   decimal.Decimal
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Balance   decimal.Decimal
}

// Amortization is a fixed-installment schedule for a loan. The sum of the
// principal columns equals the loan principal exactly; the final installment
// absorbs any cent residue left by per-row rounding.
type Amortization struct {
	MonthlyPayment decimal.Decimal
	TotalInterest  decimal.Decimal
	TotalPayable   decimal.Decimal
	Schedule       []InstallmentLine
}

// Amortize builds a French (fixed installment) amortization schedule.
// annualRate is a fraction, e.g. 0.10 for 10%. A zero rate produces a
// straight-line schedule with zero interest.
func Amortize(principal, annualRate decimal.Decimal, termMonths int) (*Amortization, error) {
	if principal.Sign() <= 0 {
		return nil, ErrNonPositivePrincipal
	}
	if termMonths < 1 {
		return nil, ErrNonPositiveTerm
	}
	if annualRate.Sign() < 0 || annualRate.GreaterThan(one) {
		return nil, ErrRateOutOfRange
	}

	term := decimal.NewFromInt(int64(termMonths))
	monthlyRate := annualRate.Div(twelve)

	var payment decimal.Decimal
	if monthlyRate.IsZero() {
		payment = principal.Div(term).Round(2)
	} else {
		// payment = P * r * (1+r)^n / ((1+r)^n - 1)
		factor := one.Add(monthlyRate).Pow(term)
		payment = principal.Mul(monthlyRate).Mul(factor).Div(factor.Sub(one)).Round(2)
	}

	schedule := make([]InstallmentLine, 0, termMonths)
	balance := principal
	totalInterest := decimal.Zero

	for n := 1; n <= termMonths; n++ {
		interest := balance.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)
		balance = balance.Sub(principalPart)

		linePayment := payment
		if n == termMonths {
			// fold the rounding residue into the last installment so the
			// balance lands on exactly zero
			principalPart = principalPart.Add(balance)
			balance = decimal.Zero
			linePayment = principalPart.Add(interest)
		}

		totalInterest = totalInterest.Add(interest)
		schedule = append(schedule, InstallmentLine{
			Number:    n,
			Payment:   linePayment,
			Principal: principalPart,
			Interest:  interest,
			Balance:   balance,
		})
	}

	return &Amortization{
		MonthlyPayment: payment,
		TotalInterest:  totalInterest,
		TotalPayable:   principal.Add(totalInterest),
		Schedule:       schedule,
	}, nil
}

// MonthlyPayment computes only the fixed installment for a prospective loan.
// Capacity checks use it without building the full schedule.
func MonthlyPayment(principal, annualRate decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	am, err := Amortize(principal, annualRate, termMonths)
	if err != nil {
		return decimal.Zero, err
	}
	return am.MonthlyPayment, nil
}

func money(d decimal.Decimal) string {
	return fmt.Sprintf("$%s", d.StringFixed(2))
}
