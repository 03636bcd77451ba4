package loan

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savings-group-ledger/internal/domain/shared"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func pendingLoan(t *testing.T) *Loan {
	t.Helper()
	l, err := NewLoan(uuid.New(), uuid.New(), d("1000"), d("0.10"), 12)
	require.NoError(t, err)
	return l
}

func TestNewLoan(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		l := pendingLoan(t)

		assert.NotEqual(t, uuid.Nil, l.ID)
		assert.Equal(t, shared.LoanStatusPending, l.Status)
		assert.Equal(t, 1, l.ScheduleVersion)
		assert.True(t, l.Principal.Equal(d("1000")))
	})

	t.Run("RejectsBadInputs", func(t *testing.T) {
		_, err := NewLoan(uuid.New(), uuid.New(), decimal.Zero, d("0.10"), 12)
		assert.ErrorIs(t, err, ErrNonPositivePrincipal)

		_, err = NewLoan(uuid.New(), uuid.New(), d("1000"), d("0.10"), 0)
		assert.ErrorIs(t, err, ErrNonPositiveTerm)
	})
}

func TestLoan_Approve(t *testing.T) {
	t.Run("SuccessfulApproval", func(t *testing.T) {
		l := pendingLoan(t)
		disbursed := time.Now()
		due := disbursed.AddDate(1, 0, 0)

		err := l.Approve(d("87.92"), d("55.04"), d("1055.04"), disbursed, due)

		require.NoError(t, err)
		assert.Equal(t, shared.LoanStatusApproved, l.Status)
		assert.True(t, l.MonthlyPayment.Equal(d("87.92")))
		require.NotNil(t, l.DueDate)
		assert.Equal(t, due, *l.DueDate)
	})

	t.Run("OnlyPendingLoansAreApprovable", func(t *testing.T) {
		l := pendingLoan(t)
		require.NoError(t, l.Reject("amount exceeds group ceiling"))

		err := l.Approve(d("87.92"), d("55.04"), d("1055.04"), time.Now(), time.Now())
		assert.ErrorIs(t, err, ErrNotPending)
	})
}

func TestLoan_Reject(t *testing.T) {
	l := pendingLoan(t)

	err := l.Reject("member already has an active loan")

	require.NoError(t, err)
	assert.Equal(t, shared.LoanStatusRejected, l.Status)
	assert.Equal(t, "member already has an active loan", l.RejectionReason)

	assert.ErrorIs(t, pendingLoan(t).Reject(""), ErrEmptyRejectionReason)
}

func TestLoan_MarkDelinquent(t *testing.T) {
	t.Run("ApprovedLoanBecomesDelinquent", func(t *testing.T) {
		l := pendingLoan(t)
		require.NoError(t, l.Approve(d("87.92"), d("55.04"), d("1055.04"), time.Now(), time.Now()))

		require.NoError(t, l.MarkDelinquent())
		assert.Equal(t, shared.LoanStatusDelinquent, l.Status)
	})

	t.Run("PendingLoanCannot", func(t *testing.T) {
		assert.ErrorIs(t, pendingLoan(t).MarkDelinquent(), ErrNotApproved)
	})
}

func TestLoan_MarkPaid(t *testing.T) {
	t.Run("DelinquentLoanSettles", func(t *testing.T) {
		l := pendingLoan(t)
		require.NoError(t, l.Approve(d("87.92"), d("55.04"), d("1055.04"), time.Now(), time.Now()))
		require.NoError(t, l.MarkDelinquent())

		require.NoError(t, l.MarkPaid())
		assert.Equal(t, shared.LoanStatusPaid, l.Status)
	})

	t.Run("RejectedLoanCannot", func(t *testing.T) {
		l := pendingLoan(t)
		require.NoError(t, l.Reject("amount exceeds group ceiling"))
		assert.ErrorIs(t, l.MarkPaid(), ErrNotActive)
	})
}

func TestLoan_Refinance(t *testing.T) {
	l := pendingLoan(t)
	require.NoError(t, l.Approve(d("87.92"), d("55.04"), d("1055.04"), time.Now(), time.Now()))

	due := time.Now().AddDate(0, 6, 0)
	err := l.Refinance(d("500"), d("85.61"), d("13.66"), d("513.66"), 6, due)

	require.NoError(t, err)
	assert.Equal(t, shared.LoanStatusRefinanced, l.Status)
	assert.Equal(t, 2, l.ScheduleVersion, "refinance appends a new schedule version")
	assert.True(t, l.Principal.Equal(d("500")))
	assert.Equal(t, 6, l.TermMonths)

	// refinanced loans stay active and can be refinanced again
	require.NoError(t, l.Refinance(d("200"), d("67.06"), d("1.18"), d("201.18"), 3, due))
	assert.Equal(t, 3, l.ScheduleVersion)
}

func TestInstallment_Pay(t *testing.T) {
	inst := &Installment{
		ID:                 uuid.New(),
		LoanID:             uuid.New(),
		ScheduleVersion:    1,
		Number:             1,
		DueDate:            time.Now(),
		ScheduledPayment:   d("87.92"),
		ScheduledPrincipal: d("79.59"),
		ScheduledInterest:  d("8.33"),
	}

	at := time.Now()
	require.NoError(t, inst.Pay(at))

	assert.True(t, inst.IsPaid())
	assert.True(t, inst.PaidPrincipal.Equal(d("79.59")))
	assert.True(t, inst.PaidInterest.Equal(d("8.33")))

	assert.ErrorIs(t, inst.Pay(at), ErrAlreadyPaid)
}
