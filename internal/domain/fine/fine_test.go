package fine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestNewDelinquencyFine(t *testing.T) {
	loanID := uuid.New()
	asOf := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	f, err := NewDelinquencyFine(uuid.New(), uuid.New(), loanID, d("10"), asOf, 15)

	require.NoError(t, err)
	require.NotNil(t, f.LoanID)
	assert.Equal(t, loanID, *f.LoanID)
	assert.Equal(t, loanID.String()+":2025-06", f.AssessmentKey)
	assert.Equal(t, asOf.AddDate(0, 0, 15), f.DueDate)
	assert.True(t, f.AmountPaid.IsZero())
}

func TestDelinquencyAssessmentKey_SamePeriodCollides(t *testing.T) {
	loanID := uuid.New()
	first := DelinquencyAssessmentKey(loanID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	sameMonth := DelinquencyAssessmentKey(loanID, time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC))
	nextMonth := DelinquencyAssessmentKey(loanID, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, first, sameMonth)
	assert.NotEqual(t, first, nextMonth)
}

func TestFine_Pay(t *testing.T) {
	newFine := func(t *testing.T) *Fine {
		t.Helper()
		f, err := NewAttendanceFine(uuid.New(), uuid.New(), d("10"), time.Now(), 15)
		require.NoError(t, err)
		return f
	}

	t.Run("PartialThenFull", func(t *testing.T) {
		f := newFine(t)

		require.NoError(t, f.Pay(d("4"), time.Now()))
		assert.Nil(t, f.PaidAt, "partial payment does not settle the fine")

		require.NoError(t, f.Pay(d("6"), time.Now()))
		assert.NotNil(t, f.PaidAt)
		assert.True(t, f.AmountPaid.Equal(d("10")))
	})

	t.Run("Overpayment", func(t *testing.T) {
		f := newFine(t)
		assert.ErrorIs(t, f.Pay(d("10.01"), time.Now()), ErrOverpayment)
	})

	t.Run("AlreadyPaid", func(t *testing.T) {
		f := newFine(t)
		require.NoError(t, f.Pay(d("10"), time.Now()))
		assert.ErrorIs(t, f.Pay(d("1"), time.Now()), ErrAlreadyPaid)
	})
}
