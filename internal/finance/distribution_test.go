package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCycleTotals(t *testing.T) {
	t.Run("profit is interest plus fines minus expenses", func(t *testing.T) {
		totals := ComputeCycleTotals(d("5000"), d("120"), d("30"), d("50"))
		assert.True(t, totals.NetProfit.Equal(d("100")))
	})

	t.Run("loss floors at zero", func(t *testing.T) {
		totals := ComputeCycleTotals(d("5000"), d("20"), d("10"), d("100"))
		assert.True(t, totals.NetProfit.IsZero())
	})
}

func TestDistribute_Proportional(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	members := []MemberSavings{
		{MemberID: a, Savings: d("300")},
		{MemberID: b, Savings: d("700")},
	}

	lines, err := Distribute(members, d("100"))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.True(t, lines[0].ProfitShare.Equal(d("30")))
	assert.True(t, lines[1].ProfitShare.Equal(d("70")))
	assert.True(t, lines[0].TotalWithdrawal.Equal(d("330")))
	assert.True(t, lines[1].TotalWithdrawal.Equal(d("770")))
}

func TestDistribute_ZeroSaverGetsNothing(t *testing.T) {
	members := []MemberSavings{
		{MemberID: uuid.New(), Savings: d("500")},
		{MemberID: uuid.New(), Savings: decimal.Zero},
	}

	lines, err := Distribute(members, d("50"))
	require.NoError(t, err)

	assert.True(t, lines[0].ProfitShare.Equal(d("50")))
	assert.True(t, lines[1].ProfitShare.IsZero())
	assert.True(t, lines[1].TotalWithdrawal.IsZero())
}

func TestDistribute_ZeroProfit(t *testing.T) {
	members := []MemberSavings{{MemberID: uuid.New(), Savings: d("200")}}

	lines, err := Distribute(members, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, lines[0].ProfitShare.IsZero())
}

func TestDistribute_NoSavingsToWeightBy(t *testing.T) {
	members := []MemberSavings{{MemberID: uuid.New(), Savings: decimal.Zero}}

	_, err := Distribute(members, d("80"))
	assert.ErrorIs(t, err, ErrUndistributableProfit)
}
