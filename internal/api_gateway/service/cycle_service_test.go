package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/savings-group-ledger/internal/domain/cashbox"
	"github.com/savings-group-ledger/internal/domain/cycle"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/loan"
	"github.com/savings-group-ledger/internal/domain/member"
	"github.com/savings-group-ledger/internal/domain/savings"
	"github.com/savings-group-ledger/internal/domain/shared"
	"github.com/savings-group-ledger/internal/finance"
)

type cycleFixture struct {
	svc         CycleService
	groupRepo   *MockGroupRepository
	memberRepo  *MockMemberRepository
	savingsRepo *MockSavingsRepository
	loanRepo    *MockLoanRepository
	fineRepo    *MockFineRepository
	cashboxRepo *MockCashboxRepository
	closureRepo *MockClosureRepository
}

func newCycleFixture() *cycleFixture {
	f := &cycleFixture{
		groupRepo:   new(MockGroupRepository),
		memberRepo:  new(MockMemberRepository),
		savingsRepo: new(MockSavingsRepository),
		loanRepo:    new(MockLoanRepository),
		fineRepo:    new(MockFineRepository),
		cashboxRepo: new(MockCashboxRepository),
		closureRepo: new(MockClosureRepository),
	}
	f.svc = NewCycleService(newTestLogger(), &mockTxManager{}, f.groupRepo, f.memberRepo, f.savingsRepo, f.loanRepo, f.fineRepo, f.cashboxRepo, f.closureRepo)
	return f
}

func TestCycleService_CloseCycle(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	cycleStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cycleEnd := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	newGroup := func() *group.Group {
		return &group.Group{ID: groupID, Name: "Grupo Esperanza", CycleNumber: 1}
	}
	newRules := func() *group.Rules {
		return &group.Rules{
			GroupID:       groupID,
			FineAmount:    decimal.NewFromInt(10),
			InterestRate:  decimal.NewFromFloat(0.10),
			MaxLoanAmount: decimal.NewFromInt(10000),
			CycleStart:    cycleStart,
			CycleEnd:      cycleEnd,
		}
	}

	t.Run("DistributesProfitAndResetsLedger", func(t *testing.T) {
		f := newCycleFixture()
		g := newGroup()
		rules := newRules()

		ana, _ := member.NewMember(groupID, "Ana", "DOC-A", "")
		berta, _ := member.NewMember(groupID, "Berta", "DOC-B", "")

		f.groupRepo.On("GetByID", ctx, groupID).Return(g, nil)
		f.groupRepo.On("GetRules", ctx, groupID).Return(rules, nil)
		f.loanRepo.On("ListByGroupAndStatus", ctx, groupID, shared.ActiveLoanStatuses).Return([]*loan.Loan{}, nil)
		f.memberRepo.On("ListByGroup", ctx, groupID).Return([]*member.Member{ana, berta}, nil)
		f.savingsRepo.On("LatestBalancesByGroup", ctx, groupID).Return([]savings.MemberBalance{
			{MemberID: ana.ID, Balance: decimal.NewFromInt(300)},
			{MemberID: berta.ID, Balance: decimal.NewFromInt(700)},
		}, nil)
		f.loanRepo.On("SumInterestPaidByGroup", ctx, groupID, cycleStart, cycleEnd).Return(decimal.NewFromInt(80), nil)
		f.fineRepo.On("SumPaidByGroup", ctx, groupID, cycleStart, cycleEnd).Return(decimal.NewFromInt(30), nil)
		f.cashboxRepo.On("SumByDirection", ctx, groupID, shared.MovementDirectionOut, cycleStart, cycleEnd).Return(decimal.NewFromInt(10), nil)
		f.closureRepo.On("Create", ctx, mock.AnythingOfType("*cycle.Closure")).Return(nil)
		f.groupRepo.On("CreateSession", ctx, mock.AnythingOfType("*group.Session")).Return(nil)
		f.cashboxRepo.On("Create", ctx, mock.AnythingOfType("*cashbox.Movement")).Return(nil)
		f.savingsRepo.On("Create", ctx, mock.AnythingOfType("*savings.Entry")).Return(nil)
		f.groupRepo.On("UpsertRules", ctx, rules).Return(nil)
		f.groupRepo.On("Update", ctx, g).Return(nil)

		closure, err := f.svc.CloseCycle(ctx, groupID, "corr-close")

		require.NoError(t, err)
		assert.Equal(t, 1, closure.CycleNumber)
		assert.True(t, closure.TotalSavings.Equal(decimal.NewFromInt(1000)))
		assert.True(t, closure.NetProfit.Equal(decimal.NewFromInt(100)))
		require.Len(t, closure.Details, 2)

		byName := map[string]cycle.Detail{}
		for _, d := range closure.Details {
			byName[d.MemberName] = d
		}
		assert.True(t, byName["Ana"].ProfitShare.Equal(decimal.NewFromInt(30)))
		assert.True(t, byName["Ana"].TotalWithdrawal.Equal(decimal.NewFromInt(330)))
		assert.True(t, byName["Berta"].ProfitShare.Equal(decimal.NewFromInt(70)))
		assert.True(t, byName["Berta"].TotalWithdrawal.Equal(decimal.NewFromInt(770)))

		payout := f.cashboxRepo.Calls[1].Arguments.Get(1).(*cashbox.Movement)
		assert.Equal(t, shared.MovementDirectionOut, payout.Direction)
		assert.True(t, payout.Amount.Equal(decimal.NewFromInt(1100)))

		session := f.groupRepo.Calls[2].Arguments.Get(1).(*group.Session)
		assert.True(t, session.Synthetic)

		assert.Equal(t, 2, g.CycleNumber)
		assert.Equal(t, cycleEnd, rules.CycleStart)
		assert.Equal(t, cycleEnd.Add(cycleEnd.Sub(cycleStart)), rules.CycleEnd)

		f.savingsRepo.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("PositiveProfitWithZeroSavingsFails", func(t *testing.T) {
		f := newCycleFixture()
		g := newGroup()
		rules := newRules()

		ana, _ := member.NewMember(groupID, "Ana", "DOC-A", "")

		f.groupRepo.On("GetByID", ctx, groupID).Return(g, nil)
		f.groupRepo.On("GetRules", ctx, groupID).Return(rules, nil)
		f.loanRepo.On("ListByGroupAndStatus", ctx, groupID, shared.ActiveLoanStatuses).Return([]*loan.Loan{}, nil)
		f.memberRepo.On("ListByGroup", ctx, groupID).Return([]*member.Member{ana}, nil)
		f.savingsRepo.On("LatestBalancesByGroup", ctx, groupID).Return([]savings.MemberBalance{
			{MemberID: ana.ID, Balance: decimal.Zero},
		}, nil)
		f.loanRepo.On("SumInterestPaidByGroup", ctx, groupID, cycleStart, cycleEnd).Return(decimal.NewFromInt(50), nil)
		f.fineRepo.On("SumPaidByGroup", ctx, groupID, cycleStart, cycleEnd).Return(decimal.Zero, nil)
		f.cashboxRepo.On("SumByDirection", ctx, groupID, shared.MovementDirectionOut, cycleStart, cycleEnd).Return(decimal.Zero, nil)

		_, err := f.svc.CloseCycle(ctx, groupID, "corr-zero")

		assert.ErrorIs(t, err, finance.ErrUndistributableProfit)
		f.closureRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("OpenLoansBlockClose", func(t *testing.T) {
		f := newCycleFixture()
		g := newGroup()
		rules := newRules()

		outstanding := &loan.Loan{ID: uuid.New(), GroupID: groupID, Status: shared.LoanStatusApproved}

		f.groupRepo.On("GetByID", ctx, groupID).Return(g, nil)
		f.groupRepo.On("GetRules", ctx, groupID).Return(rules, nil)
		f.loanRepo.On("ListByGroupAndStatus", ctx, groupID, shared.ActiveLoanStatuses).Return([]*loan.Loan{outstanding}, nil)

		_, err := f.svc.CloseCycle(ctx, groupID, "corr-open")

		assert.ErrorIs(t, err, cycle.ErrOpenLoans{GroupID: groupID})
		f.memberRepo.AssertNotCalled(t, "ListByGroup", mock.Anything, mock.Anything)
		f.closureRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("DuplicateClosureRollsBack", func(t *testing.T) {
		f := newCycleFixture()
		g := newGroup()
		rules := newRules()

		f.groupRepo.On("GetByID", ctx, groupID).Return(g, nil)
		f.groupRepo.On("GetRules", ctx, groupID).Return(rules, nil)
		f.loanRepo.On("ListByGroupAndStatus", ctx, groupID, shared.ActiveLoanStatuses).Return([]*loan.Loan{}, nil)
		f.memberRepo.On("ListByGroup", ctx, groupID).Return([]*member.Member{}, nil)
		f.savingsRepo.On("LatestBalancesByGroup", ctx, groupID).Return([]savings.MemberBalance{}, nil)
		f.loanRepo.On("SumInterestPaidByGroup", ctx, groupID, cycleStart, cycleEnd).Return(decimal.Zero, nil)
		f.fineRepo.On("SumPaidByGroup", ctx, groupID, cycleStart, cycleEnd).Return(decimal.Zero, nil)
		f.cashboxRepo.On("SumByDirection", ctx, groupID, shared.MovementDirectionOut, cycleStart, cycleEnd).Return(decimal.Zero, nil)
		f.closureRepo.On("Create", ctx, mock.AnythingOfType("*cycle.Closure")).
			Return(cycle.ErrDuplicateClosure{GroupID: groupID, CycleNumber: 1})

		_, err := f.svc.CloseCycle(ctx, groupID, "corr-dup")

		assert.Error(t, err)
		f.groupRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
