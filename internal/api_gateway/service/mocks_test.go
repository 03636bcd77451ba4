package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/savings-group-ledger/internal/domain/cashbox"
	"github.com/savings-group-ledger/internal/domain/cycle"
	"github.com/savings-group-ledger/internal/domain/fine"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/loan"
	"github.com/savings-group-ledger/internal/domain/member"
	"github.com/savings-group-ledger/internal/domain/savings"
	"github.com/savings-group-ledger/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockTxManager runs the transactional function directly; repositories under
// test treat the nil tx as their own querier via WithTx returning self
type mockTxManager struct {
	err error
}

func (m *mockTxManager) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(nil)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, mem *member.Member) error {
	args := m.Called(ctx, mem)
	return args.Error(0)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepository) GetByDocumentID(ctx context.Context, documentID string) (*member.Member, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*member.Member, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.Member), args.Error(1)
}

func (m *MockMemberRepository) Update(ctx context.Context, mem *member.Member) error {
	args := m.Called(ctx, mem)
	return args.Error(0)
}

func (m *MockMemberRepository) WithTx(tx pgx.Tx) member.Repository {
	return m
}

type MockSavingsRepository struct {
	mock.Mock
}

func (m *MockSavingsRepository) Create(ctx context.Context, entry *savings.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSavingsRepository) GetByID(ctx context.Context, id uuid.UUID) (*savings.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*savings.Entry), args.Error(1)
}

func (m *MockSavingsRepository) LatestByMember(ctx context.Context, memberID uuid.UUID) (*savings.Entry, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*savings.Entry), args.Error(1)
}

func (m *MockSavingsRepository) ListByMember(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]*savings.Entry, error) {
	args := m.Called(ctx, memberID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*savings.Entry), args.Error(1)
}

func (m *MockSavingsRepository) LatestBalancesByGroup(ctx context.Context, groupID uuid.UUID) ([]savings.MemberBalance, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]savings.MemberBalance), args.Error(1)
}

func (m *MockSavingsRepository) WithTx(tx pgx.Tx) savings.Repository {
	return m
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*loan.Loan, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByGroupAndStatus(ctx context.Context, groupID uuid.UUID, statuses []shared.LoanStatus) ([]*loan.Loan, error) {
	args := m.Called(ctx, groupID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, l *loan.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoanRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) CountActiveByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	args := m.Called(ctx, memberID)
	return args.Int(0), args.Error(1)
}

func (m *MockLoanRepository) SumActiveInstallmentsByMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLoanRepository) CreateInstallments(ctx context.Context, installments []*loan.Installment) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

func (m *MockLoanRepository) GetInstallments(ctx context.Context, loanID uuid.UUID, scheduleVersion int) ([]*loan.Installment, error) {
	args := m.Called(ctx, loanID, scheduleVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*loan.Installment), args.Error(1)
}

func (m *MockLoanRepository) EarliestUnpaidInstallment(ctx context.Context, loanID uuid.UUID) (*loan.Installment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Installment), args.Error(1)
}

func (m *MockLoanRepository) UpdateInstallment(ctx context.Context, installment *loan.Installment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockLoanRepository) OutstandingPrincipal(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLoanRepository) SumInterestPaidByGroup(ctx context.Context, groupID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, groupID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLoanRepository) WithTx(tx pgx.Tx) loan.Repository {
	return m
}

type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Create(ctx context.Context, g *group.Group) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*group.Group), args.Error(1)
}

func (m *MockGroupRepository) Update(ctx context.Context, g *group.Group) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGroupRepository) GetRules(ctx context.Context, groupID uuid.UUID) (*group.Rules, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*group.Rules), args.Error(1)
}

func (m *MockGroupRepository) UpsertRules(ctx context.Context, rules *group.Rules) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

func (m *MockGroupRepository) CreateSession(ctx context.Context, session *group.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockGroupRepository) LatestSession(ctx context.Context, groupID uuid.UUID) (*group.Session, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*group.Session), args.Error(1)
}

func (m *MockGroupRepository) GetLastScanRun(ctx context.Context, groupID uuid.UUID) (*group.ScanRun, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*group.ScanRun), args.Error(1)
}

func (m *MockGroupRepository) RecordScanRun(ctx context.Context, run *group.ScanRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockGroupRepository) WithTx(tx pgx.Tx) group.Repository {
	return m
}

type MockCashboxRepository struct {
	mock.Mock
}

func (m *MockCashboxRepository) Create(ctx context.Context, movement *cashbox.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockCashboxRepository) GetByID(ctx context.Context, id uuid.UUID) (*cashbox.Movement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashbox.Movement), args.Error(1)
}

func (m *MockCashboxRepository) ListByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*cashbox.Movement, error) {
	args := m.Called(ctx, groupID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cashbox.Movement), args.Error(1)
}

func (m *MockCashboxRepository) Balance(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCashboxRepository) SumByDirection(ctx context.Context, groupID uuid.UUID, direction shared.MovementDirection, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, groupID, direction, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCashboxRepository) WithTx(tx pgx.Tx) cashbox.Repository {
	return m
}

type MockFineRepository struct {
	mock.Mock
}

func (m *MockFineRepository) Create(ctx context.Context, f *fine.Fine) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFineRepository) GetByID(ctx context.Context, id uuid.UUID) (*fine.Fine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fine.Fine), args.Error(1)
}

func (m *MockFineRepository) GetByAssessmentKey(ctx context.Context, key string) (*fine.Fine, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fine.Fine), args.Error(1)
}

func (m *MockFineRepository) ListUnpaidByMember(ctx context.Context, memberID uuid.UUID) ([]*fine.Fine, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fine.Fine), args.Error(1)
}

func (m *MockFineRepository) Update(ctx context.Context, f *fine.Fine) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFineRepository) SumPaidByGroup(ctx context.Context, groupID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, groupID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockFineRepository) WithTx(tx pgx.Tx) fine.Repository {
	return m
}

type MockClosureRepository struct {
	mock.Mock
}

func (m *MockClosureRepository) Create(ctx context.Context, closure *cycle.Closure) error {
	args := m.Called(ctx, closure)
	return args.Error(0)
}

func (m *MockClosureRepository) GetByGroupAndCycle(ctx context.Context, groupID uuid.UUID, cycleNumber int) (*cycle.Closure, error) {
	args := m.Called(ctx, groupID, cycleNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cycle.Closure), args.Error(1)
}

func (m *MockClosureRepository) ListByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*cycle.Closure, error) {
	args := m.Called(ctx, groupID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cycle.Closure), args.Error(1)
}

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
