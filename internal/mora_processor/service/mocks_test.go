package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/savings-group-ledger/internal/domain/alert"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockTxManager runs the transactional function directly; components under
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

type MockScanGuard struct {
	mock.Mock
}

func (m *MockScanGuard) AlreadyProcessed(ctx context.Context, request *shared.ScanRequest) (bool, error) {
	args := m.Called(ctx, request)
	return args.Bool(0), args.Error(1)
}

func (m *MockScanGuard) RecordCompletion(ctx context.Context, tx pgx.Tx, request *shared.ScanRequest, assessment *GroupAssessment) error {
	args := m.Called(ctx, tx, request, assessment)
	return args.Error(0)
}

type MockSessionProvider struct {
	mock.Mock
}

func (m *MockSessionProvider) EnsureSession(ctx context.Context, tx pgx.Tx, request *shared.ScanRequest) (*group.Session, error) {
	args := m.Called(ctx, tx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*group.Session), args.Error(1)
}

type MockLoanAssessor struct {
	mock.Mock
}

func (m *MockLoanAssessor) AssessGroup(ctx context.Context, tx pgx.Tx, request *shared.ScanRequest, rules *group.Rules, session *group.Session) (*GroupAssessment, error) {
	args := m.Called(ctx, tx, request, rules, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GroupAssessment), args.Error(1)
}

type MockAlertRecorder struct {
	mock.Mock
}

func (m *MockAlertRecorder) RecordAlerts(ctx context.Context, tx pgx.Tx, alerts []*alert.Alert) error {
	args := m.Called(ctx, tx, alerts)
	return args.Error(0)
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
