package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/savings-group-ledger/internal/domain/alert"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/shared"
)

// ProcessingService defines the interface for processing delinquency scan
// requests.
type ProcessingService interface {
	ProcessScan(ctx context.Context, request *shared.ScanRequest) error
}

// TxManager runs a function within a database transaction
type TxManager interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// GroupAssessment is the outcome of sweeping one group's active loans
type GroupAssessment struct {
	Alerts        []*alert.Alert
	LoansAssessed int
}

// ScanGuard decides whether a scan request was already handled and records
// completed runs together with their sweep statistics
type ScanGuard interface {
	AlreadyProcessed(ctx context.Context, request *shared.ScanRequest) (bool, error)
	RecordCompletion(ctx context.Context, tx pgx.Tx, request *shared.ScanRequest, assessment *GroupAssessment) error
}

// SessionProvider resolves the meeting session that scan-issued fines attach
// to, opening a synthetic one when no session matches the scan date
type SessionProvider interface {
	EnsureSession(ctx context.Context, tx pgx.Tx, request *shared.ScanRequest) (*group.Session, error)
}

// LoanAssessor sweeps a group's active loans, marks the overdue ones
// delinquent, assesses fines and returns the resulting alerts
type LoanAssessor interface {
	AssessGroup(ctx context.Context, tx pgx.Tx, request *shared.ScanRequest, rules *group.Rules, session *group.Session) (*GroupAssessment, error)
}

// AlertRecorder stages alerts in the transactional outbox for delivery to
// the archive store
type AlertRecorder interface {
	RecordAlerts(ctx context.Context, tx pgx.Tx, alerts []*alert.Alert) error
}
