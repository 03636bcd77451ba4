package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/shared"
)

type ProcessingServiceImpl struct {
	txManager TxManager
	groupRepo group.Repository
	guard     ScanGuard
	sessions  SessionProvider
	assessor  LoanAssessor
	alerts    AlertRecorder
	logger    *slog.Logger
}

func NewProcessingService(
	txManager TxManager,
	groupRepo group.Repository,
	guard ScanGuard,
	sessions SessionProvider,
	assessor LoanAssessor,
	alerts AlertRecorder,
	logger *slog.Logger,
) ProcessingService {
	return &ProcessingServiceImpl{
		txManager: txManager,
		groupRepo: groupRepo,
		guard:     guard,
		sessions:  sessions,
		assessor:  assessor,
		alerts:    alerts,
		logger:    logger,
	}
}

// ProcessScan handles the core logic for a delinquency scan: mark overdue
// loans, assess fines and stage alerts, all within one transaction. A nil
// return acknowledges the Kafka message; errors propagate so the consumer
// retries.
func (s *ProcessingServiceImpl) ProcessScan(ctx context.Context, request *shared.ScanRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Processing delinquency scan",
		"scan_id", request.ScanID.String(),
		"group_id", request.GroupID.String(),
		"as_of", request.AsOf,
	)

	// 1. Skip redelivered scans that already completed
	skip, err := s.guard.AlreadyProcessed(ctx, request)
	if err != nil {
		return err // Let Kafka retry
	}
	if skip {
		return nil // Already processed, acknowledge
	}

	// 2. Load the group rules the scan applies
	rules, err := s.groupRepo.GetRules(ctx, request.GroupID)
	if err != nil {
		if errors.Is(err, group.ErrRulesNotFound{GroupID: request.GroupID}) || errors.Is(err, group.ErrGroupNotFound{GroupID: request.GroupID}) {
			logger.Warn("Scan targets a group without configured rules, dropping request",
				"scan_id", request.ScanID.String(),
				"group_id", request.GroupID.String(),
				"error", err,
			)
			return nil // Nothing to scan against, acknowledge
		}
		return fmt.Errorf("failed to load rules for group %s: %w", request.GroupID.String(), err)
	}

	// 3. Run the sweep in one transaction so loan transitions, fines,
	// alerts and the run marker commit together
	var loansAssessed, alertCount int
	err = s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		session, err := s.sessions.EnsureSession(ctx, tx, request)
		if err != nil {
			return err
		}

		assessment, err := s.assessor.AssessGroup(ctx, tx, request, rules, session)
		if err != nil {
			return err
		}
		loansAssessed = assessment.LoansAssessed
		alertCount = len(assessment.Alerts)

		if len(assessment.Alerts) > 0 {
			if err := s.alerts.RecordAlerts(ctx, tx, assessment.Alerts); err != nil {
				return err
			}
		}

		return s.guard.RecordCompletion(ctx, tx, request, assessment)
	})
	if err != nil {
		logger.Error("Delinquency scan failed",
			"scan_id", request.ScanID.String(),
			"group_id", request.GroupID.String(),
			"error", err,
		)
		return fmt.Errorf("scan %s for group %s failed: %w", request.ScanID.String(), request.GroupID.String(), err)
	}

	logger.Info("Delinquency scan completed",
		"scan_id", request.ScanID.String(),
		"group_id", request.GroupID.String(),
		"loans_assessed", loansAssessed,
		"alerts", alertCount,
	)
	return nil
}
