package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/shared"
	"github.com/savings-group-ledger/internal/mora_processor/service"
)

// ScanGuardImpl implements the ScanGuard interface
type ScanGuardImpl struct {
	groupRepo group.Repository
	logger    *slog.Logger
}

// NewScanGuard creates a new ScanGuardImpl
func NewScanGuard(groupRepo group.Repository, logger *slog.Logger) service.ScanGuard {
	return &ScanGuardImpl{
		groupRepo: groupRepo,
		logger:    logger,
	}
}

// AlreadyProcessed reports whether this exact scan request has completed
// before. Kafka redelivers on consumer restarts, so the scan id of the last
// completed run is compared against the incoming one.
func (g *ScanGuardImpl) AlreadyProcessed(ctx context.Context, request *shared.ScanRequest) (bool, error) {
	lastRun, err := g.groupRepo.GetLastScanRun(ctx, request.GroupID)
	if err != nil {
		if errors.Is(err, group.ErrNoScanRuns{GroupID: request.GroupID}) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load last scan run for group %s: %w", request.GroupID.String(), err)
	}

	if lastRun.ScanID == request.ScanID {
		g.logger.Info("Scan already completed, skipping redelivery",
			"scan_id", request.ScanID.String(),
			"group_id", request.GroupID.String(),
			"last_run_at", lastRun.LastRunAt,
		)
		return true, nil
	}

	return false, nil
}

// RecordCompletion stores the scan run marker and its sweep statistics inside
// the scan transaction so the marker and the scan's effects commit together
func (g *ScanGuardImpl) RecordCompletion(ctx context.Context, tx pgx.Tx, request *shared.ScanRequest, assessment *service.GroupAssessment) error {
	run := &group.ScanRun{
		GroupID:         request.GroupID,
		ScanID:          request.ScanID,
		LastRunAt:       request.AsOf,
		LoansAssessed:   assessment.LoansAssessed,
		DelinquentFound: len(assessment.Alerts),
	}

	if err := g.groupRepo.WithTx(tx).RecordScanRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record scan run for group %s: %w", request.GroupID.String(), err)
	}
	return nil
}
