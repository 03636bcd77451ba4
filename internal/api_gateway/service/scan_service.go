package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/shared"
	"github.com/savings-group-ledger/internal/platform/messaging/producers"
)

// ScanServiceImpl implements the ScanService interface
type ScanServiceImpl struct {
	groupRepo group.Repository
	producer  producers.MessagePublisher
	logger    *slog.Logger
}

// NewScanService creates a new scan service
func NewScanService(logger *slog.Logger, groupRepo group.Repository, producer producers.MessagePublisher) ScanService {
	return &ScanServiceImpl{
		groupRepo: groupRepo,
		producer:  producer,
		logger:    logger,
	}
}

// RequestScan publishes a delinquency scan request for the group. The last
// completed scan timestamp rides along so the processor can skip loans
// whose delinquent transition predates it; a group never scanned carries no
// timestamp and every active loan is eligible.
func (s *ScanServiceImpl) RequestScan(ctx context.Context, groupID uuid.UUID, correlationID string) (*shared.ScanRequest, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	var lastRunAt *time.Time
	lastRun, err := s.groupRepo.GetLastScanRun(ctx, groupID)
	if err != nil && !errors.Is(err, group.ErrNoScanRuns{}) {
		return nil, err
	}
	if lastRun != nil {
		lastRunAt = &lastRun.LastRunAt
	}

	now := time.Now().UTC()
	request := &shared.ScanRequest{
		ScanID:        uuid.New(),
		GroupID:       groupID,
		AsOf:          now,
		LastRunAt:     lastRunAt,
		CorrelationID: correlationID,
		RequestedAt:   now,
	}

	if err := s.producer.Publish(ctx, groupID.String(), request); err != nil {
		s.logger.Error("Failed to publish scan request",
			"group_id", groupID,
			"scan_id", request.ScanID,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Delinquency scan requested",
		"group_id", groupID,
		"scan_id", request.ScanID,
		"as_of", request.AsOf,
	)
	return request, nil
}
