package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/savings-group-ledger/internal/domain/alert"
	"github.com/savings-group-ledger/internal/domain/outbox"
	"github.com/savings-group-ledger/internal/domain/shared"
)

// AlertArchiver publishes outbox messages to the alert archive
type AlertArchiver interface {
	Archive(ctx context.Context, message *outbox.Message) error
}

// AlertArchiverImpl implements AlertArchiver
type AlertArchiverImpl struct {
	outboxRepo outbox.Repository
	alertRepo  alert.Repository
	logger     *slog.Logger
}

// NewAlertArchiver creates a new archiver
func NewAlertArchiver(
	outboxRepo outbox.Repository,
	alertRepo alert.Repository,
	logger *slog.Logger,
) AlertArchiver {
	return &AlertArchiverImpl{
		outboxRepo: outboxRepo,
		alertRepo:  alertRepo,
		logger:     logger,
	}
}

// Archive writes the alert carried by an outbox message to the archive
// store and marks the message processed. A duplicate alert in the archive
// means an earlier attempt got as far as the write, so it counts as
// delivered.
func (p *AlertArchiverImpl) Archive(ctx context.Context, message *outbox.Message) error {
	alertToArchive, err := message.GetAlert()
	if err != nil {
		p.logger.Error("Failed to unmarshal alert from outbox payload",
			"outbox_id", message.ID, "alert_id", message.AlertID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	// Add correlation ID to logger
	logger := p.logger
	if alertToArchive.CorrelationID != "" {
		logger = p.logger.With("correlation_id", alertToArchive.CorrelationID)
	}

	logger.Info("Attempting to archive outbox alert", "outbox_id", message.ID, "alert_id", message.AlertID)

	if err := p.alertRepo.Create(ctx, alertToArchive); err != nil {
		var dup alert.ErrDuplicateAlert
		if errors.As(err, &dup) {
			logger.Info("Alert already archived", "alert_id", message.AlertID)
		} else {
			logger.Error("Failed to create alert in archive store", "alert_id", message.AlertID, "error", err)
			return fmt.Errorf("failed to archive alert %s: %w", message.AlertID.String(), err)
		}
	} else {
		logger.Info("Successfully archived alert", "alert_id", message.AlertID)
	}

	// Mark outbox message as processed
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "alert_id", message.AlertID, "error", err,
		)
		return fmt.Errorf("archive write for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.AlertID.String(), message.ID, err)
	}

	logger.Info("Outbox message successfully processed and marked as PROCESSED", "outbox_id", message.ID, "alert_id", message.AlertID)
	return nil
}
