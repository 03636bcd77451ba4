package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/savings-group-ledger/internal/domain/alert"
	"github.com/savings-group-ledger/internal/domain/outbox"
	"github.com/savings-group-ledger/internal/mora_processor/service"
)

// AlertRecorderImpl implements the AlertRecorder interface
type AlertRecorderImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

// NewAlertRecorder creates a new AlertRecorderImpl
func NewAlertRecorder(outboxRepo outbox.Repository, logger *slog.Logger) service.AlertRecorder {
	return &AlertRecorderImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// RecordAlerts stages one outbox message per alert inside the scan
// transaction. The poller delivers them to the archive store after commit.
func (m *AlertRecorderImpl) RecordAlerts(ctx context.Context, tx pgx.Tx, alerts []*alert.Alert) error {
	outboxRepoTx := m.outboxRepo.WithTx(tx)

	for _, a := range alerts {
		message, err := outbox.NewMessage(a)
		if err != nil {
			return fmt.Errorf("failed to build outbox message for alert %s: %w", a.ID.String(), err)
		}

		if err := outboxRepoTx.Create(ctx, message); err != nil {
			return fmt.Errorf("failed to create outbox message for alert %s: %w", a.ID.String(), err)
		}

		m.logger.Info("Alert staged in outbox",
			"alert_id", a.ID.String(),
			"loan_id", a.LoanID.String(),
			"severity", string(a.Severity),
		)
	}

	return nil
}
