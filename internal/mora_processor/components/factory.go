package components

import (
	"log/slog"

	"github.com/savings-group-ledger/internal/config"
	"github.com/savings-group-ledger/internal/domain/fine"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/loan"
	"github.com/savings-group-ledger/internal/domain/outbox"
	"github.com/savings-group-ledger/internal/mora_processor/service"
	"github.com/savings-group-ledger/internal/platform/persistence"
)

// CreateProcessingService creates a new ProcessingService with all its dependencies.
func CreateProcessingService(
	pgDB *persistence.PostgresDB,
	groupRepo group.Repository,
	loanRepo loan.Repository,
	fineRepo fine.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProcessingService {
	guard := NewScanGuard(groupRepo, logger)
	sessions := NewSessionProvider(groupRepo, logger)
	assessor := NewLoanAssessor(loanRepo, fineRepo, cfg.Delinquency, logger)
	alerts := NewAlertRecorder(outboxRepo, logger)

	baseService := service.NewProcessingService(
		pgDB,
		groupRepo,
		guard,
		sessions,
		assessor,
		alerts,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool processing service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
