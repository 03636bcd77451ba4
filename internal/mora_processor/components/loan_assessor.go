package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/savings-group-ledger/internal/config"
	"github.com/savings-group-ledger/internal/domain/alert"
	"github.com/savings-group-ledger/internal/domain/fine"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/loan"
	"github.com/savings-group-ledger/internal/domain/shared"
	"github.com/savings-group-ledger/internal/finance"
	"github.com/savings-group-ledger/internal/mora_processor/service"
)

// LoanAssessorImpl implements the LoanAssessor interface
type LoanAssessorImpl struct {
	loanRepo loan.Repository
	fineRepo fine.Repository
	cfg      config.DelinquencyConfig
	logger   *slog.Logger
}

// NewLoanAssessor creates a new LoanAssessorImpl
func NewLoanAssessor(loanRepo loan.Repository, fineRepo fine.Repository, cfg config.DelinquencyConfig, logger *slog.Logger) service.LoanAssessor {
	return &LoanAssessorImpl{
		loanRepo: loanRepo,
		fineRepo: fineRepo,
		cfg:      cfg,
		logger:   logger,
	}
}

// AssessGroup sweeps every active loan of the scanned group and returns one
// alert per overdue loan, plus the sweep statistics the scan run records.
// Loans whose schedule is fully settled, or whose earliest unpaid installment
// is not yet due, are skipped.
func (a *LoanAssessorImpl) AssessGroup(ctx context.Context, tx pgx.Tx, request *shared.ScanRequest, rules *group.Rules, session *group.Session) (*service.GroupAssessment, error) {
	logger := a.logger
	if request.CorrelationID != "" {
		logger = a.logger.With("correlation_id", request.CorrelationID)
	}

	loanRepoTx := a.loanRepo.WithTx(tx)

	loans, err := loanRepoTx.ListByGroupAndStatus(ctx, request.GroupID, shared.ActiveLoanStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list active loans for group %s: %w", request.GroupID.String(), err)
	}

	logger.Info("Sweeping active loans for delinquency",
		"scan_id", request.ScanID.String(),
		"group_id", request.GroupID.String(),
		"loan_count", len(loans),
	)

	var alerts []*alert.Alert
	for _, l := range loans {
		alt, err := a.assessLoan(ctx, tx, loanRepoTx, l.ID, request, rules, session, logger)
		if err != nil {
			return nil, err
		}
		if alt != nil {
			alerts = append(alerts, alt)
		}
	}

	return &service.GroupAssessment{Alerts: alerts, LoansAssessed: len(loans)}, nil
}

func (a *LoanAssessorImpl) assessLoan(
	ctx context.Context,
	tx pgx.Tx,
	loanRepoTx loan.Repository,
	loanID uuid.UUID,
	request *shared.ScanRequest,
	rules *group.Rules,
	session *group.Session,
	logger *slog.Logger,
) (*alert.Alert, error) {
	locked, err := loanRepoTx.LockForUpdate(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock loan %s: %w", loanID.String(), err)
	}

	installment, err := loanRepoTx.EarliestUnpaidInstallment(ctx, locked.ID)
	if err != nil {
		if errors.Is(err, loan.ErrNoUnpaidInstallments{LoanID: locked.ID}) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load earliest unpaid installment for loan %s: %w", locked.ID.String(), err)
	}

	outstanding, err := loanRepoTx.OutstandingPrincipal(ctx, locked.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute outstanding principal for loan %s: %w", locked.ID.String(), err)
	}

	assessment := finance.EvaluateDelinquency(installment.DueDate, outstanding, request.AsOf, a.cfg.HighSeverityDays)
	if !assessment.Overdue {
		return nil, nil
	}

	if locked.Status != shared.LoanStatusDelinquent {
		if err := locked.MarkDelinquent(); err != nil {
			return nil, fmt.Errorf("failed to mark loan %s delinquent: %w", locked.ID.String(), err)
		}
		if err := loanRepoTx.Update(ctx, locked); err != nil {
			return nil, fmt.Errorf("failed to update loan %s: %w", locked.ID.String(), err)
		}
		logger.Info("Loan marked delinquent",
			"loan_id", locked.ID.String(),
			"member_id", locked.MemberID.String(),
			"days_overdue", assessment.DaysOverdue,
		)
	}

	fineID, err := a.assessFine(ctx, tx, locked, request, rules, session, logger)
	if err != nil {
		return nil, err
	}

	return &alert.Alert{
		ID:            uuid.New(),
		ScanID:        request.ScanID,
		GroupID:       request.GroupID,
		LoanID:        locked.ID,
		MemberID:      locked.MemberID,
		FineID:        fineID,
		Severity:      assessment.Severity,
		DaysOverdue:   assessment.DaysOverdue,
		Message:       fmt.Sprintf("préstamo en mora: %d días de atraso desde %s", assessment.DaysOverdue, installment.DueDate.Format("2006-01-02")),
		CorrelationID: request.CorrelationID,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// assessFine charges the group's configured fine at most once per loan per
// as-of month. A zero fine amount disables fines for the group.
func (a *LoanAssessorImpl) assessFine(
	ctx context.Context,
	tx pgx.Tx,
	locked *loan.Loan,
	request *shared.ScanRequest,
	rules *group.Rules,
	session *group.Session,
	logger *slog.Logger,
) (*uuid.UUID, error) {
	if rules.FineAmount.Sign() <= 0 {
		logger.Info("Fine amount is zero, no fine assessed", "loan_id", locked.ID.String())
		return nil, nil
	}

	fineRepoTx := a.fineRepo.WithTx(tx)

	key := fine.DelinquencyAssessmentKey(locked.ID, request.AsOf)
	existing, err := fineRepoTx.GetByAssessmentKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check fine assessment %s: %w", key, err)
	}
	if existing != nil {
		logger.Info("Fine already assessed this period", "loan_id", locked.ID.String(), "assessment_key", key)
		return &existing.ID, nil
	}

	f, err := fine.NewDelinquencyFine(locked.MemberID, session.ID, locked.ID, rules.FineAmount, request.AsOf, a.cfg.FineDueDays)
	if err != nil {
		return nil, fmt.Errorf("failed to build delinquency fine for loan %s: %w", locked.ID.String(), err)
	}

	if err := fineRepoTx.Create(ctx, f); err != nil {
		if errors.Is(err, fine.ErrDuplicateAssessment{AssessmentKey: key}) {
			logger.Warn("Concurrent scan already assessed this fine", "loan_id", locked.ID.String(), "assessment_key", key)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create fine for loan %s: %w", locked.ID.String(), err)
	}

	logger.Info("Delinquency fine assessed",
		"fine_id", f.ID.String(),
		"loan_id", locked.ID.String(),
		"member_id", locked.MemberID.String(),
		"amount", rules.FineAmount.StringFixed(2),
	)
	return &f.ID, nil
}
