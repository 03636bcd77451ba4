package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/cashbox"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/loan"
	"github.com/savings-group-ledger/internal/domain/member"
	"github.com/savings-group-ledger/internal/domain/savings"
	"github.com/savings-group-ledger/internal/domain/shared"
	"github.com/savings-group-ledger/internal/finance"
)

// LoanServiceImpl implements the LoanService interface
type LoanServiceImpl struct {
	txManager   TxManager
	loanRepo    loan.Repository
	memberRepo  member.Repository
	savingsRepo savings.Repository
	groupRepo   group.Repository
	cashboxRepo cashbox.Repository
	logger      *slog.Logger
}

// NewLoanService creates a new loan service
func NewLoanService(
	logger *slog.Logger,
	txManager TxManager,
	loanRepo loan.Repository,
	memberRepo member.Repository,
	savingsRepo savings.Repository,
	groupRepo group.Repository,
	cashboxRepo cashbox.Repository,
) LoanService {
	return &LoanServiceImpl{
		txManager:   txManager,
		loanRepo:    loanRepo,
		memberRepo:  memberRepo,
		savingsRepo: savingsRepo,
		groupRepo:   groupRepo,
		cashboxRepo: cashboxRepo,
		logger:      logger,
	}
}

// RequestLoan evaluates the group lending rules against the member's savings
// and active obligations, then records the loan. The capacity read and the
// loan insert share one transaction so two simultaneous requests cannot both
// pass the single-loan rule. A rejection persists the loan in Rejected state
// with the failed policy as reason.
func (s *LoanServiceImpl) RequestLoan(ctx context.Context, memberID uuid.UUID, amount decimal.Decimal, termMonths int) (*loan.Loan, finance.CapacityDecision, error) {
	m, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, finance.CapacityDecision{}, err
	}

	rules, err := s.groupRepo.GetRules(ctx, m.GroupID)
	if err != nil {
		return nil, finance.CapacityDecision{}, err
	}

	var (
		l        *loan.Loan
		decision finance.CapacityDecision
	)
	err = s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		loanRepo := s.loanRepo.WithTx(tx)
		savingsRepo := s.savingsRepo.WithTx(tx)

		balance := decimal.Zero
		latest, err := savingsRepo.LatestByMember(ctx, memberID)
		if err != nil && !errors.Is(err, savings.ErrNoEntries{}) {
			return err
		}
		if latest != nil {
			balance = latest.ResultingBalance
		}

		activeLoans, err := loanRepo.CountActiveByMember(ctx, memberID)
		if err != nil {
			return err
		}

		scheduled, err := loanRepo.SumActiveInstallmentsByMember(ctx, memberID)
		if err != nil {
			return err
		}

		profile := finance.BorrowerProfile{
			SavingsBalance:        balance,
			ScheduledInstallments: scheduled,
			ActiveLoans:           activeLoans,
		}
		capacityRules := finance.CapacityRules{
			InterestRate:      rules.InterestRate,
			MaxLoanAmount:     rules.MaxLoanAmount,
			SingleLoanAtATime: rules.SingleLoanAtATime,
		}

		decision, err = finance.ValidateCapacity(profile, amount, termMonths, capacityRules)
		if err != nil {
			return err
		}

		l, err = loan.NewLoan(memberID, m.GroupID, amount, rules.InterestRate, termMonths)
		if err != nil {
			return err
		}

		if !decision.Approved {
			if err := l.Reject(decision.Reason); err != nil {
				return err
			}
		}

		return loanRepo.Create(ctx, l)
	})
	if err != nil {
		return nil, finance.CapacityDecision{}, err
	}

	if decision.Approved {
		s.logger.Info("Loan request accepted for review",
			"loan_id", l.ID,
			"member_id", memberID,
			"amount", amount,
			"term_months", termMonths,
		)
	} else {
		s.logger.Info("Loan request rejected by capacity rules",
			"loan_id", l.ID,
			"member_id", memberID,
			"reason", decision.Reason,
		)
	}

	return l, decision, nil
}

// ApproveLoan computes the amortization schedule, persists the installment
// batch and records the disbursement as a cash-box outflow, atomically
func (s *LoanServiceImpl) ApproveLoan(ctx context.Context, loanID uuid.UUID, disbursedAt time.Time) (*loan.Loan, error) {
	var l *loan.Loan
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		loanRepo := s.loanRepo.WithTx(tx)
		cashboxRepo := s.cashboxRepo.WithTx(tx)

		var err error
		l, err = loanRepo.LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		am, err := finance.Amortize(l.Principal, l.InterestRate, l.TermMonths)
		if err != nil {
			return err
		}

		dueDate := disbursedAt.AddDate(0, l.TermMonths, 0)
		if err := l.Approve(am.MonthlyPayment, am.TotalInterest, am.TotalPayable, disbursedAt, dueDate); err != nil {
			return err
		}
		if err := loanRepo.Update(ctx, l); err != nil {
			return err
		}

		installments := buildInstallments(l, am, disbursedAt)
		if err := loanRepo.CreateInstallments(ctx, installments); err != nil {
			return err
		}

		movement, err := cashbox.NewMovement(l.GroupID, shared.MovementDirectionOut, l.Principal, "desembolso de préstamo", disbursedAt)
		if err != nil {
			return err
		}
		return cashboxRepo.Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan approved and disbursed",
		"loan_id", l.ID,
		"principal", l.Principal,
		"monthly_payment", l.MonthlyPayment,
		"term_months", l.TermMonths,
	)
	return l, nil
}

// RejectLoan manually rejects a pending loan
func (s *LoanServiceImpl) RejectLoan(ctx context.Context, loanID uuid.UUID, reason string) (*loan.Loan, error) {
	l, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if err := l.Reject(reason); err != nil {
		return nil, err
	}

	if err := s.loanRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Loan rejected", "loan_id", l.ID, "reason", reason)
	return l, nil
}

// RefinanceLoan amortizes the outstanding principal over a new term as the
// next schedule version. The previous installments remain as history.
func (s *LoanServiceImpl) RefinanceLoan(ctx context.Context, loanID uuid.UUID, termMonths int, effectiveAt time.Time) (*loan.Loan, error) {
	var l *loan.Loan
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		loanRepo := s.loanRepo.WithTx(tx)

		var err error
		l, err = loanRepo.LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		outstanding, err := loanRepo.OutstandingPrincipal(ctx, loanID)
		if err != nil {
			return err
		}

		am, err := finance.Amortize(outstanding, l.InterestRate, termMonths)
		if err != nil {
			return err
		}

		dueDate := effectiveAt.AddDate(0, termMonths, 0)
		if err := l.Refinance(outstanding, am.MonthlyPayment, am.TotalInterest, am.TotalPayable, termMonths, dueDate); err != nil {
			return err
		}
		if err := loanRepo.Update(ctx, l); err != nil {
			return err
		}

		return loanRepo.CreateInstallments(ctx, buildInstallments(l, am, effectiveAt))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan refinanced",
		"loan_id", l.ID,
		"outstanding", l.Principal,
		"schedule_version", l.ScheduleVersion,
		"term_months", termMonths,
	)
	return l, nil
}

// GetLoan retrieves a loan with its current schedule version
func (s *LoanServiceImpl) GetLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, []*loan.Installment, error) {
	l, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}

	installments, err := s.loanRepo.GetInstallments(ctx, loanID, l.ScheduleVersion)
	if err != nil {
		return nil, nil, err
	}

	return l, installments, nil
}

// RegisterPayment settles the earliest unpaid installment at its scheduled
// amounts, records the inflow and marks the loan Paid when the outstanding
// principal reaches zero
func (s *LoanServiceImpl) RegisterPayment(ctx context.Context, loanID uuid.UUID, paidAt time.Time) (*loan.Loan, *loan.Installment, error) {
	var (
		l    *loan.Loan
		inst *loan.Installment
	)
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		loanRepo := s.loanRepo.WithTx(tx)
		cashboxRepo := s.cashboxRepo.WithTx(tx)

		var err error
		l, err = loanRepo.LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if !l.Status.IsActive() {
			return loan.ErrNotActive
		}

		inst, err = loanRepo.EarliestUnpaidInstallment(ctx, loanID)
		if err != nil {
			return err
		}

		if err := inst.Pay(paidAt); err != nil {
			return err
		}
		if err := loanRepo.UpdateInstallment(ctx, inst); err != nil {
			return err
		}

		movement, err := cashbox.NewMovement(l.GroupID, shared.MovementDirectionIn, inst.ScheduledPayment, "pago de cuota", paidAt)
		if err != nil {
			return err
		}
		if err := cashboxRepo.Create(ctx, movement); err != nil {
			return err
		}

		outstanding, err := loanRepo.OutstandingPrincipal(ctx, loanID)
		if err != nil {
			return err
		}
		if outstanding.Sign() <= 0 {
			if err := l.MarkPaid(); err != nil {
				return err
			}
			return loanRepo.Update(ctx, l)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Installment payment registered",
		"loan_id", l.ID,
		"installment", inst.Number,
		"amount", inst.ScheduledPayment,
		"loan_status", string(l.Status),
	)
	return l, inst, nil
}

// buildInstallments expands an amortization schedule into installment rows
// for the loan's current schedule version. Due dates fall monthly after the
// start date.
func buildInstallments(l *loan.Loan, am *finance.Amortization, start time.Time) []*loan.Installment {
	installments := make([]*loan.Installment, 0, len(am.Schedule))
	for _, line := range am.Schedule {
		installments = append(installments, &loan.Installment{
			ID:                 uuid.New(),
			LoanID:             l.ID,
			ScheduleVersion:    l.ScheduleVersion,
			Number:             line.Number,
			DueDate:            start.AddDate(0, line.Number, 0),
			ScheduledPayment:   line.Payment,
			ScheduledPrincipal: line.Principal,
			ScheduledInterest:  line.Interest,
			RemainingBalance:   line.Balance,
			PaidPrincipal:      decimal.Zero,
			PaidInterest:       decimal.Zero,
		})
	}
	return installments
}
