package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/cashbox"
	"github.com/savings-group-ledger/internal/domain/cycle"
	"github.com/savings-group-ledger/internal/domain/fine"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/loan"
	"github.com/savings-group-ledger/internal/domain/member"
	"github.com/savings-group-ledger/internal/domain/savings"
	"github.com/savings-group-ledger/internal/domain/shared"
	"github.com/savings-group-ledger/internal/finance"
)

// CycleServiceImpl implements the CycleService interface
type CycleServiceImpl struct {
	txManager   TxManager
	groupRepo   group.Repository
	memberRepo  member.Repository
	savingsRepo savings.Repository
	loanRepo    loan.Repository
	fineRepo    fine.Repository
	cashboxRepo cashbox.Repository
	closureRepo cycle.Repository
	logger      *slog.Logger
}

// NewCycleService creates a new cycle service
func NewCycleService(
	logger *slog.Logger,
	txManager TxManager,
	groupRepo group.Repository,
	memberRepo member.Repository,
	savingsRepo savings.Repository,
	loanRepo loan.Repository,
	fineRepo fine.Repository,
	cashboxRepo cashbox.Repository,
	closureRepo cycle.Repository,
) CycleService {
	return &CycleServiceImpl{
		txManager:   txManager,
		groupRepo:   groupRepo,
		memberRepo:  memberRepo,
		savingsRepo: savingsRepo,
		loanRepo:    loanRepo,
		fineRepo:    fineRepo,
		cashboxRepo: cashboxRepo,
		closureRepo: closureRepo,
		logger:      logger,
	}
}

// CloseCycle runs the two-phase close for a group: aggregate the cycle
// totals over the rules window, distribute net profit proportionally to
// savings, archive the immutable closure record, pay out and reset the
// savings ledger, and advance the group to the next cycle window. All
// relational writes share one transaction; the closure archive write happens
// inside the same boundary so a duplicate-cycle conflict rolls everything
// back.
func (s *CycleServiceImpl) CloseCycle(ctx context.Context, groupID uuid.UUID, correlationID string) (*cycle.Closure, error) {
	g, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	rules, err := s.groupRepo.GetRules(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var closure *cycle.Closure
	err = s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		groupRepo := s.groupRepo.WithTx(tx)
		memberRepo := s.memberRepo.WithTx(tx)
		savingsRepo := s.savingsRepo.WithTx(tx)
		loanRepo := s.loanRepo.WithTx(tx)
		fineRepo := s.fineRepo.WithTx(tx)
		cashboxRepo := s.cashboxRepo.WithTx(tx)

		open, err := loanRepo.ListByGroupAndStatus(ctx, groupID, shared.ActiveLoanStatuses)
		if err != nil {
			return err
		}
		if len(open) > 0 {
			return cycle.ErrOpenLoans{GroupID: groupID, OpenLoans: len(open)}
		}

		members, err := memberRepo.ListByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		names := make(map[uuid.UUID]string, len(members))
		for _, m := range members {
			names[m.ID] = m.Name
		}

		balances, err := savingsRepo.LatestBalancesByGroup(ctx, groupID)
		if err != nil {
			return err
		}

		totalSavings := decimal.Zero
		memberSavings := make([]finance.MemberSavings, 0, len(balances))
		for _, b := range balances {
			totalSavings = totalSavings.Add(b.Balance)
			memberSavings = append(memberSavings, finance.MemberSavings{
				MemberID: b.MemberID,
				Savings:  b.Balance,
			})
		}

		interest, err := loanRepo.SumInterestPaidByGroup(ctx, groupID, rules.CycleStart, rules.CycleEnd)
		if err != nil {
			return err
		}
		fines, err := fineRepo.SumPaidByGroup(ctx, groupID, rules.CycleStart, rules.CycleEnd)
		if err != nil {
			return err
		}
		expenses, err := cashboxRepo.SumByDirection(ctx, groupID, shared.MovementDirectionOut, rules.CycleStart, rules.CycleEnd)
		if err != nil {
			return err
		}

		totals := finance.ComputeCycleTotals(totalSavings, interest, fines, expenses)

		lines, err := finance.Distribute(memberSavings, totals.NetProfit)
		if err != nil {
			return err
		}

		now := time.Now()
		details := make([]cycle.Detail, 0, len(lines))
		totalPayout := decimal.Zero
		for _, line := range lines {
			details = append(details, cycle.Detail{
				MemberID:        line.MemberID,
				MemberName:      names[line.MemberID],
				Savings:         line.Savings,
				ProfitShare:     line.ProfitShare,
				TotalWithdrawal: line.TotalWithdrawal,
			})
			totalPayout = totalPayout.Add(line.TotalWithdrawal)
		}

		closure = &cycle.Closure{
			ID:                uuid.New(),
			GroupID:           groupID,
			CycleNumber:       g.CycleNumber,
			CycleStart:        rules.CycleStart,
			CycleEnd:          rules.CycleEnd,
			TotalSavings:      totals.TotalSavings,
			InterestCollected: totals.InterestCollected,
			FinesCollected:    totals.FinesCollected,
			OperatingExpenses: totals.OperatingExpenses,
			NetProfit:         totals.NetProfit,
			Details:           details,
			CorrelationID:     correlationID,
			ClosedAt:          now,
		}
		if err := s.closureRepo.Create(ctx, closure); err != nil {
			return err
		}

		session := group.NewSyntheticSession(groupID, now)
		if err := groupRepo.CreateSession(ctx, session); err != nil {
			return err
		}

		if totalPayout.Sign() > 0 {
			payout, err := cashbox.NewMovement(groupID, shared.MovementDirectionOut, totalPayout, "retiro de cierre de ciclo", now)
			if err != nil {
				return err
			}
			payout.SessionID = &session.ID
			if err := cashboxRepo.Create(ctx, payout); err != nil {
				return err
			}
		}

		for _, m := range members {
			if err := savingsRepo.Create(ctx, savings.NewResetEntry(m.ID, session.ID)); err != nil {
				return err
			}
		}

		windowLength := rules.CycleEnd.Sub(rules.CycleStart)
		rules.CycleStart = rules.CycleEnd
		rules.CycleEnd = rules.CycleEnd.Add(windowLength)
		rules.UpdatedAt = now
		if err := groupRepo.UpsertRules(ctx, rules); err != nil {
			return err
		}

		g.CycleNumber++
		g.UpdatedAt = now
		return groupRepo.Update(ctx, g)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cycle closed",
		"group_id", groupID,
		"cycle_number", closure.CycleNumber,
		"total_savings", closure.TotalSavings,
		"net_profit", closure.NetProfit,
		"members", len(closure.Details),
	)
	return closure, nil
}

// ListClosures returns the group's closure history, newest cycle first
func (s *CycleServiceImpl) ListClosures(ctx context.Context, groupID uuid.UUID, page, perPage int) ([]*cycle.Closure, error) {
	offset := (page - 1) * perPage
	return s.closureRepo.ListByGroup(ctx, groupID, perPage, offset)
}
