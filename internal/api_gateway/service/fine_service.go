package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/config"
	"github.com/savings-group-ledger/internal/domain/cashbox"
	"github.com/savings-group-ledger/internal/domain/fine"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/member"
	"github.com/savings-group-ledger/internal/domain/shared"
)

// FineServiceImpl implements the FineService interface
type FineServiceImpl struct {
	txManager   TxManager
	fineRepo    fine.Repository
	memberRepo  member.Repository
	groupRepo   group.Repository
	cashboxRepo cashbox.Repository
	cfg         config.DelinquencyConfig
	logger      *slog.Logger
}

// NewFineService creates a new fine service
func NewFineService(
	logger *slog.Logger,
	txManager TxManager,
	fineRepo fine.Repository,
	memberRepo member.Repository,
	groupRepo group.Repository,
	cashboxRepo cashbox.Repository,
	cfg config.DelinquencyConfig,
) FineService {
	return &FineServiceImpl{
		txManager:   txManager,
		fineRepo:    fineRepo,
		memberRepo:  memberRepo,
		groupRepo:   groupRepo,
		cashboxRepo: cashboxRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// AssessAttendanceFine charges the group's configured fine amount for a
// missed session
func (s *FineServiceImpl) AssessAttendanceFine(ctx context.Context, memberID, sessionID uuid.UUID, issuedAt time.Time) (*fine.Fine, error) {
	m, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	rules, err := s.groupRepo.GetRules(ctx, m.GroupID)
	if err != nil {
		return nil, err
	}
	if rules.FineAmount.Sign() <= 0 {
		return nil, fine.ErrFinesDisabled
	}

	f, err := fine.NewAttendanceFine(memberID, sessionID, rules.FineAmount, issuedAt, s.cfg.FineDueDays)
	if err != nil {
		return nil, err
	}

	if err := s.fineRepo.Create(ctx, f); err != nil {
		return nil, err
	}

	s.logger.Info("Attendance fine assessed",
		"fine_id", f.ID,
		"member_id", memberID,
		"session_id", sessionID,
		"amount", f.AmountDue,
	)
	return f, nil
}

// RegisterPayment applies a payment toward the fine and records the cash
// inflow in the same transaction, so the cycle-close fine total and the
// cash-box balance cannot diverge
func (s *FineServiceImpl) RegisterPayment(ctx context.Context, fineID uuid.UUID, amount decimal.Decimal, paidAt time.Time) (*fine.Fine, error) {
	var f *fine.Fine
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		fineRepo := s.fineRepo.WithTx(tx)
		cashboxRepo := s.cashboxRepo.WithTx(tx)

		var err error
		f, err = fineRepo.GetByID(ctx, fineID)
		if err != nil {
			return err
		}

		m, err := s.memberRepo.GetByID(ctx, f.MemberID)
		if err != nil {
			return err
		}

		if err := f.Pay(amount, paidAt); err != nil {
			return err
		}
		if err := fineRepo.Update(ctx, f); err != nil {
			return err
		}

		movement, err := cashbox.NewMovement(m.GroupID, shared.MovementDirectionIn, amount, "pago de multa", paidAt)
		if err != nil {
			return err
		}
		movement.SessionID = &f.SessionID
		return cashboxRepo.Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Fine payment registered",
		"fine_id", f.ID,
		"member_id", f.MemberID,
		"amount", amount,
		"settled", f.PaidAt != nil,
	)
	return f, nil
}

// ListUnpaid returns the member's outstanding fines
func (s *FineServiceImpl) ListUnpaid(ctx context.Context, memberID uuid.UUID) ([]*fine.Fine, error) {
	return s.fineRepo.ListUnpaidByMember(ctx, memberID)
}
