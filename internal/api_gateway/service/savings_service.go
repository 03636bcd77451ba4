package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/member"
	"github.com/savings-group-ledger/internal/domain/savings"
)

// SavingsServiceImpl implements the SavingsService interface
type SavingsServiceImpl struct {
	txManager   TxManager
	memberRepo  member.Repository
	savingsRepo savings.Repository
	logger      *slog.Logger
}

// NewSavingsService creates a new savings service
func NewSavingsService(logger *slog.Logger, txManager TxManager, memberRepo member.Repository, savingsRepo savings.Repository) SavingsService {
	return &SavingsServiceImpl{
		txManager:   txManager,
		memberRepo:  memberRepo,
		savingsRepo: savingsRepo,
		logger:      logger,
	}
}

// RecordEntry appends a savings entry on top of the member's latest balance.
// The read of the prior balance and the insert run in one transaction so two
// concurrent entries cannot both chain off the same prior balance.
func (s *SavingsServiceImpl) RecordEntry(ctx context.Context, memberID, sessionID uuid.UUID, contribution, otherIncome decimal.Decimal) (*savings.Entry, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		return nil, err
	}

	var entry *savings.Entry
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.savingsRepo.WithTx(tx)

		prior := decimal.Zero
		latest, err := repo.LatestByMember(ctx, memberID)
		if err != nil && !errors.Is(err, savings.ErrNoEntries{}) {
			return err
		}
		if latest != nil {
			prior = latest.ResultingBalance
		}

		entry, err = savings.NewEntry(memberID, sessionID, prior, contribution, otherIncome)
		if err != nil {
			return err
		}

		return repo.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Savings entry recorded",
		"member_id", memberID,
		"contribution", contribution,
		"resulting_balance", entry.ResultingBalance,
	)
	return entry, nil
}

// ListEntries returns the member's savings history, newest first
func (s *SavingsServiceImpl) ListEntries(ctx context.Context, memberID uuid.UUID, page, perPage int) ([]*savings.Entry, error) {
	offset := (page - 1) * perPage
	return s.savingsRepo.ListByMember(ctx, memberID, perPage, offset)
}
