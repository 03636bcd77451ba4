package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/savings-group-ledger/internal/domain/cashbox"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/shared"
)

// GroupServiceImpl implements the GroupService interface
type GroupServiceImpl struct {
	groupRepo   group.Repository
	cashboxRepo cashbox.Repository
	logger      *slog.Logger
}

// NewGroupService creates a new group service
func NewGroupService(logger *slog.Logger, groupRepo group.Repository, cashboxRepo cashbox.Repository) GroupService {
	return &GroupServiceImpl{
		groupRepo:   groupRepo,
		cashboxRepo: cashboxRepo,
		logger:      logger,
	}
}

// CreateGroup registers a savings group starting at cycle 1
func (s *GroupServiceImpl) CreateGroup(ctx context.Context, name string) (*group.Group, error) {
	if name == "" {
		return nil, group.ErrEmptyName
	}

	now := time.Now()
	g := &group.Group{
		ID:          uuid.New(),
		Name:        name,
		CycleNumber: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.groupRepo.Create(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info("Group created", "group_id", g.ID, "name", g.Name)
	return g, nil
}

// GetGroupByID retrieves a group by ID
func (s *GroupServiceImpl) GetGroupByID(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	return s.groupRepo.GetByID(ctx, id)
}

// UpsertRules validates and stores the group's lending policy. Existing
// loans keep the interest rate snapshotted at request time.
func (s *GroupServiceImpl) UpsertRules(ctx context.Context, rules *group.Rules) error {
	if err := rules.Validate(); err != nil {
		return err
	}

	if _, err := s.groupRepo.GetByID(ctx, rules.GroupID); err != nil {
		return err
	}

	rules.UpdatedAt = time.Now()
	if err := s.groupRepo.UpsertRules(ctx, rules); err != nil {
		return err
	}

	s.logger.Info("Group rules updated",
		"group_id", rules.GroupID,
		"interest_rate", rules.InterestRate,
		"max_loan_amount", rules.MaxLoanAmount,
		"single_loan_at_a_time", rules.SingleLoanAtATime,
	)
	return nil
}

// GetRules retrieves the group's lending policy
func (s *GroupServiceImpl) GetRules(ctx context.Context, groupID uuid.UUID) (*group.Rules, error) {
	return s.groupRepo.GetRules(ctx, groupID)
}

// RecordMovement registers a cash-box inflow or outflow
func (s *GroupServiceImpl) RecordMovement(ctx context.Context, groupID uuid.UUID, direction shared.MovementDirection, amount decimal.Decimal, description string, occurredAt time.Time) (*cashbox.Movement, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	movement, err := cashbox.NewMovement(groupID, direction, amount, description, occurredAt)
	if err != nil {
		return nil, err
	}

	if direction == shared.MovementDirectionOut {
		balance, err := s.cashboxRepo.Balance(ctx, groupID)
		if err != nil {
			return nil, err
		}
		if balance.LessThan(amount) {
			return nil, cashbox.ErrInsufficientFunds
		}
	}

	if err := s.cashboxRepo.Create(ctx, movement); err != nil {
		return nil, err
	}

	s.logger.Info("Cash movement recorded",
		"group_id", groupID,
		"direction", string(direction),
		"amount", amount,
	)
	return movement, nil
}

// GetCashbox returns the group's balance and movement history
func (s *GroupServiceImpl) GetCashbox(ctx context.Context, groupID uuid.UUID, page, perPage int) (decimal.Decimal, []*cashbox.Movement, error) {
	balance, err := s.cashboxRepo.Balance(ctx, groupID)
	if err != nil {
		return decimal.Zero, nil, err
	}

	offset := (page - 1) * perPage
	movements, err := s.cashboxRepo.ListByGroup(ctx, groupID, perPage, offset)
	if err != nil {
		return decimal.Zero, nil, err
	}

	return balance, movements, nil
}
