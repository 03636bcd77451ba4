package alert

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages alert archive persistence with pagination support
type Repository interface {
	Create(ctx context.Context, alert *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	GetByGroupID(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*Alert, error)
	CountByGroupID(ctx context.Context, groupID uuid.UUID) (int64, error)
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*Alert, error)
}

// ErrAlertNotFound indicates missing alert
type ErrAlertNotFound struct {
	AlertID uuid.UUID
}

func (e ErrAlertNotFound) Error() string {
	return "alert not found: " + e.AlertID.String()
}

// Is implements the errors.Is interface for ErrAlertNotFound
func (e ErrAlertNotFound) Is(target error) bool {
	t, ok := target.(ErrAlertNotFound)
	if !ok {
		return false
	}
	if t.AlertID == uuid.Nil {
		return true
	}
	return e.AlertID == t.AlertID
}

// ErrDuplicateAlert indicates alert uniqueness violation
type ErrDuplicateAlert struct {
	AlertID uuid.UUID
}

func (e ErrDuplicateAlert) Error() string {
	return "duplicate alert: " + e.AlertID.String()
}
