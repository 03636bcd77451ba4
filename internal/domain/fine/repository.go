package fine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository manages fine persistence
type Repository interface {
	Create(ctx context.Context, fine *Fine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Fine, error)
	GetByAssessmentKey(ctx context.Context, key string) (*Fine, error)
	ListUnpaidByMember(ctx context.Context, memberID uuid.UUID) ([]*Fine, error)
	Update(ctx context.Context, fine *Fine) error

	// SumPaidByGroup totals fine payments dated within the window, for
	// cycle close
	SumPaidByGroup(ctx context.Context, groupID uuid.UUID, from, to time.Time) (decimal.Decimal, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrFineNotFound indicates missing fine
type ErrFineNotFound struct {
	FineID uuid.UUID
}

func (e ErrFineNotFound) Error() string {
	return "fine not found: " + e.FineID.String()
}

// Is implements the errors.Is interface for ErrFineNotFound
func (e ErrFineNotFound) Is(target error) bool {
	t, ok := target.(ErrFineNotFound)
	if !ok {
		return false
	}
	if t.FineID == uuid.Nil {
		return true
	}
	return e.FineID == t.FineID
}

// ErrDuplicateAssessment indicates a fine with the same assessment key
// already exists
type ErrDuplicateAssessment struct {
	AssessmentKey string
}

func (e ErrDuplicateAssessment) Error() string {
	return "fine already assessed for key: " + e.AssessmentKey
}

// Is implements the errors.Is interface for ErrDuplicateAssessment
func (e ErrDuplicateAssessment) Is(target error) bool {
	t, ok := target.(ErrDuplicateAssessment)
	if !ok {
		return false
	}
	if t.AssessmentKey == "" {
		return true
	}
	return e.AssessmentKey == t.AssessmentKey
}
