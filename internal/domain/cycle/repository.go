package cycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Repository manages the append-only cycle closure archive
type Repository interface {
	Create(ctx context.Context, closure *Closure) error
	GetByGroupAndCycle(ctx context.Context, groupID uuid.UUID, cycleNumber int) (*Closure, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*Closure, error)
}

// ErrClosureNotFound indicates missing cycle closure
type ErrClosureNotFound struct {
	GroupID     uuid.UUID
	CycleNumber int
}

func (e ErrClosureNotFound) Error() string {
	return "cycle closure not found for group: " + e.GroupID.String()
}

// Is implements the errors.Is interface for ErrClosureNotFound
func (e ErrClosureNotFound) Is(target error) bool {
	t, ok := target.(ErrClosureNotFound)
	if !ok {
		return false
	}
	if t.GroupID == uuid.Nil {
		return true
	}
	return e.GroupID == t.GroupID && (t.CycleNumber == 0 || e.CycleNumber == t.CycleNumber)
}

// ErrDuplicateClosure indicates the cycle was already closed
type ErrDuplicateClosure struct {
	GroupID     uuid.UUID
	CycleNumber int
}

func (e ErrDuplicateClosure) Error() string {
	return "cycle already closed for group: " + e.GroupID.String()
}

// ErrOpenLoans indicates the cycle cannot close while loans still carry an
// outstanding balance
type ErrOpenLoans struct {
	GroupID   uuid.UUID
	OpenLoans int
}

func (e ErrOpenLoans) Error() string {
	return fmt.Sprintf("cycle cannot close for group %s: %d loans still carry an outstanding balance", e.GroupID, e.OpenLoans)
}

// Is implements the errors.Is interface for ErrOpenLoans
func (e ErrOpenLoans) Is(target error) bool {
	t, ok := target.(ErrOpenLoans)
	if !ok {
		return false
	}
	if t.GroupID == uuid.Nil {
		return true
	}
	return e.GroupID == t.GroupID
}
