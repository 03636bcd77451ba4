package group

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ScanRun records when a delinquency scan last completed for a group. The
// processor uses it to skip loans already handled in the current period.
type ScanRun struct {
	GroupID         uuid.UUID `json:"group_id"`
	ScanID          uuid.UUID `json:"scan_id"`
	LastRunAt       time.Time `json:"last_run_at"`
	LoansAssessed   int       `json:"loans_assessed"`
	DelinquentFound int       `json:"delinquent_found"`
}

// Repository manages group, rules and session persistence
type Repository interface {
	Create(ctx context.Context, group *Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*Group, error)
	Update(ctx context.Context, group *Group) error

	GetRules(ctx context.Context, groupID uuid.UUID) (*Rules, error)
	UpsertRules(ctx context.Context, rules *Rules) error

	CreateSession(ctx context.Context, session *Session) error
	// LatestSession returns the most recent session for the group, or
	// ErrNoSessions
	LatestSession(ctx context.Context, groupID uuid.UUID) (*Session, error)

	GetLastScanRun(ctx context.Context, groupID uuid.UUID) (*ScanRun, error)
	RecordScanRun(ctx context.Context, run *ScanRun) error

	WithTx(tx pgx.Tx) Repository
}

// ErrGroupNotFound indicates missing group
type ErrGroupNotFound struct {
	GroupID uuid.UUID
}

func (e ErrGroupNotFound) Error() string {
	return "group not found: " + e.GroupID.String()
}

// Is implements the errors.Is interface for ErrGroupNotFound
func (e ErrGroupNotFound) Is(target error) bool {
	t, ok := target.(ErrGroupNotFound)
	if !ok {
		return false
	}
	if t.GroupID == uuid.Nil {
		return true
	}
	return e.GroupID == t.GroupID
}

// ErrRulesNotFound indicates the group has no configured rules
type ErrRulesNotFound struct {
	GroupID uuid.UUID
}

func (e ErrRulesNotFound) Error() string {
	return "rules not configured for group: " + e.GroupID.String()
}

// Is implements the errors.Is interface for ErrRulesNotFound
func (e ErrRulesNotFound) Is(target error) bool {
	t, ok := target.(ErrRulesNotFound)
	if !ok {
		return false
	}
	if t.GroupID == uuid.Nil {
		return true
	}
	return e.GroupID == t.GroupID
}

// ErrNoSessions indicates the group has never held a session
type ErrNoSessions struct {
	GroupID uuid.UUID
}

func (e ErrNoSessions) Error() string {
	return "no sessions for group: " + e.GroupID.String()
}

// Is implements the errors.Is interface for ErrNoSessions
func (e ErrNoSessions) Is(target error) bool {
	t, ok := target.(ErrNoSessions)
	if !ok {
		return false
	}
	if t.GroupID == uuid.Nil {
		return true
	}
	return e.GroupID == t.GroupID
}

// ErrNoScanRuns indicates no delinquency scan has completed for the group
type ErrNoScanRuns struct {
	GroupID uuid.UUID
}

func (e ErrNoScanRuns) Error() string {
	return "no scan runs recorded for group: " + e.GroupID.String()
}

// Is implements the errors.Is interface for ErrNoScanRuns
func (e ErrNoScanRuns) Is(target error) bool {
	t, ok := target.(ErrNoScanRuns)
	if !ok {
		return false
	}
	if t.GroupID == uuid.Nil {
		return true
	}
	return e.GroupID == t.GroupID
}
