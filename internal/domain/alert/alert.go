package alert

import (
	"time"

	"github.com/google/uuid"

	"github.com/savings-group-ledger/internal/domain/shared"
)

// Alert is an immutable delinquency alert record. Alerts are written to the
// archive store by the outbox poller after the scan transaction commits.
type Alert struct {
	ID            uuid.UUID            `json:"id" bson:"id"`
	ScanID        uuid.UUID            `json:"scan_id" bson:"scan_id"`
	GroupID       uuid.UUID            `json:"group_id" bson:"group_id"`
	LoanID        uuid.UUID            `json:"loan_id" bson:"loan_id"`
	MemberID      uuid.UUID            `json:"member_id" bson:"member_id"`
	FineID        *uuid.UUID           `json:"fine_id,omitempty" bson:"fine_id,omitempty"`
	Severity      shared.AlertSeverity `json:"severity" bson:"severity"`
	DaysOverdue   int                  `json:"days_overdue" bson:"days_overdue"`
	Message       string               `json:"message" bson:"message"`
	CorrelationID string               `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
}
