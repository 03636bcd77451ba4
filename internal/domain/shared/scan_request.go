package shared

import (
	"time"

	"github.com/google/uuid"
)

// ScanRequest is the payload published to Kafka when a delinquency scan is
// requested for a group. The processor consumes it asynchronously.
type ScanRequest struct {
	ScanID        uuid.UUID  `json:"scan_id"`
	GroupID       uuid.UUID  `json:"group_id"`
	AsOf          time.Time  `json:"as_of"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	CorrelationID string     `json:"correlation_id"`
	RequestedAt   time.Time  `json:"requested_at"`
}
