package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/savings-group-ledger/internal/domain/alert"
	"github.com/savings-group-ledger/internal/domain/shared"
)

// Message stores an alert produced inside a scan transaction for reliable
// delivery to the archive store
type Message struct {
	ID            int64               `json:"id"`
	AlertID       uuid.UUID           `json:"alert_id"`
	GroupID       uuid.UUID           `json:"group_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(a *alert.Alert) (*Message, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}

	return &Message{
		AlertID:   a.ID,
		GroupID:   a.GroupID,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetAlert extracts the alert from the payload
func (m *Message) GetAlert() (*alert.Alert, error) {
	var a alert.Alert
	if err := json.Unmarshal(m.Payload, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
