package member

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyName       = errors.New("member name cannot be empty")
	ErrEmptyDocumentID = errors.New("document ID cannot be empty")
	ErrAlreadyInactive = errors.New("member is already inactive")
)

// Member represents a savings group participant
type Member struct {
	ID         uuid.UUID `json:"id"`
	GroupID    uuid.UUID `json:"group_id"`
	Name       string    `json:"name"`
	DocumentID string    `json:"document_id"`
	Phone      string    `json:"phone,omitempty"`
	Active     bool      `json:"active"`
	JoinedAt   time.Time `json:"joined_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewMember creates a new active member of a group
func NewMember(groupID uuid.UUID, name, documentID, phone string) (*Member, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if documentID == "" {
		return nil, ErrEmptyDocumentID
	}

	now := time.Now()
	return &Member{
		ID:         uuid.New(),
		GroupID:    groupID,
		Name:       name,
		DocumentID: documentID,
		Phone:      phone,
		Active:     true,
		JoinedAt:   now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Deactivate soft-deletes the member. Members with financial history are
// never removed, only deactivated.
func (m *Member) Deactivate() error {
	if !m.Active {
		return ErrAlreadyInactive
	}
	m.Active = false
	m.UpdatedAt = time.Now()
	return nil
}
