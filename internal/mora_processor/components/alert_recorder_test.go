package components

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/savings-group-ledger/internal/domain/alert"
	"github.com/savings-group-ledger/internal/domain/outbox"
	"github.com/savings-group-ledger/internal/domain/shared"
)

func newAlert() *alert.Alert {
	return &alert.Alert{
		ID:          uuid.New(),
		ScanID:      uuid.New(),
		GroupID:     uuid.New(),
		LoanID:      uuid.New(),
		MemberID:    uuid.New(),
		Severity:    shared.AlertSeverityMedium,
		DaysOverdue: 7,
		Message:     "préstamo en mora: 7 días de atraso desde 2025-06-08",
		CreatedAt:   time.Now().UTC(),
	}
}

func TestAlertRecorder_RecordAlerts(t *testing.T) {
	t.Run("StagesOneMessagePerAlert", func(t *testing.T) {
		first := newAlert()
		second := newAlert()

		outboxRepo := new(MockOutboxRepository)
		outboxRepo.On("Create", mock.Anything, mock.AnythingOfType("*outbox.Message")).Return(nil)

		recorder := NewAlertRecorder(outboxRepo, newTestLogger())
		require.NoError(t, recorder.RecordAlerts(context.Background(), nil, []*alert.Alert{first, second}))

		outboxRepo.AssertNumberOfCalls(t, "Create", 2)

		msg := outboxRepo.Calls[0].Arguments.Get(1).(*outbox.Message)
		assert.Equal(t, first.ID, msg.AlertID)
		assert.Equal(t, first.GroupID, msg.GroupID)
		assert.Equal(t, shared.OutboxStatusPending, msg.Status)

		carried, err := msg.GetAlert()
		require.NoError(t, err)
		assert.Equal(t, first.LoanID, carried.LoanID)
		assert.Equal(t, first.Message, carried.Message)
	})

	t.Run("CreateErrorPropagates", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		outboxRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection lost"))

		recorder := NewAlertRecorder(outboxRepo, newTestLogger())
		err := recorder.RecordAlerts(context.Background(), nil, []*alert.Alert{newAlert()})

		assert.Error(t, err)
	})
}
