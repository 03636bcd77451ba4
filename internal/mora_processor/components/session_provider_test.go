package components

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/shared"
)

func TestSessionProvider_EnsureSession(t *testing.T) {
	request := &shared.ScanRequest{
		ScanID:  uuid.New(),
		GroupID: uuid.New(),
		AsOf:    time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC),
	}

	t.Run("ReusesSessionOnScanDate", func(t *testing.T) {
		existing := group.NewSession(request.GroupID, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
		groupRepo := new(MockGroupRepository)
		groupRepo.On("LatestSession", mock.Anything, request.GroupID).Return(existing, nil)

		provider := NewSessionProvider(groupRepo, newTestLogger())
		session, err := provider.EnsureSession(context.Background(), nil, request)

		require.NoError(t, err)
		assert.Equal(t, existing.ID, session.ID)
		groupRepo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})

	t.Run("OpensSyntheticSessionWhenLatestIsStale", func(t *testing.T) {
		stale := group.NewSession(request.GroupID, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC))
		groupRepo := new(MockGroupRepository)
		groupRepo.On("LatestSession", mock.Anything, request.GroupID).Return(stale, nil)
		groupRepo.On("CreateSession", mock.Anything, mock.AnythingOfType("*group.Session")).Return(nil)

		provider := NewSessionProvider(groupRepo, newTestLogger())
		session, err := provider.EnsureSession(context.Background(), nil, request)

		require.NoError(t, err)
		assert.NotEqual(t, stale.ID, session.ID)
		assert.True(t, session.Synthetic)
		assert.Equal(t, request.AsOf, session.Date)
	})

	t.Run("OpensSyntheticSessionWhenNoneExists", func(t *testing.T) {
		groupRepo := new(MockGroupRepository)
		groupRepo.On("LatestSession", mock.Anything, request.GroupID).Return(nil, group.ErrNoSessions{GroupID: request.GroupID})
		groupRepo.On("CreateSession", mock.Anything, mock.AnythingOfType("*group.Session")).Return(nil)

		provider := NewSessionProvider(groupRepo, newTestLogger())
		session, err := provider.EnsureSession(context.Background(), nil, request)

		require.NoError(t, err)
		assert.True(t, session.Synthetic)
		assert.Equal(t, request.GroupID, session.GroupID)
	})
}
