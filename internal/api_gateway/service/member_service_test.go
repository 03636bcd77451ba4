package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/member"
)

func TestMemberService_CreateMember(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	g := &group.Group{ID: groupID, Name: "Grupo Esperanza", CycleNumber: 1}

	t.Run("CreatesActiveMember", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		groupRepo := new(MockGroupRepository)
		svc := NewMemberService(memberRepo, groupRepo)

		groupRepo.On("GetByID", ctx, groupID).Return(g, nil)
		memberRepo.On("GetByDocumentID", ctx, "DOC-001").Return(nil, nil)
		memberRepo.On("Create", ctx, mock.AnythingOfType("*member.Member")).Return(nil)

		m, err := svc.CreateMember(ctx, groupID, "María López", "DOC-001", "555-0100")

		require.NoError(t, err)
		assert.True(t, m.Active)
		assert.Equal(t, groupID, m.GroupID)
		memberRepo.AssertExpectations(t)
	})

	t.Run("DuplicateDocumentIDFails", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		groupRepo := new(MockGroupRepository)
		svc := NewMemberService(memberRepo, groupRepo)

		existing, _ := member.NewMember(groupID, "Otra Persona", "DOC-001", "")
		groupRepo.On("GetByID", ctx, groupID).Return(g, nil)
		memberRepo.On("GetByDocumentID", ctx, "DOC-001").Return(existing, nil)

		_, err := svc.CreateMember(ctx, groupID, "María López", "DOC-001", "")

		var dupErr member.ErrDuplicateDocumentID
		assert.ErrorAs(t, err, &dupErr)
		memberRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("UnknownGroupFails", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		groupRepo := new(MockGroupRepository)
		svc := NewMemberService(memberRepo, groupRepo)

		groupRepo.On("GetByID", ctx, groupID).Return(nil, group.ErrGroupNotFound{GroupID: groupID})

		_, err := svc.CreateMember(ctx, groupID, "María López", "DOC-001", "")
		assert.ErrorIs(t, err, group.ErrGroupNotFound{})
	})
}

func TestMemberService_DeactivateMember(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()

	t.Run("DeactivatesActiveMember", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		svc := NewMemberService(memberRepo, new(MockGroupRepository))

		m, _ := member.NewMember(groupID, "María López", "DOC-001", "")
		memberRepo.On("GetByID", ctx, m.ID).Return(m, nil)
		memberRepo.On("Update", ctx, m).Return(nil)

		require.NoError(t, svc.DeactivateMember(ctx, m.ID))
		assert.False(t, m.Active)
	})

	t.Run("AlreadyInactiveFails", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		svc := NewMemberService(memberRepo, new(MockGroupRepository))

		m, _ := member.NewMember(groupID, "María López", "DOC-001", "")
		require.NoError(t, m.Deactivate())
		memberRepo.On("GetByID", ctx, m.ID).Return(m, nil)

		err := svc.DeactivateMember(ctx, m.ID)
		assert.ErrorIs(t, err, member.ErrAlreadyInactive)
	})
}
