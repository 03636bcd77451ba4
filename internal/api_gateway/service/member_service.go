package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/member"
)

// MemberServiceImpl implements the MemberService interface
type MemberServiceImpl struct {
	memberRepo member.Repository
	groupRepo  group.Repository
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo member.Repository, groupRepo group.Repository) MemberService {
	return &MemberServiceImpl{
		memberRepo: memberRepo,
		groupRepo:  groupRepo,
	}
}

// CreateMember enrolls a member, checking the group exists and the document
// ID is not already registered
func (s *MemberServiceImpl) CreateMember(ctx context.Context, groupID uuid.UUID, name, documentID, phone string) (*member.Member, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	existing, err := s.memberRepo.GetByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, member.ErrDuplicateDocumentID{DocumentID: documentID}
	}

	m, err := member.NewMember(groupID, name, documentID, phone)
	if err != nil {
		return nil, err
	}

	if err := s.memberRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

// GetMemberByID retrieves a member by ID, returns ErrMemberNotFound if missing
func (s *MemberServiceImpl) GetMemberByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	return s.memberRepo.GetByID(ctx, id)
}

// DeactivateMember soft-deletes the member
func (s *MemberServiceImpl) DeactivateMember(ctx context.Context, id uuid.UUID) error {
	m, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := m.Deactivate(); err != nil {
		return err
	}

	return s.memberRepo.Update(ctx, m)
}
