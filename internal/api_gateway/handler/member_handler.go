package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/savings-group-ledger/internal/api_gateway/service"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/member"
	"github.com/savings-group-ledger/internal/domain/savings"
)

// MemberHandler handles HTTP requests for member enrollment and savings
type MemberHandler struct {
	memberService  service.MemberService
	savingsService service.SavingsService
	logger         *slog.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(logger *slog.Logger, memberService service.MemberService, savingsService service.SavingsService) *MemberHandler {
	return &MemberHandler{
		memberService:  memberService,
		savingsService: savingsService,
		logger:         logger,
	}
}

// Create handles member enrollment, checking for duplicate document IDs
func (h *MemberHandler) Create(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	m, err := h.memberService.CreateMember(c.Request.Context(), groupID, req.Name, req.DocumentID, req.Phone)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound{}) {
			RespondNotFound(c, "Group not found")
			return
		}
		var dupErr member.ErrDuplicateDocumentID
		if errors.As(err, &dupErr) {
			h.logger.Warn("Attempt to enroll member with duplicate document ID", "document_id", dupErr.DocumentID)
			RespondConflict(c, "Member with this document ID already exists")
			return
		}
		h.logger.Error("Failed to create member", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapMemberToResponse(m))
}

// GetByID retrieves a member by ID, returning 404 if not found
func (h *MemberHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid member ID")
		return
	}

	m, err := h.memberService.GetMemberByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound{}) {
			RespondNotFound(c, "Member not found")
			return
		}
		h.logger.Error("Failed to get member", "member_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapMemberToResponse(m))
}

// Deactivate soft-deletes a member, preserving financial history
func (h *MemberHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid member ID")
		return
	}

	if err := h.memberService.DeactivateMember(c.Request.Context(), id); err != nil {
		if errors.Is(err, member.ErrMemberNotFound{}) {
			RespondNotFound(c, "Member not found")
			return
		}
		if errors.Is(err, member.ErrAlreadyInactive) {
			RespondConflict(c, "Member is already inactive")
			return
		}
		h.logger.Error("Failed to deactivate member", "member_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// CreateSavingsEntry records a savings contribution at a session
func (h *MemberHandler) CreateSavingsEntry(c *gin.Context) {
	var req CreateSavingsEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		RespondBadRequest(c, "Invalid member ID")
		return
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		RespondBadRequest(c, "Invalid session ID")
		return
	}

	entry, err := h.savingsService.RecordEntry(c.Request.Context(), memberID, sessionID, req.Contribution, req.OtherIncome)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound{}) {
			RespondNotFound(c, "Member not found")
			return
		}
		if errors.Is(err, savings.ErrNegativeContribution) || errors.Is(err, savings.ErrNegativeOtherIncome) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to record savings entry", "member_id", memberID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapSavingsEntryToResponse(entry))
}

// ListSavings retrieves the member's savings history
func (h *MemberHandler) ListSavings(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid member ID")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, err := h.savingsService.ListEntries(c.Request.Context(), memberID, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list savings entries", "member_id", memberID, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]SavingsEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapSavingsEntryToResponse(entry))
	}
	RespondOK(c, responses)
}

func mapMemberToResponse(m *member.Member) MemberResponse {
	return MemberResponse{
		ID:         m.ID.String(),
		GroupID:    m.GroupID.String(),
		Name:       m.Name,
		DocumentID: m.DocumentID,
		Phone:      m.Phone,
		Active:     m.Active,
		JoinedAt:   m.JoinedAt.Format(time.RFC3339),
	}
}

func mapSavingsEntryToResponse(e *savings.Entry) SavingsEntryResponse {
	return SavingsEntryResponse{
		ID:               e.ID.String(),
		MemberID:         e.MemberID.String(),
		SessionID:        e.SessionID.String(),
		PriorBalance:     e.PriorBalance.StringFixed(2),
		Contribution:     e.Contribution.StringFixed(2),
		OtherIncome:      e.OtherIncome.StringFixed(2),
		ResultingBalance: e.ResultingBalance.StringFixed(2),
		RecordedAt:       e.RecordedAt.Format(time.RFC3339),
	}
}
