package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/savings-group-ledger/internal/api_gateway/service"
	"github.com/savings-group-ledger/internal/domain/fine"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/member"
)

// FineHandler handles HTTP requests for fine assessment and collection
type FineHandler struct {
	fineService service.FineService
	logger      *slog.Logger
}

// NewFineHandler creates a new fine handler
func NewFineHandler(logger *slog.Logger, fineService service.FineService) *FineHandler {
	return &FineHandler{
		fineService: fineService,
		logger:      logger,
	}
}

// Create assesses an attendance fine at the group's configured amount
func (h *FineHandler) Create(c *gin.Context) {
	var req CreateFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	issuedAt := time.Now()
	if req.IssuedAt != nil {
		issuedAt = *req.IssuedAt
	}

	f, err := h.fineService.AssessAttendanceFine(c.Request.Context(), memberID, sessionID, issuedAt)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound{}) {
			RespondNotFound(c, "Member not found")
			return
		}
		if errors.Is(err, group.ErrRulesNotFound{}) {
			RespondConflict(c, "Group rules are not configured")
			return
		}
		if errors.Is(err, fine.ErrFinesDisabled) {
			RespondConflict(c, err.Error())
			return
		}
		h.logger.Error("Failed to assess fine", "member_id", memberID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapFineToResponse(f))
}

// RegisterPayment applies a payment toward a fine
func (h *FineHandler) RegisterPayment(c *gin.Context) {
	fineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid fine ID")
		return
	}

	var req RegisterFinePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	f, err := h.fineService.RegisterPayment(c.Request.Context(), fineID, req.Amount, paidAt)
	if err != nil {
		if errors.Is(err, fine.ErrFineNotFound{}) {
			RespondNotFound(c, "Fine not found")
			return
		}
		if errors.Is(err, fine.ErrNegativeAmount) {
			RespondBadRequest(c, err.Error())
			return
		}
		if errors.Is(err, fine.ErrAlreadyPaid) || errors.Is(err, fine.ErrOverpayment) {
			RespondConflict(c, err.Error())
			return
		}
		h.logger.Error("Failed to register fine payment", "fine_id", fineID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapFineToResponse(f))
}

// ListUnpaidByMember retrieves the member's outstanding fines
func (h *FineHandler) ListUnpaidByMember(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid member ID")
		return
	}

	fines, err := h.fineService.ListUnpaid(c.Request.Context(), memberID)
	if err != nil {
		h.logger.Error("Failed to list fines", "member_id", memberID, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]FineResponse, 0, len(fines))
	for _, f := range fines {
		responses = append(responses, mapFineToResponse(f))
	}
	RespondOK(c, responses)
}

func mapFineToResponse(f *fine.Fine) FineResponse {
	resp := FineResponse{
		ID:         f.ID.String(),
		MemberID:   f.MemberID.String(),
		SessionID:  f.SessionID.String(),
		AmountDue:  f.AmountDue.StringFixed(2),
		AmountPaid: f.AmountPaid.StringFixed(2),
		Reason:     f.Reason,
		IssuedAt:   f.IssuedAt.Format(time.RFC3339),
		DueDate:    f.DueDate.Format(time.RFC3339),
	}
	if f.LoanID != nil {
		loanID := f.LoanID.String()
		resp.LoanID = &loanID
	}
	if f.PaidAt != nil {
		paidAt := f.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	return resp
}
