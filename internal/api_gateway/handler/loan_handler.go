package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/savings-group-ledger/internal/api_gateway/service"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/loan"
	"github.com/savings-group-ledger/internal/domain/member"
)

// LoanHandler handles HTTP requests for the loan lifecycle
type LoanHandler struct {
	loanService service.LoanService
	logger      *slog.Logger
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(logger *slog.Logger, loanService service.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		logger:      logger,
	}
}

// Create handles a loan request. A capacity rejection answers 422 with the
// failed policy; only infrastructure failures answer 500.
func (h *LoanHandler) Create(c *gin.Context) {
	var req CreateLoanRequest
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

	l, decision, err := h.loanService.RequestLoan(c.Request.Context(), memberID, req.Amount, req.TermMonths)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound{}) {
			RespondNotFound(c, "Member not found")
			return
		}
		if errors.Is(err, group.ErrRulesNotFound{}) {
			RespondConflict(c, "Group rules are not configured")
			return
		}
		if errors.Is(err, loan.ErrNonPositivePrincipal) || errors.Is(err, loan.ErrNonPositiveTerm) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create loan request", "member_id", memberID, "error", err)
		RespondInternalError(c)
		return
	}

	if !decision.Approved {
		RespondUnprocessable(c, LoanRejectionResponse{
			Loan:   mapLoanToResponse(l),
			Reason: decision.Reason,
		})
		return
	}

	RespondCreated(c, mapLoanToResponse(l))
}

// GetByID retrieves a loan together with its current schedule
func (h *LoanHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	l, installments, err := h.loanService.GetLoan(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, loan.ErrLoanNotFound{}) {
			RespondNotFound(c, "Loan not found")
			return
		}
		h.logger.Error("Failed to get loan", "loan_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	schedule := make([]InstallmentResponse, 0, len(installments))
	for _, inst := range installments {
		schedule = append(schedule, mapInstallmentToResponse(inst))
	}

	RespondOK(c, LoanDetailResponse{
		Loan:     mapLoanToResponse(l),
		Schedule: schedule,
	})
}

// Approve disburses a pending loan, creating its installment schedule
func (h *LoanHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	// Body is optional; an absent disbursement date defaults to now
	var req ApproveLoanRequest
	_ = c.ShouldBindJSON(&req)

	disbursedAt := time.Now()
	if req.DisbursedAt != nil {
		disbursedAt = *req.DisbursedAt
	}

	l, err := h.loanService.ApproveLoan(c.Request.Context(), id, disbursedAt)
	if err != nil {
		if errors.Is(err, loan.ErrLoanNotFound{}) {
			RespondNotFound(c, "Loan not found")
			return
		}
		if errors.Is(err, loan.ErrNotPending) {
			RespondConflict(c, "Loan is not pending a decision")
			return
		}
		h.logger.Error("Failed to approve loan", "loan_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// Reject manually rejects a pending loan
func (h *LoanHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	var req RejectLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	l, err := h.loanService.RejectLoan(c.Request.Context(), id, req.Reason)
	if err != nil {
		if errors.Is(err, loan.ErrLoanNotFound{}) {
			RespondNotFound(c, "Loan not found")
			return
		}
		if errors.Is(err, loan.ErrNotPending) {
			RespondConflict(c, "Loan is not pending a decision")
			return
		}
		h.logger.Error("Failed to reject loan", "loan_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// Refinance restarts amortization over the outstanding balance
func (h *LoanHandler) Refinance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	var req RefinanceLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	l, err := h.loanService.RefinanceLoan(c.Request.Context(), id, req.TermMonths, time.Now())
	if err != nil {
		if errors.Is(err, loan.ErrLoanNotFound{}) {
			RespondNotFound(c, "Loan not found")
			return
		}
		if errors.Is(err, loan.ErrNotActive) {
			RespondConflict(c, "Loan has no outstanding obligation")
			return
		}
		h.logger.Error("Failed to refinance loan", "loan_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// RegisterPayment settles the loan's earliest unpaid installment
func (h *LoanHandler) RegisterPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	// Body is optional; an absent payment date defaults to now
	var req RegisterPaymentRequest
	_ = c.ShouldBindJSON(&req)

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	l, inst, err := h.loanService.RegisterPayment(c.Request.Context(), id, paidAt)
	if err != nil {
		if errors.Is(err, loan.ErrLoanNotFound{}) {
			RespondNotFound(c, "Loan not found")
			return
		}
		if errors.Is(err, loan.ErrNotActive) {
			RespondConflict(c, "Loan has no outstanding obligation")
			return
		}
		if errors.Is(err, loan.ErrNoUnpaidInstallments{}) {
			RespondConflict(c, "Loan schedule is fully settled")
			return
		}
		h.logger.Error("Failed to register payment", "loan_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{
		"loan":        mapLoanToResponse(l),
		"installment": mapInstallmentToResponse(inst),
	})
}

func mapLoanToResponse(l *loan.Loan) LoanResponse {
	resp := LoanResponse{
		ID:              l.ID.String(),
		MemberID:        l.MemberID.String(),
		GroupID:         l.GroupID.String(),
		Principal:       l.Principal.StringFixed(2),
		InterestRate:    l.InterestRate.String(),
		TermMonths:      l.TermMonths,
		Status:          string(l.Status),
		ScheduleVersion: l.ScheduleVersion,
		RejectionReason: l.RejectionReason,
		RequestedAt:     l.RequestedAt.Format(time.RFC3339),
	}
	if !l.MonthlyPayment.IsZero() {
		resp.MonthlyPayment = l.MonthlyPayment.StringFixed(2)
		resp.TotalInterest = l.TotalInterest.StringFixed(2)
		resp.TotalPayable = l.TotalPayable.StringFixed(2)
	}
	if l.DisbursedAt != nil {
		resp.DisbursedAt = l.DisbursedAt.Format(time.RFC3339)
	}
	if l.DueDate != nil {
		resp.DueDate = l.DueDate.Format(time.RFC3339)
	}
	return resp
}

func mapInstallmentToResponse(inst *loan.Installment) InstallmentResponse {
	resp := InstallmentResponse{
		Number:             inst.Number,
		DueDate:            inst.DueDate.Format(time.RFC3339),
		ScheduledPayment:   inst.ScheduledPayment.StringFixed(2),
		ScheduledPrincipal: inst.ScheduledPrincipal.StringFixed(2),
		ScheduledInterest:  inst.ScheduledInterest.StringFixed(2),
		RemainingBalance:   inst.RemainingBalance.StringFixed(2),
	}
	if inst.PaidAt != nil {
		resp.PaidAt = inst.PaidAt.Format(time.RFC3339)
	}
	return resp
}
