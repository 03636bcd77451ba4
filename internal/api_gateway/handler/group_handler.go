package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/savings-group-ledger/internal/api_gateway/middleware"
	"github.com/savings-group-ledger/internal/api_gateway/service"
	"github.com/savings-group-ledger/internal/domain/cashbox"
	"github.com/savings-group-ledger/internal/domain/cycle"
	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/shared"
	"github.com/savings-group-ledger/internal/finance"
)

// GroupHandler handles HTTP requests for groups, rules, cash-box,
// delinquency scans and cycle close
type GroupHandler struct {
	groupService service.GroupService
	scanService  service.ScanService
	cycleService service.CycleService
	logger       *slog.Logger
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(logger *slog.Logger, groupService service.GroupService, scanService service.ScanService, cycleService service.CycleService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		scanService:  scanService,
		cycleService: cycleService,
		logger:       logger,
	}
}

// Create registers a savings group
func (h *GroupHandler) Create(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	g, err := h.groupService.CreateGroup(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, group.ErrEmptyName) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create group", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapGroupToResponse(g))
}

// GetByID retrieves a group by ID
func (h *GroupHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	g, err := h.groupService.GetGroupByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound{}) {
			RespondNotFound(c, "Group not found")
			return
		}
		h.logger.Error("Failed to get group", "group_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapGroupToResponse(g))
}

// UpsertRules configures the group's lending policy
func (h *GroupHandler) UpsertRules(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	var req UpsertRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rules := &group.Rules{
		GroupID:           groupID,
		FineAmount:        req.FineAmount,
		InterestRate:      req.InterestRate,
		MaxLoanAmount:     req.MaxLoanAmount,
		SingleLoanAtATime: req.SingleLoanAtATime,
		CycleStart:        req.CycleStart,
		CycleEnd:          req.CycleEnd,
	}

	if err := h.groupService.UpsertRules(c.Request.Context(), rules); err != nil {
		if errors.Is(err, group.ErrGroupNotFound{}) {
			RespondNotFound(c, "Group not found")
			return
		}
		if errors.Is(err, group.ErrNegativeFineAmount) ||
			errors.Is(err, group.ErrRateOutOfRange) ||
			errors.Is(err, group.ErrNonPositiveCeiling) ||
			errors.Is(err, group.ErrInvalidCycleWindow) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to upsert group rules", "group_id", groupID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapRulesToResponse(rules))
}

// GetRules retrieves the group's lending policy
func (h *GroupHandler) GetRules(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	rules, err := h.groupService.GetRules(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, group.ErrRulesNotFound{}) {
			RespondNotFound(c, "Group rules are not configured")
			return
		}
		h.logger.Error("Failed to get group rules", "group_id", groupID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapRulesToResponse(rules))
}

// CreateMovement records a cash-box inflow or outflow
func (h *GroupHandler) CreateMovement(c *gin.Context) {
	var req CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	movement, err := h.groupService.RecordMovement(c.Request.Context(), groupID, shared.MovementDirection(req.Direction), req.Amount, req.Description, occurredAt)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound{}) {
			RespondNotFound(c, "Group not found")
			return
		}
		if errors.Is(err, cashbox.ErrNonPositiveAmount) || errors.Is(err, cashbox.ErrInvalidDirection) {
			RespondBadRequest(c, err.Error())
			return
		}
		if errors.Is(err, cashbox.ErrInsufficientFunds) {
			RespondConflict(c, err.Error())
			return
		}
		h.logger.Error("Failed to record cash movement", "group_id", groupID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapMovementToResponse(movement))
}

// GetCashbox returns the group's cash balance and movement history
func (h *GroupHandler) GetCashbox(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	balance, movements, err := h.groupService.GetCashbox(c.Request.Context(), groupID, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to get cashbox", "group_id", groupID, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		responses = append(responses, mapMovementToResponse(m))
	}

	RespondOK(c, CashboxResponse{
		Balance:   balance.StringFixed(2),
		Movements: responses,
	})
}

// RequestScan publishes a delinquency scan request for the group. The scan
// runs asynchronously in the processor, so the answer is 202.
func (h *GroupHandler) RequestScan(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	request, err := h.scanService.RequestScan(c.Request.Context(), groupID, middleware.GetCorrelationID(c))
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound{}) {
			RespondNotFound(c, "Group not found")
			return
		}
		h.logger.Error("Failed to request delinquency scan", "group_id", groupID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, ScanRequestResponse{
		ScanID:      request.ScanID.String(),
		GroupID:     request.GroupID.String(),
		AsOf:        request.AsOf.Format(time.RFC3339),
		RequestedAt: request.RequestedAt.Format(time.RFC3339),
	})
}

// CloseCycle closes the group's current cycle, distributing profit and
// resetting the savings ledger
func (h *GroupHandler) CloseCycle(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	closure, err := h.cycleService.CloseCycle(c.Request.Context(), groupID, middleware.GetCorrelationID(c))
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound{}) {
			RespondNotFound(c, "Group not found")
			return
		}
		if errors.Is(err, group.ErrRulesNotFound{}) {
			RespondConflict(c, "Group rules are not configured")
			return
		}
		if errors.Is(err, finance.ErrUndistributableProfit) {
			RespondConflict(c, err.Error())
			return
		}
		if errors.Is(err, cycle.ErrOpenLoans{}) {
			RespondConflict(c, err.Error())
			return
		}
		var dupErr cycle.ErrDuplicateClosure
		if errors.As(err, &dupErr) {
			RespondConflict(c, "Cycle is already closed")
			return
		}
		h.logger.Error("Failed to close cycle", "group_id", groupID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapClosureToResponse(closure))
}

// ListClosures retrieves the group's cycle closure history
func (h *GroupHandler) ListClosures(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	closures, err := h.cycleService.ListClosures(c.Request.Context(), groupID, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list cycle closures", "group_id", groupID, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]ClosureResponse, 0, len(closures))
	for _, closure := range closures {
		responses = append(responses, mapClosureToResponse(closure))
	}
	RespondOK(c, responses)
}

func mapGroupToResponse(g *group.Group) GroupResponse {
	return GroupResponse{
		ID:          g.ID.String(),
		Name:        g.Name,
		CycleNumber: g.CycleNumber,
		CreatedAt:   g.CreatedAt.Format(time.RFC3339),
	}
}

func mapRulesToResponse(r *group.Rules) RulesResponse {
	return RulesResponse{
		GroupID:           r.GroupID.String(),
		FineAmount:        r.FineAmount.StringFixed(2),
		InterestRate:      r.InterestRate.String(),
		MaxLoanAmount:     r.MaxLoanAmount.StringFixed(2),
		SingleLoanAtATime: r.SingleLoanAtATime,
		CycleStart:        r.CycleStart.Format(time.RFC3339),
		CycleEnd:          r.CycleEnd.Format(time.RFC3339),
	}
}

func mapMovementToResponse(m *cashbox.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID.String(),
		GroupID:     m.GroupID.String(),
		Direction:   string(m.Direction),
		Amount:      m.Amount.StringFixed(2),
		Description: m.Description,
		OccurredAt:  m.OccurredAt.Format(time.RFC3339),
	}
}

func mapClosureToResponse(c *cycle.Closure) ClosureResponse {
	details := make([]ClosureDetailResponse, 0, len(c.Details))
	for _, d := range c.Details {
		details = append(details, ClosureDetailResponse{
			MemberID:        d.MemberID.String(),
			MemberName:      d.MemberName,
			Savings:         d.Savings.StringFixed(2),
			ProfitShare:     d.ProfitShare.StringFixed(2),
			TotalWithdrawal: d.TotalWithdrawal.StringFixed(2),
		})
	}

	return ClosureResponse{
		ID:                c.ID.String(),
		GroupID:           c.GroupID.String(),
		CycleNumber:       c.CycleNumber,
		CycleStart:        c.CycleStart.Format(time.RFC3339),
		CycleEnd:          c.CycleEnd.Format(time.RFC3339),
		TotalSavings:      c.TotalSavings.StringFixed(2),
		InterestCollected: c.InterestCollected.StringFixed(2),
		FinesCollected:    c.FinesCollected.StringFixed(2),
		OperatingExpenses: c.OperatingExpenses.StringFixed(2),
		NetProfit:         c.NetProfit.StringFixed(2),
		Details:           details,
		ClosedAt:          c.ClosedAt.Format(time.RFC3339),
	}
}
