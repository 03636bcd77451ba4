package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMemberRequest represents a request to enroll a group member
type CreateMemberRequest struct {
	GroupID    string `json:"group_id" binding:"required,uuid"`
	Name       string `json:"name" binding:"required"`
	DocumentID string `json:"document_id" binding:"required"`
	Phone      string `json:"phone,omitempty"`
}

// MemberResponse represents a member in API responses
type MemberResponse struct {
	ID         string `json:"id"`
	GroupID    string `json:"group_id"`
	Name       string `json:"name"`
	DocumentID string `json:"document_id"`
	Phone      string `json:"phone,omitempty"`
	Active     bool   `json:"active"`
	JoinedAt   string `json:"joined_at"`
}

// CreateSavingsEntryRequest represents a savings contribution at a session
type CreateSavingsEntryRequest struct {
	MemberID     string          `json:"member_id" binding:"required,uuid"`
	SessionID    string          `json:"session_id" binding:"required,uuid"`
	Contribution decimal.Decimal `json:"contribution" binding:"required"`
	OtherIncome  decimal.Decimal `json:"other_income"`
}

// SavingsEntryResponse represents a savings ledger row in API responses
type SavingsEntryResponse struct {
	ID               string `json:"id"`
	MemberID         string `json:"member_id"`
	SessionID        string `json:"session_id"`
	PriorBalance     string `json:"prior_balance"`
	Contribution     string `json:"contribution"`
	OtherIncome      string `json:"other_income"`
	ResultingBalance string `json:"resulting_balance"`
	RecordedAt       string `json:"recorded_at"`
}

// CreateLoanRequest represents a loan request subject to capacity validation
type CreateLoanRequest struct {
	MemberID   string          `json:"member_id" binding:"required,uuid"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	TermMonths int             `json:"term_months" binding:"required,min=1"`
}

// ApproveLoanRequest carries the disbursement date for a loan approval
type ApproveLoanRequest struct {
	DisbursedAt *time.Time `json:"disbursed_at,omitempty"`
}

// RejectLoanRequest carries the manual rejection reason
type RejectLoanRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RefinanceLoanRequest restarts amortization over the outstanding balance
type RefinanceLoanRequest struct {
	TermMonths int `json:"term_months" binding:"required,min=1"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID              string `json:"id"`
	MemberID        string `json:"member_id"`
	GroupID         string `json:"group_id"`
	Principal       string `json:"principal"`
	InterestRate    string `json:"interest_rate"`
	TermMonths      int    `json:"term_months"`
	MonthlyPayment  string `json:"monthly_payment,omitempty"`
	TotalInterest   string `json:"total_interest,omitempty"`
	TotalPayable    string `json:"total_payable,omitempty"`
	Status          string `json:"status"`
	ScheduleVersion int    `json:"schedule_version"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	RequestedAt     string `json:"requested_at"`
	DisbursedAt     string `json:"disbursed_at,omitempty"`
	DueDate         string `json:"due_date,omitempty"`
}

// LoanRejectionResponse is the structured outcome of a failed capacity check
type LoanRejectionResponse struct {
	Loan   LoanResponse `json:"loan"`
	Reason string       `json:"reason"`
}

// InstallmentResponse represents one scheduled payment in API responses
type InstallmentResponse struct {
	Number             int    `json:"number"`
	DueDate            string `json:"due_date"`
	ScheduledPayment   string `json:"scheduled_payment"`
	ScheduledPrincipal string `json:"scheduled_principal"`
	ScheduledInterest  string `json:"scheduled_interest"`
	RemainingBalance   string `json:"remaining_balance"`
	PaidAt             string `json:"paid_at,omitempty"`
}

// LoanDetailResponse is a loan together with its current schedule
type LoanDetailResponse struct {
	Loan     LoanResponse          `json:"loan"`
	Schedule []InstallmentResponse `json:"schedule"`
}

// RegisterPaymentRequest registers a payment against the next unpaid installment
type RegisterPaymentRequest struct {
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

// CreateFineRequest assesses an attendance fine against a member
type CreateFineRequest struct {
	MemberID  string     `json:"member_id" binding:"required,uuid"`
	SessionID string     `json:"session_id" binding:"required,uuid"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
}

// RegisterFinePaymentRequest applies a payment toward a fine
type RegisterFinePaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	PaidAt *time.Time      `json:"paid_at,omitempty"`
}

// FineResponse represents a fine in API responses
type FineResponse struct {
	ID         string  `json:"id"`
	MemberID   string  `json:"member_id"`
	SessionID  string  `json:"session_id"`
	LoanID     *string `json:"loan_id,omitempty"`
	AmountDue  string  `json:"amount_due"`
	AmountPaid string  `json:"amount_paid"`
	Reason     string  `json:"reason"`
	IssuedAt   string  `json:"issued_at"`
	DueDate    string  `json:"due_date"`
	PaidAt     *string `json:"paid_at,omitempty"`
}

// CreateMovementRequest records a cash-box inflow or outflow
type CreateMovementRequest struct {
	GroupID     string          `json:"group_id" binding:"required,uuid"`
	Direction   string          `json:"direction" binding:"required,oneof=IN OUT"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
	OccurredAt  *time.Time      `json:"occurred_at,omitempty"`
}

// MovementResponse represents a cash-box movement in API responses
type MovementResponse struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	Direction   string `json:"direction"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	OccurredAt  string `json:"occurred_at"`
}

// CashboxResponse is the group's movement history with its running balance
type CashboxResponse struct {
	Balance   string             `json:"balance"`
	Movements []MovementResponse `json:"movements"`
}

// CreateGroupRequest represents a request to register a savings group
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CycleNumber int    `json:"cycle_number"`
	CreatedAt   string `json:"created_at"`
}

// UpsertRulesRequest configures the group's lending policy
type UpsertRulesRequest struct {
	FineAmount        decimal.Decimal `json:"fine_amount"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	MaxLoanAmount     decimal.Decimal `json:"max_loan_amount" binding:"required"`
	SingleLoanAtATime bool            `json:"single_loan_at_a_time"`
	CycleStart        time.Time       `json:"cycle_start" binding:"required"`
	CycleEnd          time.Time       `json:"cycle_end" binding:"required"`
}

// RulesResponse represents group rules in API responses
type RulesResponse struct {
	GroupID           string `json:"group_id"`
	FineAmount        string `json:"fine_amount"`
	InterestRate      string `json:"interest_rate"`
	MaxLoanAmount     string `json:"max_loan_amount"`
	SingleLoanAtATime bool   `json:"single_loan_at_a_time"`
	CycleStart        string `json:"cycle_start"`
	CycleEnd          string `json:"cycle_end"`
}

// ScanRequestResponse acknowledges a published delinquency scan request
type ScanRequestResponse struct {
	ScanID      string `json:"scan_id"`
	GroupID     string `json:"group_id"`
	AsOf        string `json:"as_of"`
	RequestedAt string `json:"requested_at"`
}

// ClosureDetailResponse is one member's payout line at cycle close
type ClosureDetailResponse struct {
	MemberID        string `json:"member_id"`
	MemberName      string `json:"member_name"`
	Savings         string `json:"savings"`
	ProfitShare     string `json:"profit_share"`
	TotalWithdrawal string `json:"total_withdrawal"`
}

// ClosureResponse represents a cycle closure in API responses
type ClosureResponse struct {
	ID                string                  `json:"id"`
	GroupID           string                  `json:"group_id"`
	CycleNumber       int                     `json:"cycle_number"`
	CycleStart        string                  `json:"cycle_start"`
	CycleEnd          string                  `json:"cycle_end"`
	TotalSavings      string                  `json:"total_savings"`
	InterestCollected string                  `json:"interest_collected"`
	FinesCollected    string                  `json:"fines_collected"`
	OperatingExpenses string                  `json:"operating_expenses"`
	NetProfit         string                  `json:"net_profit"`
	Details           []ClosureDetailResponse `json:"details"`
	ClosedAt          string                  `json:"closed_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
