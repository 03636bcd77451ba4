package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/savings-group-ledger/internal/api_gateway/handler"
	"github.com/savings-group-ledger/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	memberHandler *handler.MemberHandler,
	loanHandler *handler.LoanHandler,
	fineHandler *handler.FineHandler,
	groupHandler *handler.GroupHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Member enrollment and savings history
		members := v1.Group("/members")
		{
			members.POST("", memberHandler.Create)
			members.GET("/:id", memberHandler.GetByID)
			members.DELETE("/:id", memberHandler.Deactivate)
			members.GET("/:id/savings", memberHandler.ListSavings)
			members.GET("/:id/fines", fineHandler.ListUnpaidByMember)
		}

		// Savings ledger entries
		v1.POST("/savings", memberHandler.CreateSavingsEntry)

		// Loan lifecycle
		loans := v1.Group("/loans")
		{
			loans.POST("", loanHandler.Create)
			loans.GET("/:id", loanHandler.GetByID)
			loans.POST("/:id/approve", loanHandler.Approve)
			loans.POST("/:id/reject", loanHandler.Reject)
			loans.POST("/:id/refinance", loanHandler.Refinance)
			loans.POST("/:id/payments", loanHandler.RegisterPayment)
		}

		// Fine assessment and collection
		fines := v1.Group("/fines")
		{
			fines.POST("", fineHandler.Create)
			fines.POST("/:id/payments", fineHandler.RegisterPayment)
		}

		// Cash-box movements
		v1.POST("/cashbox/movements", groupHandler.CreateMovement)

		// Group administration
		groups := v1.Group("/groups")
		{
			groups.POST("", groupHandler.Create)
			groups.GET("/:id", groupHandler.GetByID)
			groups.PUT("/:id/rules", groupHandler.UpsertRules)
			groups.GET("/:id/rules", groupHandler.GetRules)
			groups.GET("/:id/cashbox", groupHandler.GetCashbox)
			groups.POST("/:id/delinquency-scan", groupHandler.RequestScan)
			groups.POST("/:id/cycle-close", groupHandler.CloseCycle)
			groups.GET("/:id/cycle-closures", groupHandler.ListClosures)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
