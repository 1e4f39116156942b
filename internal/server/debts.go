package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	debtdomain "github.com/smallbiznis/aquaflow/internal/debt/domain"
	obstracing "github.com/smallbiznis/aquaflow/internal/observability/tracing"
)

type recordPaymentRequest struct {
	CustomerID optionalID `json:"customer_id"`
	Amount     int64      `json:"amount"`
}

func (s *Server) ListOutstandingDebts(c *gin.Context) {
	items, err := s.debtSvc.ListOutstanding(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// RecordPayment accepts 0 < amount <= outstanding balance.
func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, err := req.CustomerID.ID()
	if err != nil || customerID == nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer", "customer_id is required"))
		return
	}
	if req.Amount <= 0 {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "amount must be positive"))
		return
	}

	ctx := c.Request.Context()
	obstracing.Annotate(ctx, obstracing.KeyCustomerID.String(customerID.String()))
	outstanding, err := s.debtSvc.Outstanding(ctx, *customerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if req.Amount > outstanding {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "amount exceeds the outstanding balance"))
		return
	}

	result, err := s.debtSvc.ProcessPayment(ctx, debtdomain.PaymentRequest{
		CustomerID: *customerID,
		Amount:     req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionPaymentRecord, "customer", customerID.String(), map[string]any{
		"amount":      result.AmountPaid,
		"applied":     result.Applied,
		"allocations": len(result.Allocations),
		"outstanding": result.Outstanding,
	})

	c.JSON(http.StatusOK, gin.H{"data": result})
}
