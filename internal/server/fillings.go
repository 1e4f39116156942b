package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	fillingdomain "github.com/smallbiznis/aquaflow/internal/filling/domain"
	"github.com/smallbiznis/aquaflow/pkg/db/pagination"
)

type externalSaleRequest struct {
	Price int64      `json:"price"`
	Notes string     `json:"notes"`
	Date  *time.Time `json:"date"`
}

type listFillingsQuery struct {
	pagination.Pagination
	FillingType string `form:"filling_type"`
	Search      string `form:"search"`
}

func (s *Server) ListFillings(c *gin.Context) {
	var query listFillingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, ok := idFilter(c, "customer_id")
	if !ok {
		return
	}
	driverID, ok := idFilter(c, "driver_id")
	if !ok {
		return
	}
	isDebt, err := parseOptionalBool(c.Query("is_debt"))
	if err != nil {
		AbortWithError(c, newValidationError("is_debt", "invalid_is_debt", "invalid is_debt"))
		return
	}
	createdFrom, createdTo, ok := timeRange(c, "created_from", "created_to")
	if !ok {
		return
	}

	resp, err := s.fillingSvc.List(c.Request.Context(), fillingdomain.ListFillingRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		FillingType: strings.TrimSpace(query.FillingType),
		CustomerID:  customerID,
		DriverID:    driverID,
		IsDebt:      isDebt,
		Search:      strings.TrimSpace(query.Search),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetFillingByID(c *gin.Context) {
	filling, err := s.fillingSvc.Get(c.Request.Context(), pathID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": filling})
}

func (s *Server) RecordExternalSale(c *gin.Context) {
	var req externalSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filling, err := s.fillingSvc.RecordExternalSale(c.Request.Context(), fillingdomain.ExternalSaleRequest{
		Price: req.Price,
		Notes: req.Notes,
		Date:  req.Date,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionFillingExternal, "filling", filling.ID.String(), map[string]any{"amount": filling.Amount})

	c.JSON(http.StatusCreated, gin.H{"data": filling})
}

func (s *Server) DeleteFilling(c *gin.Context) {
	id := pathID(c)
	if err := s.fillingSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionFillingDelete, "filling", id.String(), nil)

	c.Status(http.StatusNoContent)
}
