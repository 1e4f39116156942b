package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	tanktypedomain "github.com/smallbiznis/aquaflow/internal/tanktype/domain"
)

type createTankTypeRequest struct {
	Name           string `json:"name"`
	CapacityLiters int    `json:"capacity_liters"`
	Price          int64  `json:"price"`
	IsActive       *bool  `json:"is_active"`
}

type updateTankTypeRequest struct {
	Name           *string `json:"name"`
	CapacityLiters *int    `json:"capacity_liters"`
	Price          *int64  `json:"price"`
	IsActive       *bool   `json:"is_active"`
}

func (s *Server) ListTankTypes(c *gin.Context) {
	items, err := s.tankTypeSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ListActiveTankTypes(c *gin.Context) {
	items, err := s.tankTypeSvc.ListActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) TankTypeCustomerCounts(c *gin.Context) {
	counts, err := s.tankTypeSvc.CustomerCounts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": counts})
}

func (s *Server) CreateTankType(c *gin.Context) {
	var req createTankTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.tankTypeSvc.Create(c.Request.Context(), tanktypedomain.CreateTankTypeRequest{
		Name:           req.Name,
		CapacityLiters: req.CapacityLiters,
		Price:          req.Price,
		IsActive:       req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryCreate, "tank_type", item.ID.String(), map[string]any{
		"name":  item.Name,
		"price": item.Price,
	})

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateTankType(c *gin.Context) {
	var req updateTankTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.tankTypeSvc.Update(c.Request.Context(), pathID(c), tanktypedomain.UpdateTankTypeRequest{
		Name:           req.Name,
		CapacityLiters: req.CapacityLiters,
		Price:          req.Price,
		IsActive:       req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	metadata := map[string]any{}
	if req.Price != nil {
		metadata["price"] = *req.Price
	}
	s.audit(c, auditdomain.ActionRegistryUpdate, "tank_type", item.ID.String(), metadata)

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteTankType(c *gin.Context) {
	id := pathID(c)
	if err := s.tankTypeSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryDelete, "tank_type", id.String(), nil)

	c.Status(http.StatusNoContent)
}
