package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	areadomain "github.com/smallbiznis/aquaflow/internal/area/domain"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
)

type createAreaRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
	Notes    string `json:"notes"`
}

type updateAreaRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
	Notes    *string `json:"notes"`
}

func (s *Server) ListAreas(c *gin.Context) {
	areas, err := s.areaSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": areas})
}

func (s *Server) ListActiveAreas(c *gin.Context) {
	areas, err := s.areaSvc.ListActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": areas})
}

func (s *Server) AreaCustomerCounts(c *gin.Context) {
	counts, err := s.areaSvc.CustomerCounts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": counts})
}

func (s *Server) CreateArea(c *gin.Context) {
	var req createAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	area, err := s.areaSvc.Create(c.Request.Context(), areadomain.CreateAreaRequest{
		Name:     req.Name,
		IsActive: req.IsActive,
		Notes:    req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryCreate, "area", area.ID.String(), map[string]any{"name": area.Name})

	c.JSON(http.StatusCreated, gin.H{"data": area})
}

func (s *Server) UpdateArea(c *gin.Context) {
	var req updateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	area, err := s.areaSvc.Update(c.Request.Context(), pathID(c), areadomain.UpdateAreaRequest{
		Name:     req.Name,
		IsActive: req.IsActive,
		Notes:    req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryUpdate, "area", area.ID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": area})
}

func (s *Server) DeleteArea(c *gin.Context) {
	id := pathID(c)
	if err := s.areaSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryDelete, "area", id.String(), nil)

	c.Status(http.StatusNoContent)
}
