package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	archivedomain "github.com/smallbiznis/aquaflow/internal/archive/domain"
	"github.com/smallbiznis/aquaflow/pkg/db/pagination"
)

type listArchiveQuery struct {
	pagination.Pagination
	Source string `form:"source"`
	Search string `form:"search"`
}

func (s *Server) ListArchive(c *gin.Context) {
	var query listArchiveQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, ok := idFilter(c, "customer_id")
	if !ok {
		return
	}
	deletedFrom, deletedTo, ok := timeRange(c, "deleted_from", "deleted_to")
	if !ok {
		return
	}

	resp, err := s.archiveSvc.List(c.Request.Context(), archivedomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Source:      strings.TrimSpace(query.Source),
		CustomerID:  customerID,
		Search:      strings.TrimSpace(query.Search),
		DeletedFrom: deletedFrom,
		DeletedTo:   deletedTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
