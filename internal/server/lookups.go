package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetLookups returns the active drivers, areas and tank types used by form pickers.
func (s *Server) GetLookups(c *gin.Context) {
	lookups, err := s.lookupSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": lookups})
}

func (s *Server) GetOverview(c *gin.Context) {
	stats, err := s.overviewSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
