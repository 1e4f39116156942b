package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	operatordomain "github.com/smallbiznis/aquaflow/internal/operator/domain"
)

type createOperatorRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Password    string `json:"password"`
}

func (s *Server) CreateOperator(c *gin.Context) {
	var req createOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	op, err := s.operatorSvc.Create(c.Request.Context(), operatordomain.CreateOperatorRequest{
		Username:    strings.TrimSpace(req.Username),
		DisplayName: strings.TrimSpace(req.DisplayName),
		Role:        operatordomain.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		Password:    req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionOperatorCreate, "operator", op.ID.String(), map[string]any{
		"username": op.Username,
		"role":     string(op.Role),
	})

	c.JSON(http.StatusCreated, gin.H{"data": op})
}

func (s *Server) ListOperators(c *gin.Context) {
	ops, err := s.operatorSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ops})
}
