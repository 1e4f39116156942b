package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	operatordomain "github.com/smallbiznis/aquaflow/internal/operator/domain"
	"github.com/smallbiznis/aquaflow/internal/operatorcontext"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	username := strings.TrimSpace(req.Username)
	ctx := c.Request.Context()

	result, err := s.limiter.AllowLogin(ctx, username, c.ClientIP())
	if err != nil {
		s.log.Warn("login rate limit check failed", zap.Error(err))
	} else if !result.Allowed {
		retryAfter := int(result.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		AbortWithError(c, ErrRateLimited)
		return
	}

	resp, err := s.operatorSvc.Login(ctx, operatordomain.LoginRequest{
		Username: username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, operatordomain.ErrInvalidCredentials) {
			s.audit(c, auditdomain.ActionLoginFailed, "operator", "", map[string]any{"username": username})
		}
		AbortWithError(c, err)
		return
	}

	loginCtx := operatorcontext.WithOperator(ctx, operatorcontext.Operator{
		ID:       resp.Operator.ID,
		Username: resp.Operator.Username,
		Role:     string(resp.Operator.Role),
	})
	c.Request = c.Request.WithContext(loginCtx)
	s.audit(c, auditdomain.ActionLogin, "operator", resp.Operator.ID.String(), map[string]any{"username": resp.Operator.Username})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) Me(c *gin.Context) {
	op, ok := operatorcontext.OperatorFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"id":       op.ID.String(),
		"username": op.Username,
		"role":     op.Role,
	}})
}
