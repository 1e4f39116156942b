package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	"github.com/smallbiznis/aquaflow/internal/observability/obscontext"
	"github.com/smallbiznis/aquaflow/internal/operatorcontext"
	"go.uber.org/zap"
)

const bearerPrefix = "bearer "

// ClientContext records the caller address and user agent for audit entries.
func ClientContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := operatorcontext.WithClient(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AuthRequired resolves the bearer token to an operator. EventSource cannot
// set headers, so an access_token query parameter is accepted as well.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = strings.TrimSpace(c.Query("access_token"))
		}
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		op, err := s.operatorSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := operatorcontext.WithOperator(c.Request.Context(), operatorcontext.Operator{
			ID:       op.ID,
			Username: op.Username,
			Role:     string(op.Role),
		})
		ctx = obscontext.WithActor(ctx, string(auditdomain.ActorTypeOperator), op.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		op, ok := operatorcontext.OperatorFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), op, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) audit(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	var target *string
	if targetID != "" {
		target = &targetID
	}
	if err := s.auditSvc.AuditLog(c.Request.Context(), "", nil, action, targetType, target, metadata); err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
