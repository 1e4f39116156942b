package operatorcontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Operator is the authenticated back-office user bound to a request.
type Operator struct {
	ID       snowflake.ID
	Username string
	Role     string
}

type operatorKey struct{}

type clientKey struct{}

type client struct {
	IPAddress string
	UserAgent string
}

// WithOperator stores the authenticated operator in the context.
func WithOperator(ctx context.Context, op Operator) context.Context {
	op.Username = strings.TrimSpace(op.Username)
	op.Role = strings.TrimSpace(op.Role)
	return context.WithValue(ctx, operatorKey{}, op)
}

// OperatorFromContext returns the operator, if set.
func OperatorFromContext(ctx context.Context) (Operator, bool) {
	if ctx == nil {
		return Operator{}, false
	}
	op, ok := ctx.Value(operatorKey{}).(Operator)
	if !ok || op.ID == 0 {
		return Operator{}, false
	}
	return op, true
}

// UsernameFromContext returns the operator username or fallback.
func UsernameFromContext(ctx context.Context, fallback string) string {
	if op, ok := OperatorFromContext(ctx); ok && op.Username != "" {
		return op.Username
	}
	return fallback
}

func WithClient(ctx context.Context, ipAddress, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, client{
		IPAddress: strings.TrimSpace(ipAddress),
		UserAgent: strings.TrimSpace(userAgent),
	})
}

func ClientFromContext(ctx context.Context) (ipAddress string, userAgent string) {
	if ctx == nil {
		return "", ""
	}
	value, ok := ctx.Value(clientKey{}).(client)
	if !ok {
		return "", ""
	}
	return value.IPAddress, value.UserAgent
}
