package operatorcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperatorFromContext(t *testing.T) {
	_, ok := OperatorFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithOperator(context.Background(), Operator{ID: 7, Username: " sara ", Role: "admin"})
	op, ok := OperatorFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "sara", op.Username)
	assert.Equal(t, "sara", UsernameFromContext(ctx, "system"))
	assert.Equal(t, "system", UsernameFromContext(context.Background(), "system"))
}

func TestOperatorFromContextRejectsZeroID(t *testing.T) {
	ctx := WithOperator(context.Background(), Operator{Username: "ghost"})
	_, ok := OperatorFromContext(ctx)
	assert.False(t, ok)
}

func TestClientFromContext(t *testing.T) {
	ctx := WithClient(context.Background(), "10.0.0.1", "curl/8")
	ip, ua := ClientFromContext(ctx)
	assert.Equal(t, "10.0.0.1", ip)
	assert.Equal(t, "curl/8", ua)
}
