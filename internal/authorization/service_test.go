package authorization

import (
	"context"
	"testing"

	"github.com/smallbiznis/aquaflow/internal/operatorcontext"
	"github.com/smallbiznis/aquaflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	db := testutil.NewDB(t)
	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)
	return NewService(Params{DB: db, Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAuthorizeByRole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin := operatorcontext.Operator{ID: 1, Username: "root", Role: RoleAdmin}
	accountant := operatorcontext.Operator{ID: 2, Username: "huda", Role: RoleAccountant}
	dispatcher := operatorcontext.Operator{ID: 3, Username: "mona", Role: RoleDispatcher}

	cases := []struct {
		name    string
		op      operatorcontext.Operator
		object  string
		action  string
		allowed bool
	}{
		{"admin manages operators", admin, ObjectOperator, ActionCreate, true},
		{"admin deletes areas", admin, ObjectArea, ActionDelete, true},
		{"accountant records payments", accountant, ObjectDebt, ActionDebtPay, true},
		{"accountant deletes fillings", accountant, ObjectFilling, ActionDelete, true},
		{"accountant cannot finish requests", accountant, ObjectRequest, ActionRequestFinish, false},
		{"accountant cannot edit customers", accountant, ObjectCustomer, ActionUpdate, false},
		{"dispatcher finishes requests", dispatcher, ObjectRequest, ActionRequestFinish, true},
		{"dispatcher creates customers", dispatcher, ObjectCustomer, ActionCreate, true},
		{"dispatcher cannot delete customers", dispatcher, ObjectCustomer, ActionDelete, false},
		{"dispatcher cannot record payments", dispatcher, ObjectDebt, ActionDebtPay, false},
		{"dispatcher cannot read audit logs", dispatcher, ObjectAuditLog, ActionView, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Authorize(ctx, tc.op, tc.object, tc.action)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestAuthorizeFollowsRoleChange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	op := operatorcontext.Operator{ID: 9, Username: "sami", Role: RoleDispatcher}
	assert.ErrorIs(t, svc.Authorize(ctx, op, ObjectDebt, ActionDebtPay), ErrForbidden)

	op.Role = RoleAccountant
	assert.NoError(t, svc.Authorize(ctx, op, ObjectDebt, ActionDebtPay))
	assert.ErrorIs(t, svc.Authorize(ctx, op, ObjectRequest, ActionCreate), ErrForbidden)
}

func TestAuthorizeRejectsAnonymous(t *testing.T) {
	svc := newTestService(t)

	err := svc.Authorize(context.Background(), operatorcontext.Operator{}, ObjectArea, ActionView)
	assert.ErrorIs(t, err, ErrInvalidActor)

	err = svc.Authorize(context.Background(), operatorcontext.Operator{ID: 4, Role: ""}, ObjectArea, ActionView)
	assert.ErrorIs(t, err, ErrForbidden)
}
