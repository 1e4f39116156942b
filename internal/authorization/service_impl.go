package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	"github.com/smallbiznis/aquaflow/internal/operatorcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectArea     = "area"
	ObjectTankType = "tank_type"
	ObjectDriver   = "driver"
	ObjectCar      = "car"
	ObjectCustomer = "customer"
	ObjectRequest  = "request"
	ObjectFilling  = "filling"
	ObjectDebt     = "debt"
	ObjectArchive  = "archive"
	ObjectOverview = "overview"
	ObjectLookup   = "lookup"
	ObjectChanges  = "changes"
	ObjectOperator = "operator"
	ObjectAuditLog = "audit_log"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionRequestDeliver = "deliver"
	ActionRequestFinish  = "finish"
	ActionDebtPay        = "pay"
	ActionExternalSale   = "external_sale"
)

const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleDispatcher = "dispatcher"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, op operatorcontext.Operator, object string, action string) error {
	if op.ID == 0 {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	role := strings.ToLower(strings.TrimSpace(op.Role))
	if role == "" {
		s.auditDenied(ctx, op, object, action)
		return ErrForbidden
	}

	subject := fmt.Sprintf("operator:%s", op.ID.String())
	if err := s.ensureGrouping(subject, "role:"+role); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, op, object, action)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps exactly one role link per operator so a role change in
// a fresh token takes effect immediately.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, op operatorcontext.Operator, object string, action string) {
	s.log.Info("access denied",
		zap.String("operator", op.Username),
		zap.String("role", op.Role),
		zap.String("object", object),
		zap.String("action", action),
	)
	if s.auditSvc == nil {
		return
	}
	actorID := op.ID.String()
	targetID := object
	_ = s.auditSvc.AuditLog(ctx, string(auditdomain.ActorTypeOperator), &actorID, auditdomain.ActionAccessDenied, "authorization", &targetID, map[string]any{
		"object":   object,
		"action":   action,
		"role":     op.Role,
		"username": op.Username,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:admin", "*", "*"},

		// Accountant: money side
		{"role:accountant", ObjectDebt, ActionView},
		{"role:accountant", ObjectDebt, ActionDebtPay},
		{"role:accountant", ObjectFilling, ActionView},
		{"role:accountant", ObjectFilling, ActionExternalSale},
		{"role:accountant", ObjectFilling, ActionDelete},
		{"role:accountant", ObjectArchive, ActionView},
		{"role:accountant", ObjectCustomer, ActionView},
		{"role:accountant", ObjectOverview, ActionView},
		{"role:accountant", ObjectLookup, ActionView},
		{"role:accountant", ObjectChanges, ActionView},

		// Dispatcher: requests and customers
		{"role:dispatcher", ObjectRequest, "*"},
		{"role:dispatcher", ObjectCustomer, ActionView},
		{"role:dispatcher", ObjectCustomer, ActionCreate},
		{"role:dispatcher", ObjectCustomer, ActionUpdate},
		{"role:dispatcher", ObjectArea, ActionView},
		{"role:dispatcher", ObjectTankType, ActionView},
		{"role:dispatcher", ObjectDriver, ActionView},
		{"role:dispatcher", ObjectCar, ActionView},
		{"role:dispatcher", ObjectOverview, ActionView},
		{"role:dispatcher", ObjectLookup, ActionView},
		{"role:dispatcher", ObjectChanges, ActionView},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
