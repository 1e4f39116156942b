package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActorType string

const (
	ActorTypeOperator ActorType = "operator"
	ActorTypeSystem   ActorType = "system"
)

const (
	ActionLogin             = "operator.login"
	ActionLoginFailed       = "operator.login_failed"
	ActionOperatorCreate    = "operator.create"
	ActionAccessDenied      = "authorization.denied"
	ActionPaymentRecord     = "debt.payment"
	ActionRequestCreate     = "request.create"
	ActionRequestFinish     = "request.finish"
	ActionRequestDelete     = "request.delete"
	ActionFillingExternal   = "filling.external_sale"
	ActionFillingDelete     = "filling.delete"
	ActionRegistryCreate    = "registry.create"
	ActionRegistryUpdate    = "registry.update"
	ActionRegistryDelete    = "registry.delete"
	ActionCustomerDocUpload = "customer.document_upload"
)

type AuditLog struct {
	ID         snowflake.ID      `json:"id" gorm:"primaryKey"`
	ActorType  string            `json:"actor_type"`
	ActorID    *string           `json:"actor_id,omitempty"`
	Action     string            `json:"action"`
	TargetType string            `json:"target_type"`
	TargetID   *string           `json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata"`
	IPAddress  *string           `json:"ip_address,omitempty"`
	UserAgent  *string           `json:"user_agent,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	ActorType  string
	StartAt    *time.Time
	EndAt      *time.Time
	Cursor     *AuditCursor
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
}
