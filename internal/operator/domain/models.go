package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleDispatcher Role = "dispatcher"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAccountant, RoleDispatcher:
		return true
	default:
		return false
	}
}

type Operator struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `json:"username"`
	DisplayName  string       `json:"display_name"`
	Role         Role         `json:"role"`
	PasswordHash string       `json:"-"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
