package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleDriver    Role = "driver"
	RoleAssistant Role = "assistant"
	RoleEmployee  Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleDriver || r == RoleAssistant || r == RoleEmployee
}

// Driver is any staff member; only RoleDriver can be assigned to requests.
type Driver struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `json:"name"`
	Phone     string       `json:"phone"`
	Role      Role         `json:"role"`
	JobTitle  string       `json:"job_title"`
	IsActive  bool         `json:"is_active"`
	PhotoURL  string       `json:"photo_url"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
