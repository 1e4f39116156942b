package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Area struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `json:"name"`
	IsActive  bool         `json:"is_active"`
	Notes     string       `json:"notes"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type CustomerCount struct {
	AreaID snowflake.ID `json:"area_id"`
	Name   string       `json:"name"`
	Count  int64        `json:"count"`
}
