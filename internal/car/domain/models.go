package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Car struct {
	ID         snowflake.ID                `gorm:"primaryKey" json:"id"`
	DriverID   *snowflake.ID               `json:"driver_id,omitempty"`
	DriverName string                      `gorm:"->" json:"driver_name,omitempty"`
	Name       string                      `json:"name"`
	Color      string                      `json:"color"`
	Note       string                      `json:"note"`
	Photos     datatypes.JSONSlice[string] `json:"photos"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}
