package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TankType prices a new filling; Price is whole IQD.
type TankType struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Name           string       `json:"name"`
	CapacityLiters int          `json:"capacity_liters"`
	Price          int64        `json:"price"`
	IsActive       bool         `json:"is_active"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type CustomerCount struct {
	TankTypeID snowflake.ID `json:"tank_type_id"`
	Name       string       `json:"name"`
	Count      int64        `json:"count"`
}
