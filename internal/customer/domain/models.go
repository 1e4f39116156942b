package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paulmach/orb"
	"gorm.io/datatypes"
)

type Customer struct {
	ID           snowflake.ID                `gorm:"primaryKey" json:"id"`
	Name         string                      `json:"name"`
	Phone        string                      `json:"phone"`
	TankNo       string                      `json:"tank_no"`
	AreaID       *snowflake.ID               `json:"area_id,omitempty"`
	AreaName     string                      `gorm:"->" json:"area_name,omitempty"`
	DriverID     *snowflake.ID               `json:"driver_id,omitempty"`
	DriverName   string                      `gorm:"->" json:"driver_name,omitempty"`
	TankTypeID   *snowflake.ID               `json:"tank_type_id,omitempty"`
	TankTypeName string                      `gorm:"->" json:"tank_type_name,omitempty"`
	Latitude     *float64                    `json:"latitude,omitempty"`
	Longitude    *float64                    `json:"longitude,omitempty"`
	Documents    datatypes.JSONSlice[string] `json:"documents"`
	Notes        string                      `json:"notes"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// Location returns the customer's point in orb (lng, lat) order.
func (c Customer) Location() (orb.Point, bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return orb.Point{}, false
	}
	return orb.Point{*c.Longitude, *c.Latitude}, true
}
