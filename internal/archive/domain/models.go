package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Source string

const (
	SourceRequest Source = "request"
	SourceFilling Source = "filling"
)

// StatusFinished marks snapshots of archived fillings.
const StatusFinished = "finished"

// DeletedRecord is the immutable snapshot written before a request or filling is removed.
type DeletedRecord struct {
	ID                snowflake.ID  `gorm:"primaryKey" json:"id"`
	Source            Source        `json:"source"`
	OriginalID        snowflake.ID  `json:"original_id"`
	CustomerID        *snowflake.ID `json:"customer_id,omitempty"`
	CustomerName      string        `json:"customer_name"`
	TankNo            string        `json:"tank_no"`
	RequestType       string        `json:"request_type"`
	StatusAtDeletion  string        `json:"status_at_deletion"`
	Amount            int64         `json:"amount"`
	DeletedBy         string        `json:"deleted_by"`
	OriginalCreatedAt *time.Time    `json:"original_created_at,omitempty"`
	DeletedAt         time.Time     `json:"deleted_at"`
	Notes             string        `json:"notes"`
}
