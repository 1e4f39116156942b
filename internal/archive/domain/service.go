package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListRequest struct {
	pagination.Pagination
	Source      string
	CustomerID  *snowflake.ID
	Search      string
	DeletedFrom *time.Time
	DeletedTo   *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	Records []DeletedRecord `json:"records"`
}

type Service interface {
	// ArchiveThenDelete writes the snapshot and only then runs deleteFn, both on db.
	// Callers pass a transaction so the snapshot and the delete commit together.
	ArchiveThenDelete(ctx context.Context, db *gorm.DB, record DeletedRecord, deleteFn func(tx *gorm.DB) error) (DeletedRecord, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidSource    = errors.New("invalid_source")
	ErrInvalidRecord    = errors.New("invalid_archive_record")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
