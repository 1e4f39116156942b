package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/smallbiznis/aquaflow/internal/archive/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.DeletedRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO deleted_records (
			id, source, original_id, customer_id, customer_name, tank_no, request_type,
			status_at_deletion, amount, deleted_by, original_created_at, deleted_at, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Source,
		record.OriginalID,
		record.CustomerID,
		record.CustomerName,
		record.TankNo,
		record.RequestType,
		record.StatusAtDeletion,
		record.Amount,
		record.DeletedBy,
		record.OriginalCreatedAt,
		record.DeletedAt,
		record.Notes,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.DeletedRecord, error) {
	query := sq.Select(
		"id", "source", "original_id", "customer_id", "customer_name", "tank_no", "request_type",
		"status_at_deletion", "amount", "deleted_by", "original_created_at", "deleted_at", "notes",
	).From("deleted_records")

	if filter.Source != "" {
		query = query.Where(sq.Eq{"source": filter.Source})
	}
	if filter.CustomerID != nil {
		query = query.Where(sq.Eq{"customer_id": *filter.CustomerID})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where(sq.Or{
			sq.Like{"customer_name": like},
			sq.Like{"tank_no": like},
		})
	}
	if filter.DeletedFrom != nil {
		query = query.Where(sq.GtOrEq{"deleted_at": filter.DeletedFrom.UTC()})
	}
	if filter.DeletedTo != nil {
		query = query.Where(sq.LtOrEq{"deleted_at": filter.DeletedTo.UTC()})
	}
	if filter.Cursor != nil {
		query = query.Where(sq.Or{
			sq.Lt{"deleted_at": filter.Cursor.DeletedAt},
			sq.And{sq.Eq{"deleted_at": filter.Cursor.DeletedAt}, sq.Lt{"id": filter.Cursor.ID}},
		})
	}
	query = query.OrderBy("deleted_at DESC", "id DESC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit + 1))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var records []*domain.DeletedRecord
	if err := db.WithContext(ctx).Raw(stmt, args...).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
