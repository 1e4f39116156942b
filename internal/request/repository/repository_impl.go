package repository

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/request/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func selectRequests() sq.SelectBuilder {
	return sq.Select(
		"r.id", "r.customer_id", "r.driver_id", "r.request_type", "r.status", "r.is_debt",
		"r.notes", "r.created_by", "r.created_at", "r.updated_at",
		"COALESCE(c.name, '') AS customer_name", "COALESCE(c.tank_no, '') AS tank_no",
		"COALESCE(c.phone, '') AS phone", "c.area_id", "COALESCE(a.name, '') AS area_name",
		"COALESCE(d.name, '') AS driver_name", "COALESCE(t.name, '') AS tank_type_name",
		"COALESCE(t.price, 0) AS price", "c.latitude", "c.longitude",
	).
		From("requests r").
		LeftJoin("customers c ON c.id = r.customer_id").
		LeftJoin("areas a ON a.id = c.area_id").
		LeftJoin("drivers d ON d.id = r.driver_id").
		LeftJoin("tank_types t ON t.id = c.tank_type_id")
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, req *domain.Request) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO requests (id, customer_id, driver_id, request_type, status, is_debt, notes, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID,
		req.CustomerID,
		req.DriverID,
		req.RequestType,
		req.Status,
		req.IsDebt,
		req.Notes,
		req.CreatedBy,
		req.CreatedAt,
		req.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Request, error) {
	stmt, args, err := selectRequests().Where(sq.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var req domain.Request
	if err := db.WithContext(ctx).Raw(stmt, args...).Scan(&req).Error; err != nil {
		return nil, err
	}
	if req.ID == 0 {
		return nil, nil
	}
	return &req, nil
}

func (r *repo) MarkDelivered(ctx context.Context, db *gorm.DB, id snowflake.ID, isDebt bool, at time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE requests SET status = ?, is_debt = ?, updated_at = ? WHERE id = ? AND status = ?`,
		domain.StatusDelivered, isDebt, at, id, domain.StatusPending,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) UpdateDriver(ctx context.Context, db *gorm.DB, id snowflake.ID, driverID *snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE requests SET driver_id = ?, updated_at = ? WHERE id = ?`,
		driverID, at, id,
	).Error
}

func (r *repo) UpdateCreatedAt(ctx context.Context, db *gorm.DB, id snowflake.ID, createdAt, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE requests SET created_at = ?, updated_at = ? WHERE id = ?`,
		createdAt, at, id,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM requests WHERE id = ?`, id).Error
}

func (r *repo) DeleteDelivered(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM requests WHERE id = ? AND status = ?`, id, domain.StatusDelivered)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) CountPending(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM requests WHERE customer_id = ? AND status = ?`,
		customerID, domain.StatusPending,
	).Scan(&count).Error
	return count, err
}

func (r *repo) CustomerExists(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(1) FROM customers WHERE id = ?`, customerID).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) DriverRole(ctx context.Context, db *gorm.DB, driverID snowflake.ID) (string, error) {
	var roles []string
	if err := db.WithContext(ctx).Raw(`SELECT role FROM drivers WHERE id = ?`, driverID).Scan(&roles).Error; err != nil {
		return "", err
	}
	if len(roles) == 0 {
		return "", nil
	}
	return roles[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Request, error) {
	query := selectRequests()
	if filter.Status != "" {
		query = query.Where(sq.Eq{"r.status": filter.Status})
	}
	if filter.RequestType != "" {
		query = query.Where(sq.Eq{"r.request_type": filter.RequestType})
	}
	if filter.CustomerID != nil {
		query = query.Where(sq.Eq{"r.customer_id": *filter.CustomerID})
	}
	if filter.DriverID != nil {
		query = query.Where(sq.Eq{"r.driver_id": *filter.DriverID})
	}
	if filter.AreaID != nil {
		query = query.Where(sq.Eq{"c.area_id": *filter.AreaID})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where(sq.Or{
			sq.Like{"c.name": like},
			sq.Like{"c.tank_no": like},
			sq.Like{"c.phone": like},
		})
	}
	if filter.CreatedFrom != nil {
		query = query.Where(sq.GtOrEq{"r.created_at": filter.CreatedFrom.UTC()})
	}
	if filter.CreatedTo != nil {
		query = query.Where(sq.LtOrEq{"r.created_at": filter.CreatedTo.UTC()})
	}
	if filter.Cursor != nil {
		query = query.Where(sq.Or{
			sq.Gt{"r.created_at": filter.Cursor.CreatedAt},
			sq.And{sq.Eq{"r.created_at": filter.Cursor.CreatedAt}, sq.Gt{"r.id": filter.Cursor.ID}},
		})
	}
	query = query.OrderBy("r.created_at ASC", "r.id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit + 1))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var requests []*domain.Request
	if err := db.WithContext(ctx).Raw(stmt, args...).Scan(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
