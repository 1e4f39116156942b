package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/customer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

var customerColumns = []string{
	"c.id", "c.name", "c.phone", "c.tank_no",
	"c.area_id", "COALESCE(a.name, '') AS area_name",
	"c.driver_id", "COALESCE(d.name, '') AS driver_name",
	"c.tank_type_id", "COALESCE(t.name, '') AS tank_type_name",
	"c.latitude", "c.longitude", "c.documents", "c.notes", "c.created_at", "c.updated_at",
}

func selectCustomers() sq.SelectBuilder {
	return sq.Select(customerColumns...).
		From("customers c").
		LeftJoin("areas a ON a.id = c.area_id").
		LeftJoin("drivers d ON d.id = c.driver_id").
		LeftJoin("tank_types t ON t.id = c.tank_type_id")
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customers (id, name, phone, tank_no, area_id, driver_id, tank_type_id, latitude, longitude, documents, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.ID,
		customer.Name,
		customer.Phone,
		customer.TankNo,
		customer.AreaID,
		customer.DriverID,
		customer.TankTypeID,
		customer.Latitude,
		customer.Longitude,
		documents(customer),
		customer.Notes,
		customer.CreatedAt,
		customer.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers
		 SET name = ?, phone = ?, tank_no = ?, area_id = ?, driver_id = ?, tank_type_id = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		customer.Name,
		customer.Phone,
		customer.TankNo,
		customer.AreaID,
		customer.DriverID,
		customer.TankTypeID,
		customer.Notes,
		customer.UpdatedAt,
		customer.ID,
	).Error
}

func (r *repo) UpdateLocation(ctx context.Context, db *gorm.DB, id snowflake.ID, lat, lng float64, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers SET latitude = ?, longitude = ?, updated_at = ? WHERE id = ?`,
		lat, lng, at, id,
	).Error
}

func (r *repo) UpdateDocuments(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers SET documents = ?, updated_at = ? WHERE id = ?`,
		documents(customer), customer.UpdatedAt, customer.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM customers WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	stmt, args, err := selectCustomers().Where(sq.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var customer domain.Customer
	if err := db.WithContext(ctx).Raw(stmt, args...).Scan(&customer).Error; err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Customer, error) {
	query := selectCustomers()
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where(sq.Or{
			sq.Like{"c.name": like},
			sq.Like{"c.tank_no": like},
			sq.Like{"c.phone": like},
		})
	}
	if filter.AreaID != nil {
		query = query.Where(sq.Eq{"c.area_id": *filter.AreaID})
	}
	if filter.DriverID != nil {
		query = query.Where(sq.Eq{"c.driver_id": *filter.DriverID})
	}
	if filter.TankTypeID != nil {
		query = query.Where(sq.Eq{"c.tank_type_id": *filter.TankTypeID})
	}
	if filter.LocatedOnly {
		query = query.Where(sq.NotEq{"c.latitude": nil, "c.longitude": nil})
	}
	if filter.Cursor != nil {
		query = query.Where(sq.Or{
			sq.Lt{"c.created_at": filter.Cursor.CreatedAt},
			sq.And{sq.Eq{"c.created_at": filter.Cursor.CreatedAt}, sq.Lt{"c.id": filter.Cursor.ID}},
		})
	}
	query = query.OrderBy("c.created_at DESC", "c.id DESC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit + 1))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var customers []*domain.Customer
	if err := db.WithContext(ctx).Raw(stmt, args...).Scan(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) CountTankNo(ctx context.Context, db *gorm.DB, tankNo string, excludeID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM customers WHERE tank_no = ? AND id <> ?`,
		tankNo, excludeID,
	).Scan(&count).Error
	return count, err
}

var referenceTables = map[string]bool{"areas": true, "drivers": true, "tank_types": true}

func (r *repo) CountReference(ctx context.Context, db *gorm.DB, table string, id snowflake.ID) (int64, error) {
	if !referenceTables[table] {
		return 0, fmt.Errorf("unknown reference table %q", table)
	}
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(1) FROM `+table+` WHERE id = ?`, id).Scan(&count).Error
	return count, err
}

func (r *repo) CountUnpaidDebts(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM debts WHERE customer_id = ? AND is_paid = ?`,
		id, false,
	).Scan(&count).Error
	return count, err
}

func (r *repo) ListRequests(ctx context.Context, db *gorm.DB, id snowflake.ID) ([]*domain.OpenRequest, error) {
	var rows []*domain.OpenRequest
	err := db.WithContext(ctx).Raw(
		`SELECT id, request_type, status, notes, created_at
		 FROM requests
		 WHERE customer_id = ?
		 ORDER BY created_at ASC, id ASC`,
		id,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) DeleteRequest(ctx context.Context, db *gorm.DB, requestID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM requests WHERE id = ?`, requestID).Error
}

func (r *repo) ReleaseHistory(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).Exec(`UPDATE debts SET customer_id = NULL WHERE customer_id = ? AND is_paid = ?`, id, true).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(`UPDATE fillings SET customer_id = NULL WHERE customer_id = ?`, id).Error
}

func documents(customer *domain.Customer) any {
	if customer.Documents == nil {
		return "[]"
	}
	return customer.Documents
}
