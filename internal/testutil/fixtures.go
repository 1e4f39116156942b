package testutil

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var fixtureNode, _ = snowflake.NewNode(900)

// Base is a fixed instant used by fixtures that need a timestamp.
var Base = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

func exec(t *testing.T, db *gorm.DB, sql string, args ...any) {
	t.Helper()
	if err := db.Exec(sql, args...).Error; err != nil {
		t.Fatalf("fixture: %v", err)
	}
}

func InsertArea(t *testing.T, db *gorm.DB, name string, active bool) snowflake.ID {
	t.Helper()
	id := fixtureNode.Generate()
	exec(t, db, `INSERT INTO areas (id, name, is_active, notes, created_at, updated_at) VALUES (?, ?, ?, '', ?, ?)`,
		id, name, active, Base, Base)
	return id
}

func InsertTankType(t *testing.T, db *gorm.DB, name string, price int64) snowflake.ID {
	t.Helper()
	id := fixtureNode.Generate()
	exec(t, db, `INSERT INTO tank_types (id, name, capacity_liters, price, is_active, created_at, updated_at) VALUES (?, ?, 1000, ?, ?, ?, ?)`,
		id, name, price, true, Base, Base)
	return id
}

func InsertDriver(t *testing.T, db *gorm.DB, name, role string, active bool) snowflake.ID {
	t.Helper()
	id := fixtureNode.Generate()
	exec(t, db, `INSERT INTO drivers (id, name, phone, role, job_title, is_active, photo_url, created_at, updated_at) VALUES (?, ?, '', ?, '', ?, '', ?, ?)`,
		id, name, role, active, Base, Base)
	return id
}

type CustomerFixture struct {
	Name       string
	TankNo     string
	AreaID     *snowflake.ID
	DriverID   *snowflake.ID
	TankTypeID *snowflake.ID
}

func InsertCustomer(t *testing.T, db *gorm.DB, c CustomerFixture) snowflake.ID {
	t.Helper()
	id := fixtureNode.Generate()
	exec(t, db, `INSERT INTO customers (id, name, phone, tank_no, area_id, driver_id, tank_type_id, documents, notes, created_at, updated_at)
		VALUES (?, ?, '', ?, ?, ?, ?, '[]', '', ?, ?)`,
		id, c.Name, c.TankNo, c.AreaID, c.DriverID, c.TankTypeID, Base, Base)
	return id
}

func InsertFilling(t *testing.T, db *gorm.DB, customerID *snowflake.ID, amount int64, isDebt bool, createdAt time.Time) snowflake.ID {
	t.Helper()
	id := fixtureNode.Generate()
	exec(t, db, `INSERT INTO fillings (id, customer_id, filling_type, amount, is_debt, customer_name, tank_no, notes, created_by, created_at, finished_at)
		VALUES (?, ?, 'new_filling', ?, ?, '', '', '', 'test', ?, ?)`,
		id, customerID, amount, isDebt, createdAt.UTC(), createdAt.UTC())
	return id
}

func InsertDebt(t *testing.T, db *gorm.DB, customerID snowflake.ID, fillingID *snowflake.ID, amount, remaining int64, createdAt time.Time) snowflake.ID {
	t.Helper()
	id := fixtureNode.Generate()
	exec(t, db, `INSERT INTO debts (id, customer_id, filling_id, amount, remaining_amount, is_paid, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, '', ?, ?)`,
		id, customerID, fillingID, amount, remaining, remaining == 0, createdAt.UTC(), createdAt.UTC())
	return id
}

func InsertRequest(t *testing.T, db *gorm.DB, customerID snowflake.ID, requestType, status string, createdAt time.Time) snowflake.ID {
	t.Helper()
	id := fixtureNode.Generate()
	exec(t, db, `INSERT INTO requests (id, customer_id, request_type, status, is_debt, notes, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, '', 'test', ?, ?)`,
		id, customerID, requestType, status, false, createdAt.UTC(), createdAt.UTC())
	return id
}

func Ptr[T any](v T) *T {
	return &v
}
