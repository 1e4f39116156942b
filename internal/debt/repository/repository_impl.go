package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/debt/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const debtColumns = `id, customer_id, filling_id, amount, remaining_amount, is_paid, notes, created_at, updated_at, paid_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, debt *domain.Debt) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO debts (`+debtColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		debt.ID,
		debt.CustomerID,
		debt.FillingID,
		debt.Amount,
		debt.RemainingAmount,
		debt.IsPaid,
		debt.Notes,
		debt.CreatedAt,
		debt.UpdatedAt,
		debt.PaidAt,
	).Error
}

func (r *repo) ListUnpaidByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*domain.Debt, error) {
	var debts []*domain.Debt
	err := db.WithContext(ctx).Raw(
		`SELECT `+debtColumns+`
		 FROM debts
		 WHERE customer_id = ? AND is_paid = ?
		 ORDER BY created_at ASC, id ASC`,
		customerID, false,
	).Scan(&debts).Error
	if err != nil {
		return nil, err
	}
	return debts, nil
}

func (r *repo) SaveBalance(ctx context.Context, db *gorm.DB, debt *domain.Debt, previous int64) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE debts
		 SET remaining_amount = ?, is_paid = ?, paid_at = ?, updated_at = ?
		 WHERE id = ? AND is_paid = ? AND remaining_amount = ?`,
		debt.RemainingAmount,
		debt.IsPaid,
		debt.PaidAt,
		debt.UpdatedAt,
		debt.ID,
		false,
		previous,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) ClearFillingDebtFlag(ctx context.Context, db *gorm.DB, fillingID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`UPDATE fillings SET is_debt = ? WHERE id = ?`, false, fillingID).Error
}

func (r *repo) ListUnpaidWithCustomer(ctx context.Context, db *gorm.DB) ([]domain.UnpaidDebt, error) {
	var rows []domain.UnpaidDebt
	err := db.WithContext(ctx).Raw(
		`SELECT d.id, d.customer_id, c.name AS customer_name, c.tank_no, c.phone,
		        COALESCE(a.name, '') AS area_name, COALESCE(t.name, '') AS tank_type_name,
		        c.latitude, c.longitude, d.remaining_amount, d.created_at
		 FROM debts d
		 JOIN customers c ON c.id = d.customer_id
		 LEFT JOIN areas a ON a.id = c.area_id
		 LEFT JOIN tank_types t ON t.id = c.tank_type_id
		 WHERE d.is_paid = ?
		 ORDER BY d.created_at ASC, d.id ASC`,
		false,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, includePaid bool) ([]*domain.Debt, error) {
	stmt := db.WithContext(ctx).
		Table("debts").
		Select(debtColumns).
		Where("customer_id = ?", customerID)
	if !includePaid {
		stmt = stmt.Where("is_paid = ?", false)
	}

	var debts []*domain.Debt
	if err := stmt.Order("created_at asc, id asc").Scan(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

func (r *repo) SumOutstanding(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(remaining_amount), 0) FROM debts WHERE customer_id = ? AND is_paid = ?`,
		customerID, false,
	).Scan(&total).Error
	return total, err
}

func (r *repo) FindCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*domain.CustomerInfo, error) {
	var info domain.CustomerInfo
	err := db.WithContext(ctx).Raw(
		`SELECT c.id, c.name, c.tank_no, c.phone, COALESCE(a.name, '') AS area_name
		 FROM customers c
		 LEFT JOIN areas a ON a.id = c.area_id
		 WHERE c.id = ?`,
		customerID,
	).Scan(&info).Error
	if err != nil {
		return nil, err
	}
	if info.ID == 0 {
		return nil, nil
	}
	return &info, nil
}
