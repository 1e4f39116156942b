package service

import (
	"context"
	"time"

	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/overview/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("overview.service"),
		clock: p.Clock,
	}
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	db := s.db.WithContext(ctx)
	var stats domain.Stats

	var registry struct {
		Customers   int64
		ActiveAreas int64
		TankTypes   int64
	}
	if err := db.Raw(
		`SELECT
			(SELECT COUNT(1) FROM customers) AS customers,
			(SELECT COUNT(1) FROM areas WHERE is_active = ?) AS active_areas,
			(SELECT COUNT(1) FROM tank_types) AS tank_types`,
		true,
	).Scan(&registry).Error; err != nil {
		return domain.Stats{}, err
	}
	stats.Customers = registry.Customers
	stats.ActiveAreas = registry.ActiveAreas
	stats.TankTypes = registry.TankTypes

	var staff []struct {
		Role  string
		Total int64
	}
	if err := db.Raw(`SELECT role, COUNT(1) AS total FROM drivers GROUP BY role`).Scan(&staff).Error; err != nil {
		return domain.Stats{}, err
	}
	for _, row := range staff {
		switch row.Role {
		case "driver":
			stats.Drivers = row.Total
		case "assistant":
			stats.Assistants = row.Total
		case "employee":
			stats.Employees = row.Total
		}
	}

	var requests []struct {
		Status string
		Total  int64
	}
	if err := db.Raw(`SELECT status, COUNT(1) AS total FROM requests GROUP BY status`).Scan(&requests).Error; err != nil {
		return domain.Stats{}, err
	}
	for _, row := range requests {
		switch row.Status {
		case "pending":
			stats.PendingRequests = row.Total
		case "delivered":
			stats.DeliveredRequests = row.Total
		}
	}

	var debts struct {
		Debtors     int64
		Outstanding int64
	}
	if err := db.Raw(
		`SELECT COUNT(DISTINCT customer_id) AS debtors, COALESCE(SUM(remaining_amount), 0) AS outstanding
		 FROM debts
		 WHERE is_paid = ?`,
		false,
	).Scan(&debts).Error; err != nil {
		return domain.Stats{}, err
	}
	stats.DebtorCustomers = debts.Debtors
	stats.OutstandingDebt = debts.Outstanding

	start, end := dayRange(s.clock.Now())
	var fillings struct {
		Total  int64
		Amount int64
	}
	if err := db.Raw(
		`SELECT COUNT(1) AS total, COALESCE(SUM(amount), 0) AS amount
		 FROM fillings
		 WHERE finished_at >= ? AND finished_at < ?`,
		start, end,
	).Scan(&fillings).Error; err != nil {
		return domain.Stats{}, err
	}
	stats.FillingsToday = fillings.Total
	stats.FillingsTodayTotal = fillings.Amount

	return stats, nil
}

func dayRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
