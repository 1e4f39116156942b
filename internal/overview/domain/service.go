package domain

import "context"

// Stats is the dashboard headline. Money is whole IQD.
type Stats struct {
	Customers          int64 `json:"customers"`
	ActiveAreas        int64 `json:"active_areas"`
	TankTypes          int64 `json:"tank_types"`
	Drivers            int64 `json:"drivers"`
	Assistants         int64 `json:"assistants"`
	Employees          int64 `json:"employees"`
	PendingRequests    int64 `json:"pending_requests"`
	DeliveredRequests  int64 `json:"delivered_requests"`
	DebtorCustomers    int64 `json:"debtor_customers"`
	OutstandingDebt    int64 `json:"outstanding_debt"`
	FillingsToday      int64 `json:"fillings_today"`
	FillingsTodayTotal int64 `json:"fillings_today_total"`
}

type Service interface {
	Stats(ctx context.Context) (Stats, error)
}
