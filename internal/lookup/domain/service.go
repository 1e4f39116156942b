package domain

import (
	"context"

	areadomain "github.com/smallbiznis/aquaflow/internal/area/domain"
	driverdomain "github.com/smallbiznis/aquaflow/internal/driver/domain"
	tanktypedomain "github.com/smallbiznis/aquaflow/internal/tanktype/domain"
)

// Lookups feeds the request and customer form dropdowns.
type Lookups struct {
	Drivers   []driverdomain.Driver     `json:"drivers"`
	Areas     []areadomain.Area         `json:"areas"`
	TankTypes []tanktypedomain.TankType `json:"tank_types"`
}

type Service interface {
	Get(ctx context.Context) (Lookups, error)
}
