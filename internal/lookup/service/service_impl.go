package service

import (
	"context"

	areadomain "github.com/smallbiznis/aquaflow/internal/area/domain"
	driverdomain "github.com/smallbiznis/aquaflow/internal/driver/domain"
	"github.com/smallbiznis/aquaflow/internal/lookup/domain"
	tanktypedomain "github.com/smallbiznis/aquaflow/internal/tanktype/domain"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Areas     areadomain.Service
	TankTypes tanktypedomain.Service
	Drivers   driverdomain.Service
}

type Service struct {
	areas     areadomain.Service
	tankTypes tanktypedomain.Service
	drivers   driverdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		areas:     p.Areas,
		tankTypes: p.TankTypes,
		drivers:   p.Drivers,
	}
}

func (s *Service) Get(ctx context.Context) (domain.Lookups, error) {
	drivers, err := s.drivers.ListActiveDrivers(ctx)
	if err != nil {
		return domain.Lookups{}, err
	}
	areas, err := s.areas.ListActive(ctx)
	if err != nil {
		return domain.Lookups{}, err
	}
	tankTypes, err := s.tankTypes.ListActive(ctx)
	if err != nil {
		return domain.Lookups{}, err
	}
	return domain.Lookups{Drivers: drivers, Areas: areas, TankTypes: tankTypes}, nil
}
