package car

import (
	"github.com/smallbiznis/aquaflow/internal/car/repository"
	"github.com/smallbiznis/aquaflow/internal/car/service"
	"go.uber.org/fx"
)

var Module = fx.Module("car.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
