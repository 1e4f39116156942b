package driver

import (
	"github.com/smallbiznis/aquaflow/internal/driver/repository"
	"github.com/smallbiznis/aquaflow/internal/driver/service"
	"go.uber.org/fx"
)

var Module = fx.Module("driver.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
