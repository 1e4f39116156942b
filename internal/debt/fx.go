package debt

import (
	"github.com/smallbiznis/aquaflow/internal/debt/repository"
	"github.com/smallbiznis/aquaflow/internal/debt/service"
	"go.uber.org/fx"
)

var Module = fx.Module("debt.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
