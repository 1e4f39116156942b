package area

import (
	"github.com/smallbiznis/aquaflow/internal/area/repository"
	"github.com/smallbiznis/aquaflow/internal/area/service"
	"go.uber.org/fx"
)

var Module = fx.Module("area.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
