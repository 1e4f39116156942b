package filling

import (
	"github.com/smallbiznis/aquaflow/internal/filling/repository"
	"github.com/smallbiznis/aquaflow/internal/filling/service"
	"go.uber.org/fx"
)

var Module = fx.Module("filling.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
