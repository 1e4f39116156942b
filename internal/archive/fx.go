package archive

import (
	"github.com/smallbiznis/aquaflow/internal/archive/repository"
	"github.com/smallbiznis/aquaflow/internal/archive/service"
	"go.uber.org/fx"
)

var Module = fx.Module("archive.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
