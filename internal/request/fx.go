package request

import (
	"github.com/smallbiznis/aquaflow/internal/request/repository"
	"github.com/smallbiznis/aquaflow/internal/request/service"
	"go.uber.org/fx"
)

var Module = fx.Module("request.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
