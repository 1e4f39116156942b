package lookup

import (
	"github.com/smallbiznis/aquaflow/internal/lookup/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lookup.service",
	fx.Provide(service.New),
)
