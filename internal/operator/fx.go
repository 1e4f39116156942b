package operator

import (
	"github.com/smallbiznis/aquaflow/internal/operator/repository"
	"github.com/smallbiznis/aquaflow/internal/operator/service"
	"github.com/smallbiznis/aquaflow/internal/operator/token"
	"go.uber.org/fx"
)

var Module = fx.Module("operator.service",
	fx.Provide(token.NewIssuer),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
