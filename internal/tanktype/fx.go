package tanktype

import (
	"github.com/smallbiznis/aquaflow/internal/tanktype/repository"
	"github.com/smallbiznis/aquaflow/internal/tanktype/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tanktype.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
