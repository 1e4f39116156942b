package seed

import (
	"context"

	"github.com/smallbiznis/aquaflow/internal/config"
	operatordomain "github.com/smallbiznis/aquaflow/internal/operator/domain"
	"go.uber.org/fx"
)

// Module bootstraps the admin operator. It must be registered after migrations.
var Module = fx.Module("seed",
	fx.Invoke(EnsureAdminOperator),
)

func EnsureAdminOperator(cfg config.Config, operators operatordomain.Service) error {
	return operators.EnsureAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
}
