package changefeed

import (
	"context"

	"github.com/smallbiznis/aquaflow/internal/config"
	"github.com/smallbiznis/aquaflow/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("changefeed",
	fx.Provide(NewHub),
	fx.Invoke(registerListener),
)

func registerListener(lc fx.Lifecycle, cfg config.Config, hub *Hub, log *zap.Logger) {
	if !cfg.PGNotifyEnabled {
		return
	}
	if db.DialectFor(cfg) != db.TypePostgres {
		log.Warn("PG_NOTIFY_ENABLED ignored for non-postgres database", zap.String("type", cfg.DBType))
		return
	}

	listener := NewListener(db.PostgresDSN(cfg), hub, log)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			listener.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			listener.Stop()
			return nil
		},
	})
}
