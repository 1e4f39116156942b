package migration

import (
	"github.com/smallbiznis/aquaflow/internal/config"
	"github.com/smallbiznis/aquaflow/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		switch db.DialectFor(cfg) {
		case db.TypeSQLite:
			log.Info("applying sqlite schema")
			return ApplySQLiteSchema(conn)
		case db.TypeMySQL:
			log.Warn("no embedded migrations for mysql, schema must be managed externally")
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
