package storage

import (
	"context"

	"github.com/smallbiznis/aquaflow/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(New),
)

func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (Provider, error) {
	if cfg.Storage.Driver != config.StorageDriverGCS {
		log.Info("using local storage", zap.String("dir", cfg.Storage.LocalDir))
		return NewLocalProvider(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL), nil
	}

	provider, err := NewGCSProvider(context.Background(), cfg.Storage.BucketPrefix)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return provider.Close()
		},
	})
	log.Info("using gcs storage", zap.String("bucket_prefix", cfg.Storage.BucketPrefix))
	return provider, nil
}
