package bootstrap

import (
	"context"
	"log/slog"

	"install-scheduler/internal/infra/cache"
	"install-scheduler/internal/pkg/config"
	"install-scheduler/internal/usecase/catalog"

	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewCatalogCache,
	),
)

// NewCatalogCache falls back to a cache that always misses when Redis is disabled.
func NewCatalogCache(lc fx.Lifecycle, cfg config.Config) catalog.Cache {
	if !cfg.Redis.Enabled {
		slog.Info("catalog cache disabled")
		return cache.NoopCache{}
	}

	client := cache.NewRedisClient(cfg.Redis)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				// Catalog reads fall through to Postgres on cache errors.
				slog.Warn("redis unreachable at startup", "addr", cfg.Redis.Addr(), "error", err.Error())
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return cache.NewRedisCache(client, cfg.Redis.TTL)
}
