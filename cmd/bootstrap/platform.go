package bootstrap

import (
	"context"
	"log/slog"

	"install-scheduler/internal/handler/middleware"
	"install-scheduler/internal/infra/db"
	"install-scheduler/internal/pkg/config"
	"install-scheduler/internal/pkg/jwt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// ConfigModule loads the environment once; usecases depend on the scheduling subset only.
var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.SchedulingConfig { return cfg.Scheduling },
	),
)

// LoggerModule installs the configured logger as the slog default.
var LoggerModule = fx.Module("logger",
	fx.Provide(
		func(cfg config.Config) *middleware.Logger { return middleware.NewLogger(cfg.Log) },
		func(l *middleware.Logger) *slog.Logger { return l.GetSlogLogger() },
	),
)

var DBModule = fx.Module("db",
	fx.Provide(NewDB),
)

// JWTModule verifies tokens issued by the storefront; this service never signs them.
var JWTModule = fx.Module("jwt",
	fx.Provide(
		fx.Annotate(
			func(cfg config.Config) *jwt.Service { return jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer) },
			fx.As(new(middleware.TokenValidator)),
		),
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, closePool, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			stat := pool.Stat()
			logger.Info("database pool ready",
				"host", cfg.DB.Host, "database", cfg.DB.DBName, "max_conns", stat.MaxConns())
			return nil
		},
		OnStop: func(context.Context) error {
			closePool()
			return nil
		},
	})
	return pool, nil
}
