//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"install-scheduler/cmd/bootstrap"
	"install-scheduler/cmd/bootstrap/components"
	"install-scheduler/internal/infra/cache"
	"install-scheduler/internal/infra/db"
	"install-scheduler/internal/pkg/config"
	"install-scheduler/tests/common/dbtest"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

const (
	pgUser     = "test"
	pgPassword = "testpass"
	pgPort     = nat.Port("5432/tcp")
	redisPort  = nat.Port("6379/tcp")
)

// Containers are shared by every suite in the test process.
var (
	containersOnce sync.Once
	containersErr  error
	pgEndpoint     endpoint
	redisEndpoint  endpoint
)

type endpoint struct {
	Host string
	Port string
}

// Environment is one isolated database plus the fully wired application.
type Environment struct {
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Router *gin.Engine
	Config config.Config
}

func newEnvironment(t *testing.T) Environment {
	t.Helper()
	gin.SetMode(gin.TestMode)

	containersOnce.Do(func() { containersErr = startContainers() })
	require.NoError(t, containersErr, "failed to start containers")

	cfg := config.NewTestConfig()
	cfg.DB = createDatabase(t)
	cfg.Redis = config.RedisConfig{
		Enabled: true,
		Host:    redisEndpoint.Host,
		Port:    redisEndpoint.Port,
		TTL:     time.Minute,
	}

	pool, _, err := db.Connect(cfg.DB)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(pool.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, applyMigrations(ctx, pool), "failed to apply migrations")
	require.NoError(t, dbtest.SeedReferenceData(ctx, pool), "failed to seed reference data")

	rdb := cache.NewRedisClient(cfg.Redis)
	t.Cleanup(func() { _ = rdb.Close() })

	return Environment{
		Pool:   pool,
		Redis:  rdb,
		Router: startApp(t, pool, cfg),
		Config: cfg,
	}
}

func startContainers() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{string(pgPort)},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=512m"},
			// Durability is irrelevant for throwaway databases.
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "full_page_writes=off",
				"-c", "synchronous_commit=off",
				"-c", "max_connections=200",
			},
			WaitingFor: wait.ForSQL(pgPort, "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable", pgUser, pgPassword, host, port.Port())
			}).WithStartupTimeout(60 * time.Second),
			Labels: map[string]string{"purpose": "e2e-tests"},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("start postgres: %w", err)
	}
	if pgEndpoint, err = resolve(ctx, pg, pgPort); err != nil {
		return err
	}

	rc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{string(redisPort)},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			Labels:       map[string]string{"purpose": "e2e-tests"},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("start redis: %w", err)
	}
	redisEndpoint, err = resolve(ctx, rc, redisPort)
	return err
}

func resolve(ctx context.Context, c testcontainers.Container, port nat.Port) (endpoint, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return endpoint{}, fmt.Errorf("container host: %w", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		return endpoint{}, fmt.Errorf("mapped port %s: %w", port, err)
	}
	return endpoint{Host: host, Port: mapped.Port()}, nil
}

// createDatabase gives each suite its own database on the shared server.
func createDatabase(t *testing.T) config.DBConfig {
	t.Helper()

	name := "scheduler_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		pgUser, pgPassword, pgEndpoint.Host, pgEndpoint.Port)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err, "failed to open admin connection")
	defer admin.Close()

	// CREATE DATABASE can race the template lock when suites start together.
	for attempt := 1; ; attempt++ {
		_, err = admin.Exec(ctx, "CREATE DATABASE "+name)
		if err == nil || attempt == 5 {
			break
		}
		slog.Warn("retrying database creation", "attempt", attempt, "error", err.Error())
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		admin, err := pgxpool.New(ctx, adminDSN)
		if err != nil {
			slog.Warn("failed to connect for cleanup", "database", name, "error", err.Error())
			return
		}
		defer admin.Close()
		if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)"); err != nil {
			slog.Warn("failed to drop test database", "database", name, "error", err.Error())
		}
	})

	return config.DBConfig{
		Host:     pgEndpoint.Host,
		Port:     pgEndpoint.Port,
		User:     pgUser,
		Password: pgPassword,
		DBName:   name,
		SSLMode:  "disable",
		TimeZone: "UTC",
		MaxConns: 20,
	}
}

// applyMigrations runs every migrations/*.sql file in name order.
func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	dir, err := findMigrationsDir()
	if err != nil {
		return err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	for _, file := range files {
		sql, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

// findMigrationsDir walks up from the package directory `go test` runs in.
func findMigrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found above %s", dir)
		}
		dir = parent
	}
}

// startApp wires the production modules against the test pool and config.
func startApp(t *testing.T, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	t.Helper()

	var router *gin.Engine
	app := fx.New(
		fx.Supply(pool, cfg, cfg.Scheduling),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.LoggerModule,
		bootstrap.RedisModule,
		bootstrap.MetricsModule,
		bootstrap.JWTModule,
		components.RepositoryModule,
		components.UseCaseModule,
		components.HandlerModule,
		fx.Populate(&router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "failed to start application")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("failed to stop application", "error", err.Error())
		}
	})
	return router
}

// SharedSuite gives every e2e suite a running application and a clean state per subtest.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Config config.Config
}

func (s *SharedSuite) SetupSuite() {
	env := newEnvironment(s.T())
	s.Router = env.Router
	s.DB = env.Pool
	s.Redis = env.Redis
	s.Config = env.Config
}

// SetupSubTest resets tables and drops cached catalog snapshots.
func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "failed to reset database")
	require.NoError(s.T(), s.Redis.FlushDB(context.Background()).Err(), "failed to flush redis")
}
