package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"install-scheduler/cmd/bootstrap"
	"install-scheduler/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Debug mode must be opted into explicitly.
	gin.SetMode(gin.ReleaseMode)
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

// @title           install-scheduler
// @version         1.0
// @description     Installation appointment scheduling and technician assignment.

// @BasePath  /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// newServer binds the listener during fx start so a busy port fails startup
// instead of surfacing later from a goroutine.
func newServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, logger *slog.Logger, shutdowner fx.Shutdowner) *http.Server {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			gin.EnableJsonDecoderDisallowUnknownFields()
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("starting server", "address", srv.Addr, "mode", gin.Mode())
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped", "error", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("draining in-flight requests")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}

func main() {
	app := fx.New(
		bootstrap.Module,
		fx.Provide(func() *gin.Engine { return gin.New() }),
		fx.Provide(newServer),
		fx.Invoke(func(*http.Server) {}),
		fx.StopTimeout(30*time.Second),
	)
	app.Run()
	slog.Info("application stopped")
}
