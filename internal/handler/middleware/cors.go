package middleware

import (
	"log/slog"
	"slices"

	"install-scheduler/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewCORSMiddleware builds the CORS policy. A "*" origin opens the API to any
// caller and turns credentials off, since browsers reject that combination.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     withHeader(cfg.AllowHeaders, requestIDHeader),
		ExposeHeaders:    withHeader(cfg.ExposeHeaders, requestIDHeader),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if slices.Contains(cfg.AllowOrigins, "*") {
		corsCfg.AllowAllOrigins = true
		if corsCfg.AllowCredentials {
			slog.Warn("CORS wildcard origin configured; credentials disabled")
			corsCfg.AllowCredentials = false
		}
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	slog.Info("CORS middleware initialized",
		"allow_origins", cfg.AllowOrigins, "allow_all", corsCfg.AllowAllOrigins)
	return cors.New(corsCfg)
}

func withHeader(headers []string, h string) []string {
	if slices.Contains(headers, h) {
		return headers
	}
	return append(slices.Clone(headers), h)
}
