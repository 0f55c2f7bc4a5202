package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"install-scheduler/internal/domain/user"
	"install-scheduler/internal/handler/api"
	"install-scheduler/internal/handler/middleware"
	"install-scheduler/internal/pkg/config"
	"install-scheduler/internal/pkg/metrics"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Appointment  *api.AppointmentHandler
	Availability *api.AvailabilityHandler
	Catalog      *api.CatalogHandler
	Auth         *middleware.AuthMiddleware
}

func NewHandlers(appointment *api.AppointmentHandler, availability *api.AvailabilityHandler, catalog *api.CatalogHandler, auth *middleware.AuthMiddleware) Handlers {
	return Handlers{Appointment: appointment, Availability: availability, Catalog: catalog, Auth: auth}
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer, h Handlers) {
	setupMiddleware(engine, cfg, logger, m)
	setupRoutes(engine, cfg, gatherer, h)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, m *metrics.Metrics) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	if cfg.Metrics.Enabled {
		engine.Use(middleware.MetricsMiddleware(m))
	}
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, cfg config.Config, gatherer prometheus.Gatherer, h Handlers) {
	engine.GET("/health", healthCheck)

	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		installation := apiGroup.Group("/installation")
		addRoutes(installation, []route{
			{Method: http.MethodGet, Path: "/availability", Handler: h.Availability.Search},
		})

		admin := apiGroup.Group("/admin")
		admin.Use(h.Auth.RequireAuth(), h.Auth.RequireRole(user.RoleAdmin))
		addRoutes(admin, []route{
			{Method: http.MethodPost, Path: "/catalog/invalidate", Handler: h.Catalog.Invalidate},
		})

		appointments := apiGroup.Group("/appointments")
		appointments.Use(h.Auth.RequireAuth())
		{
			addRoutes(appointments, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Appointment.Book},
				{Method: http.MethodGet, Path: "", Handler: h.Appointment.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Appointment.Get},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Appointment.Cancel},
				{
					Method:  http.MethodPost,
					Path:    "/:id/status",
					Handler: h.Appointment.Transition,
					Mw:      []gin.HandlerFunc{h.Auth.RequireRole(user.RoleTechnician, user.RoleAdmin)},
				},
				{
					Method:  http.MethodPost,
					Path:    "/:id/reschedule",
					Handler: h.Appointment.Reschedule,
					Mw:      []gin.HandlerFunc{h.Auth.RequireRole(user.RoleAdmin)},
				},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
