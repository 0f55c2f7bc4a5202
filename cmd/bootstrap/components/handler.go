package components

import (
	"install-scheduler/internal/handler"
	"install-scheduler/internal/handler/api"
	"install-scheduler/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAppointmentHandler,
		api.NewAvailabilityHandler,
		api.NewCatalogHandler,
		middleware.NewAuthMiddleware,
		handler.NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)
