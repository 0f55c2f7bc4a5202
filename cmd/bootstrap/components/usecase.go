package components

import (
	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/pkg/clock"
	"install-scheduler/internal/usecase/catalog"
	"install-scheduler/internal/usecase/commands"
	"install-scheduler/internal/usecase/matching"
	"install-scheduler/internal/usecase/queries"
	"install-scheduler/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCatalogModule,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		appointment.NewDefaultPriceCalculator,
		fx.As(new(appointment.PriceCalculator)),
	),
)

var usecaseCatalogModule = fx.Module("usecase/catalog",
	fx.Provide(
		fx.Annotate(
			catalog.NewCatalog,
			fx.As(new(catalog.TimeSlotCatalog)),
			fx.As(new(catalog.ServiceAreaResolver)),
			fx.As(new(catalog.Invalidator)),
		),
		func(u shared.UnitOfWork) matching.Reads { return u.CommandReads() },
		matching.NewMatcher,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingUseCase,
		commands.NewLifecycleUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewAppointmentQueries,
		queries.NewAvailabilityQueries,
	),
)
