package components

import (
	"install-scheduler/internal/infra/db"
	"install-scheduler/internal/infra/readstore"
	"install-scheduler/internal/infra/uow"
	"install-scheduler/internal/usecase/catalog"
	"install-scheduler/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		// Read-side stores for queries
		fx.Annotate(
			readstore.NewCatalogReadStore,
			fx.As(new(catalog.Store)),
		),
		fx.Annotate(
			readstore.NewTechnicianReadStore,
			fx.As(new(queries.AvailabilityReadStore)),
		),
		fx.Annotate(
			readstore.NewAppointmentReadStore,
			fx.As(new(queries.AppointmentReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
