package readstore

import (
	"context"

	"install-scheduler/internal/infra"
	"install-scheduler/internal/infra/db"
	"install-scheduler/internal/pkg/pgconv"
	"install-scheduler/internal/usecase/shared"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(dbtx db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: dbtx}
}

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.OrderSnapshot, error) {
	query, args, err := db.Builder.Select("id", "customer_id", "status", "installation_appointment_id").
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build order select", err, infra.KindDBFailure)
	}

	var (
		o      shared.OrderSnapshot
		linked pgtype.UUID
	)
	if err := r.db.QueryRow(ctx, query, args...).Scan(&o.ID, &o.CustomerID, &o.Status, &linked); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get order", err)
	}
	o.InstallationAppointmentID = pgconv.UUIDPtrFromPgtype(linked)
	return &o, nil
}
