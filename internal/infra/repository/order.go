package repository

import (
	"context"

	"install-scheduler/internal/infra"
	"install-scheduler/internal/infra/db"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const ordersTable = "orders"

// OrderRepository only touches the appointment link on storefront orders.
type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(dbtx db.DBTX) *OrderRepository {
	return &OrderRepository{db: dbtx}
}

func (r *OrderRepository) LinkAppointment(ctx context.Context, orderID, appointmentID uuid.UUID) error {
	query, args, err := db.Builder.Update(ordersTable).
		Set("installation_appointment_id", appointmentID).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build order link", err, infra.KindDBFailure)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to link appointment to order", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return nil
}

// UnlinkAppointment clears the link only while it still points at appointmentID.
func (r *OrderRepository) UnlinkAppointment(ctx context.Context, orderID, appointmentID uuid.UUID) error {
	query, args, err := db.Builder.Update(ordersTable).
		Set("installation_appointment_id", nil).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orderID, "installation_appointment_id": appointmentID}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build order unlink", err, infra.KindDBFailure)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to unlink appointment from order", err)
	}
	return nil
}
