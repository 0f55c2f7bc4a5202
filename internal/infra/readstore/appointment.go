package readstore

import (
	"context"

	"install-scheduler/internal/infra"
	"install-scheduler/internal/infra/db"
	"install-scheduler/internal/pkg/pgconv"
	"install-scheduler/internal/usecase/queries"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type AppointmentReadStore struct {
	db db.DBTX
}

func NewAppointmentReadStore(dbtx db.DBTX) *AppointmentReadStore {
	return &AppointmentReadStore{db: dbtx}
}

var appointmentViewColumns = []string{
	"a.id",
	"a.order_id",
	"a.customer_id",
	"a.appointment_date",
	"a.status",
	"a.estimated_duration_hours",
	"a.installation_type",
	"a.product_types",
	"a.room_count",
	"a.window_count",
	"a.special_requirements",
	"a.installation_address",
	"a.access_instructions",
	"a.parking_instructions",
	"a.contact_phone",
	"a.alternative_contact",
	"t.id",
	"t.name",
	"t.phone",
	"t.skill_level",
	"t.average_rating",
	"s.id",
	"s.name",
	"s.code",
	"s.start_time",
	"s.end_time",
	"s.is_premium",
	"a.base_cost_cents",
	"a.labor_cost_cents",
	"a.premium_fee_cents",
	"a.travel_fee_cents",
	"a.total_cost_cents",
	"a.created_at",
	"a.updated_at",
}

func (r *AppointmentReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AppointmentView, error) {
	query, args, err := db.Builder.Select(appointmentViewColumns...).
		From("installation_appointments a").
		Join("installation_technicians t ON t.id = a.assigned_technician_id").
		Join("installation_time_slots s ON s.id = a.time_slot_id").
		Where(sq.Eq{"a.id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build appointment view query", err, infra.KindDBFailure)
	}

	var (
		v           queries.AppointmentView
		date        pgtype.Date
		hours       pgtype.Numeric
		rating      pgtype.Numeric
		rooms, wins int32
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&v.ID,
		&v.OrderID,
		&v.CustomerID,
		&date,
		&v.Status,
		&hours,
		&v.InstallationType,
		&v.ProductTypes,
		&rooms,
		&wins,
		&v.SpecialRequirements,
		&v.Address,
		&v.AccessInstructions,
		&v.ParkingInstructions,
		&v.ContactPhone,
		&v.AlternativeContact,
		&v.Technician.ID,
		&v.Technician.Name,
		&v.Technician.Phone,
		&v.Technician.SkillLevel,
		&rating,
		&v.TimeSlot.ID,
		&v.TimeSlot.Name,
		&v.TimeSlot.Code,
		&v.TimeSlot.StartTime,
		&v.TimeSlot.EndTime,
		&v.TimeSlot.IsPremium,
		&v.Pricing.BaseCents,
		&v.Pricing.LaborCents,
		&v.Pricing.PremiumTimeCents,
		&v.Pricing.TravelCents,
		&v.Pricing.TotalCents,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("appointment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get appointment view", err)
	}

	if v.EstimatedDurationHours, err = pgconv.Float64FromNumeric(hours); err != nil {
		return nil, infra.WrapRepoErr("invalid appointment duration", err, infra.KindDBFailure)
	}
	if v.Technician.AverageRating, err = pgconv.Float64FromNumeric(rating); err != nil {
		return nil, infra.WrapRepoErr("invalid technician rating", err, infra.KindDBFailure)
	}
	v.AppointmentDate = pgconv.DateFromPgtype(date)
	v.RoomCount = int(rooms)
	v.WindowCount = int(wins)
	return &v, nil
}

// List pages newest first on (created_at, id).
func (r *AppointmentReadStore) List(ctx context.Context, filters queries.AppointmentFilters, after *queries.Keyset, limit int) ([]*queries.AppointmentListItem, error) {
	b := db.Builder.Select(
		"a.id", "a.order_id", "a.appointment_date", "s.name", "t.id", "t.name",
		"a.status", "a.total_cost_cents", "a.created_at",
	).
		From("installation_appointments a").
		Join("installation_technicians t ON t.id = a.assigned_technician_id").
		Join("installation_time_slots s ON s.id = a.time_slot_id")

	if filters.OrderID != nil {
		b = b.Where(sq.Eq{"a.order_id": *filters.OrderID})
	}
	if filters.CustomerID != nil {
		b = b.Where(sq.Eq{"a.customer_id": *filters.CustomerID})
	}
	if filters.TechnicianID != nil {
		b = b.Where(sq.Eq{"a.assigned_technician_id": *filters.TechnicianID})
	}
	if filters.Status != nil {
		b = b.Where(sq.Eq{"a.status": *filters.Status})
	}
	if filters.DateFrom != nil {
		b = b.Where(sq.GtOrEq{"a.appointment_date": pgconv.DateToPgtype(*filters.DateFrom)})
	}
	if filters.DateTo != nil {
		b = b.Where(sq.LtOrEq{"a.appointment_date": pgconv.DateToPgtype(*filters.DateTo)})
	}
	if after != nil {
		b = b.Where(sq.Expr("(a.created_at, a.id) < (?, ?)", after.CreatedAt, after.ID))
	}

	query, args, err := b.OrderBy("a.created_at DESC", "a.id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build appointment list query", err, infra.KindDBFailure)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list appointments", err)
	}
	defer rows.Close()

	out := make([]*queries.AppointmentListItem, 0, limit)
	for rows.Next() {
		var (
			item queries.AppointmentListItem
			date pgtype.Date
		)
		if err := rows.Scan(
			&item.ID, &item.OrderID, &date, &item.TimeSlotName, &item.TechnicianID, &item.TechnicianName,
			&item.Status, &item.TotalCents, &item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan appointment", err)
		}
		item.AppointmentDate = pgconv.DateFromPgtype(date)
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate appointments", err)
	}
	return out, nil
}
