package repository

import (
	"context"
	"encoding/json"
	"time"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/infra"
	"install-scheduler/internal/infra/db"
	"install-scheduler/internal/pkg/pgconv"
	"install-scheduler/internal/usecase/shared"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const appointmentsTable = "installation_appointments"

var AppointmentColumns = []string{
	"id",
	"order_id",
	"customer_id",
	"appointment_date",
	"time_slot_id",
	"estimated_duration_hours",
	"assigned_technician_id",
	"installation_type",
	"product_types",
	"room_count",
	"window_count",
	"special_requirements",
	"installation_address",
	"access_instructions",
	"parking_instructions",
	"contact_phone",
	"alternative_contact",
	"base_cost_cents",
	"labor_cost_cents",
	"premium_fee_cents",
	"travel_fee_cents",
	"status",
	"created_at",
	"updated_at",
}

type AppointmentRepository struct {
	db db.DBTX
}

func NewAppointmentRepository(dbtx db.DBTX) *AppointmentRepository {
	return &AppointmentRepository{db: dbtx}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	d := a.Details()
	addr, err := json.Marshal(d.Address)
	if err != nil {
		return infra.WrapRepoErr("failed to encode installation address", err, infra.KindDBFailure)
	}
	productTypes := d.ProductTypes
	if productTypes == nil {
		productTypes = []string{}
	}
	p := a.Price()

	query, args, err := db.Builder.Insert(appointmentsTable).
		Columns(append(AppointmentColumns, "total_cost_cents")...).
		Values(
			a.ID(),
			a.OrderID(),
			a.CustomerID(),
			pgconv.DateToPgtype(a.Date()),
			a.TimeSlotID(),
			a.EstimatedHours(),
			a.TechnicianID(),
			string(d.InstallationType),
			productTypes,
			d.RoomCount,
			d.WindowCount,
			d.SpecialRequirements,
			addr,
			d.AccessInstructions,
			d.ParkingInstructions,
			d.ContactPhone,
			d.AlternativeContact,
			p.Base.Cents(),
			p.Labor.Cents(),
			p.PremiumTime.Cents(),
			p.Travel.Cents(),
			a.Status().String(),
			a.CreatedAt(),
			a.UpdatedAt(),
			p.Total().Cents(),
		).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build appointment insert", err, infra.KindDBFailure)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create appointment", err)
	}
	return nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	query, args, err := db.Builder.Select(AppointmentColumns...).
		From(appointmentsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build appointment select", err, infra.KindDBFailure)
	}

	a, err := ScanAppointment(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("appointment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get appointment", err)
	}
	return a, nil
}

func (r *AppointmentRepository) ExistsActiveForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	query, args, err := db.Builder.Select("count(*)").
		From(appointmentsTable).
		Where(sq.Eq{"order_id": orderID}).
		Where(sq.NotEq{"status": appointment.StatusCancelled.String()}).
		ToSql()
	if err != nil {
		return false, infra.WrapRepoErr("failed to build order appointment check", err, infra.KindDBFailure)
	}

	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return false, infra.WrapRepoErr("failed to check order appointment", err)
	}
	return n > 0, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to appointment.Status, now time.Time) error {
	query, args, err := db.Builder.Update(appointmentsTable).
		Set("status", to.String()).
		Set("updated_at", now).
		Where(sq.Eq{"id": id, "status": from.String()}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build appointment status update", err, infra.KindDBFailure)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update appointment status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("appointment status no longer "+from.String(), nil, infra.KindConflict)
	}
	return nil
}

func (r *AppointmentRepository) UpdateSchedule(ctx context.Context, a *appointment.Appointment, expected appointment.Status) error {
	p := a.Price()
	query, args, err := db.Builder.Update(appointmentsTable).
		Set("appointment_date", pgconv.DateToPgtype(a.Date())).
		Set("time_slot_id", a.TimeSlotID()).
		Set("assigned_technician_id", a.TechnicianID()).
		Set("base_cost_cents", p.Base.Cents()).
		Set("labor_cost_cents", p.Labor.Cents()).
		Set("premium_fee_cents", p.PremiumTime.Cents()).
		Set("travel_fee_cents", p.Travel.Cents()).
		Set("total_cost_cents", p.Total().Cents()).
		Set("updated_at", a.UpdatedAt()).
		Where(sq.Eq{"id": a.ID(), "status": expected.String()}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build appointment reschedule", err, infra.KindDBFailure)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to reschedule appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("appointment status no longer "+expected.String(), nil, infra.KindConflict)
	}
	return nil
}

func (r *AppointmentRepository) CountActiveForSlot(ctx context.Context, key shared.SlotKey) (int, error) {
	query, args, err := db.Builder.Select("count(*)").
		From(appointmentsTable).
		Where(sq.Eq{
			"assigned_technician_id": key.TechnicianID,
			"appointment_date":       pgconv.DateToPgtype(key.Date),
			"time_slot_id":           key.TimeSlotID,
		}).
		Where(sq.NotEq{"status": appointment.StatusCancelled.String()}).
		ToSql()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to build slot count", err, infra.KindDBFailure)
	}

	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, infra.WrapRepoErr("failed to count slot appointments", err)
	}
	return int(n), nil
}

// ScanAppointment reads a row selected with AppointmentColumns.
func ScanAppointment(row pgx.Row) (*appointment.Appointment, error) {
	var (
		id, orderID, customerID, slotID, techID uuid.UUID
		date                                    pgtype.Date
		hours                                   pgtype.Numeric
		instType, status                        string
		d                                       appointment.Details
		roomCount, windowCount                  int32
		base, labor, premium, travel            int64
		createdAt, updatedAt                    time.Time
	)

	err := row.Scan(
		&id,
		&orderID,
		&customerID,
		&date,
		&slotID,
		&hours,
		&techID,
		&instType,
		&d.ProductTypes,
		&roomCount,
		&windowCount,
		&d.SpecialRequirements,
		&d.Address,
		&d.AccessInstructions,
		&d.ParkingInstructions,
		&d.ContactPhone,
		&d.AlternativeContact,
		&base,
		&labor,
		&premium,
		&travel,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	estimated, err := pgconv.Float64FromNumeric(hours)
	if err != nil {
		return nil, err
	}
	d.InstallationType = appointment.InstallationType(instType)
	d.RoomCount = int(roomCount)
	d.WindowCount = int(windowCount)

	return appointment.ReconstructAppointment(
		id, orderID, customerID,
		pgconv.DateFromPgtype(date),
		slotID,
		estimated,
		techID,
		d,
		appointment.PriceBreakdown{
			Base:        appointment.MoneyFromCents(base),
			Labor:       appointment.MoneyFromCents(labor),
			PremiumTime: appointment.MoneyFromCents(premium),
			Travel:      appointment.MoneyFromCents(travel),
		},
		appointment.Status(status),
		createdAt, updatedAt,
	), nil
}
