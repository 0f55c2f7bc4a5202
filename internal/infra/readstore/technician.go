package readstore

import (
	"context"
	"time"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/domain/technician"
	"install-scheduler/internal/infra"
	"install-scheduler/internal/infra/db"
	"install-scheduler/internal/infra/repository"
	"install-scheduler/internal/pkg/pgconv"
	"install-scheduler/internal/usecase/queries"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type TechnicianReadStore struct {
	db db.DBTX
}

func NewTechnicianReadStore(dbtx db.DBTX) *TechnicianReadStore {
	return &TechnicianReadStore{db: dbtx}
}

func (r *TechnicianReadStore) FindByID(ctx context.Context, id uuid.UUID) (*technician.Technician, error) {
	query, args, err := db.Builder.Select(repository.TechnicianColumns...).
		From("installation_technicians").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build technician select", err, infra.KindDBFailure)
	}

	t, err := repository.ScanTechnician(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("technician not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get technician", err)
	}
	return t, nil
}

// TechniciansCoveringArea returns active, available technicians whose primary or
// secondary areas include areaID, ordered by id.
func (r *TechnicianReadStore) TechniciansCoveringArea(ctx context.Context, areaID uuid.UUID) ([]technician.Technician, error) {
	query, args, err := db.Builder.Select(repository.TechnicianColumns...).
		From("installation_technicians").
		Where(sq.Eq{"is_active": true, "availability_status": string(technician.StatusAvailable)}).
		Where(sq.Or{
			sq.Eq{"primary_service_area_id": areaID},
			sq.Expr("? = ANY(secondary_service_areas)", pgconv.UUIDToPgtype(areaID)),
		}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build technician coverage query", err, infra.KindDBFailure)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list technicians for area", err)
	}
	defer rows.Close()

	var out []technician.Technician
	for rows.Next() {
		t, err := repository.ScanTechnician(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan technician", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate technicians", err)
	}
	return out, nil
}

// SlotLoads returns loads for one (date, slot); technicians without
// appointments or holds are absent from the map.
func (r *TechnicianReadStore) SlotLoads(ctx context.Context, technicianIDs []uuid.UUID, date time.Time, timeSlotID uuid.UUID) (map[uuid.UUID]technician.Load, error) {
	grid, err := r.loadGrid(ctx, technicianIDs, date, date, &timeSlotID)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]technician.Load, len(grid))
	for cell, l := range grid {
		out[cell.TechnicianID] = l
	}
	return out, nil
}

func (r *TechnicianReadStore) LoadGrid(ctx context.Context, technicianIDs []uuid.UUID, from, to time.Time) (map[queries.SlotCell]technician.Load, error) {
	return r.loadGrid(ctx, technicianIDs, from, to, nil)
}

func (r *TechnicianReadStore) loadGrid(ctx context.Context, technicianIDs []uuid.UUID, from, to time.Time, timeSlotID *uuid.UUID) (map[queries.SlotCell]technician.Load, error) {
	grid := make(map[queries.SlotCell]technician.Load)
	if len(technicianIDs) == 0 {
		return grid, nil
	}
	ids := pgconv.UUIDsToPgtype(technicianIDs)

	counts := db.Builder.Select("assigned_technician_id", "appointment_date", "time_slot_id", "count(*)").
		From("installation_appointments").
		Where(sq.Expr("assigned_technician_id = ANY(?)", ids)).
		Where(sq.GtOrEq{"appointment_date": pgconv.DateToPgtype(from)}).
		Where(sq.LtOrEq{"appointment_date": pgconv.DateToPgtype(to)}).
		Where(sq.NotEq{"status": appointment.StatusCancelled.String()}).
		GroupBy("assigned_technician_id", "appointment_date", "time_slot_id")
	if timeSlotID != nil {
		counts = counts.Where(sq.Eq{"time_slot_id": *timeSlotID})
	}
	if err := r.scanCounts(ctx, counts, grid); err != nil {
		return nil, err
	}

	holds := db.Builder.Select("technician_id", "availability_date", "time_slot_id", "is_available", "reason", "max_jobs_override").
		From("technician_availability").
		Where(sq.Expr("technician_id = ANY(?)", ids)).
		Where(sq.GtOrEq{"availability_date": pgconv.DateToPgtype(from)}).
		Where(sq.LtOrEq{"availability_date": pgconv.DateToPgtype(to)})
	if timeSlotID != nil {
		holds = holds.Where(sq.Eq{"time_slot_id": *timeSlotID})
	}
	if err := r.scanHolds(ctx, holds, grid); err != nil {
		return nil, err
	}
	return grid, nil
}

func (r *TechnicianReadStore) scanCounts(ctx context.Context, b sq.SelectBuilder, grid map[queries.SlotCell]technician.Load) error {
	query, args, err := b.ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build slot count query", err, infra.KindDBFailure)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to count slot appointments", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cell queries.SlotCell
			date pgtype.Date
			n    int64
		)
		if err := rows.Scan(&cell.TechnicianID, &date, &cell.TimeSlotID, &n); err != nil {
			return infra.WrapRepoErr("failed to scan slot count", err)
		}
		cell.Date = pgconv.DateFromPgtype(date)
		l := grid[cell]
		l.Current = int(n)
		grid[cell] = l
	}
	if err := rows.Err(); err != nil {
		return infra.WrapRepoErr("failed to iterate slot counts", err)
	}
	return nil
}

func (r *TechnicianReadStore) scanHolds(ctx context.Context, b sq.SelectBuilder, grid map[queries.SlotCell]technician.Load) error {
	query, args, err := b.ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build hold query", err, infra.KindDBFailure)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to read technician holds", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cell      queries.SlotCell
			date      pgtype.Date
			available bool
			reason    string
			override  pgtype.Int4
		)
		if err := rows.Scan(&cell.TechnicianID, &date, &cell.TimeSlotID, &available, &reason, &override); err != nil {
			return infra.WrapRepoErr("failed to scan technician hold", err)
		}
		cell.Date = pgconv.DateFromPgtype(date)
		l := grid[cell]
		l.CapacityOverride = pgconv.IntFromPgtype(override)
		l.Blocked = !available && reason != repository.HoldReasonBooked
		grid[cell] = l
	}
	if err := rows.Err(); err != nil {
		return infra.WrapRepoErr("failed to iterate technician holds", err)
	}
	return nil
}
