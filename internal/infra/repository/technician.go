package repository

import (
	"context"
	"time"

	"install-scheduler/internal/domain/technician"
	"install-scheduler/internal/infra"
	"install-scheduler/internal/infra/db"
	"install-scheduler/internal/pkg/pgconv"
	"install-scheduler/internal/usecase/shared"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const techniciansTable = "installation_technicians"

var TechnicianColumns = []string{
	"id",
	"name",
	"phone",
	"skill_level",
	"max_jobs_per_day",
	"primary_service_area_id",
	"secondary_service_areas",
	"availability_status",
	"average_rating",
	"is_active",
}

// SlotLoader computes a technician's load for one slot.
type SlotLoader interface {
	SlotLoads(ctx context.Context, technicianIDs []uuid.UUID, date time.Time, timeSlotID uuid.UUID) (map[uuid.UUID]technician.Load, error)
}

type TechnicianRepository struct {
	db    db.DBTX
	loads SlotLoader
}

func NewTechnicianRepository(dbtx db.DBTX, loads SlotLoader) *TechnicianRepository {
	return &TechnicianRepository{db: dbtx, loads: loads}
}

func (r *TechnicianRepository) LockByID(ctx context.Context, id uuid.UUID) (*technician.Technician, error) {
	query, args, err := db.Builder.Select(TechnicianColumns...).
		From(techniciansTable).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build technician lock", err, infra.KindDBFailure)
	}

	t, err := ScanTechnician(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("technician not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock technician", err)
	}
	return t, nil
}

func (r *TechnicianRepository) SlotLoad(ctx context.Context, key shared.SlotKey) (technician.Load, error) {
	loads, err := r.loads.SlotLoads(ctx, []uuid.UUID{key.TechnicianID}, key.Date, key.TimeSlotID)
	if err != nil {
		return technician.Load{}, err
	}
	return loads[key.TechnicianID], nil
}

// ScanTechnician reads a row selected with TechnicianColumns.
func ScanTechnician(row pgx.Row) (*technician.Technician, error) {
	var (
		t         technician.Technician
		maxJobs   int32
		secondary []pgtype.UUID
		status    string
		rating    pgtype.Numeric
	)

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Phone,
		&t.SkillLevel,
		&maxJobs,
		&t.PrimaryAreaID,
		&secondary,
		&status,
		&rating,
		&t.IsActive,
	)
	if err != nil {
		return nil, err
	}

	avg, err := pgconv.Float64FromNumeric(rating)
	if err != nil {
		return nil, err
	}
	t.MaxJobsPerDay = int(maxJobs)
	t.SecondaryAreaIDs = pgconv.UUIDsFromPgtype(secondary)
	t.Availability = technician.AvailabilityStatus(status)
	t.AverageRating = avg
	return &t, nil
}
