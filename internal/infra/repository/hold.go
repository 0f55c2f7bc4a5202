package repository

import (
	"context"

	"install-scheduler/internal/infra"
	"install-scheduler/internal/infra/db"
	"install-scheduler/internal/pkg/pgconv"
	"install-scheduler/internal/usecase/shared"

	sq "github.com/Masterminds/squirrel"
)

const (
	holdsTable = "technician_availability"
	// HoldReasonBooked marks rows written by bookings; other reasons are time off.
	HoldReasonBooked = "booked"
)

type HoldRepository struct {
	db db.DBTX
}

func NewHoldRepository(dbtx db.DBTX) *HoldRepository {
	return &HoldRepository{db: dbtx}
}

// Reserve never overwrites an explicit time-off row.
func (r *HoldRepository) Reserve(ctx context.Context, key shared.SlotKey) error {
	query, args, err := db.Builder.Insert(holdsTable).
		Columns("technician_id", "availability_date", "time_slot_id", "is_available", "reason").
		Values(key.TechnicianID, pgconv.DateToPgtype(key.Date), key.TimeSlotID, false, HoldReasonBooked).
		Suffix(`ON CONFLICT (technician_id, availability_date, time_slot_id) DO UPDATE
			SET is_available = false, reason = EXCLUDED.reason, updated_at = now()
			WHERE ` + holdsTable + `.is_available OR ` + holdsTable + `.reason = EXCLUDED.reason`).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build hold upsert", err, infra.KindDBFailure)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to reserve technician slot", err)
	}
	return nil
}

func (r *HoldRepository) Release(ctx context.Context, key shared.SlotKey) error {
	query, args, err := db.Builder.Update(holdsTable).
		Set("is_available", true).
		Set("reason", "").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{
			"technician_id":     key.TechnicianID,
			"availability_date": pgconv.DateToPgtype(key.Date),
			"time_slot_id":      key.TimeSlotID,
			"reason":            HoldReasonBooked,
		}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build hold release", err, infra.KindDBFailure)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to release technician slot", err)
	}
	return nil
}
