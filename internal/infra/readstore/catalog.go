package readstore

import (
	"context"

	"install-scheduler/internal/domain/servicearea"
	"install-scheduler/internal/domain/timeslot"
	"install-scheduler/internal/infra"
	"install-scheduler/internal/infra/db"
	"install-scheduler/internal/pkg/pgconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
)

type CatalogReadStore struct {
	db db.DBTX
}

func NewCatalogReadStore(dbtx db.DBTX) *CatalogReadStore {
	return &CatalogReadStore{db: dbtx}
}

func (r *CatalogReadStore) ListActiveTimeSlots(ctx context.Context) ([]timeslot.TimeSlot, error) {
	query, args, err := db.Builder.Select(
		"id", "name", "code", "start_time", "end_time", "duration_hours",
		"is_premium", "premium_fee_cents", "is_active", "available_days", "display_order",
	).
		From("installation_time_slots").
		Where(sq.Eq{"is_active": true}).
		OrderBy("display_order", "id").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build time slot query", err, infra.KindDBFailure)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list time slots", err)
	}
	defer rows.Close()

	var out []timeslot.TimeSlot
	for rows.Next() {
		var (
			s            timeslot.TimeSlot
			duration     pgtype.Numeric
			days         []int16
			displayOrder int32
		)
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Code, &s.StartTime, &s.EndTime, &duration,
			&s.IsPremium, &s.PremiumFeeCents, &s.IsActive, &days, &displayOrder,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan time slot", err)
		}
		if s.DurationHours, err = pgconv.Float64FromNumeric(duration); err != nil {
			return nil, infra.WrapRepoErr("invalid time slot duration", err, infra.KindDBFailure)
		}
		s.AvailableDays = pgconv.WeekdaysFromInt16(days)
		s.DisplayOrder = int(displayOrder)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate time slots", err)
	}
	return out, nil
}

func (r *CatalogReadStore) ListActiveServiceAreas(ctx context.Context) ([]servicearea.ServiceArea, error) {
	query, args, err := db.Builder.Select(
		"id", "name", "covered_regions", "base_fee_cents", "per_hour_rate_cents", "travel_fee_cents", "is_active",
	).
		From("installation_service_areas").
		Where(sq.Eq{"is_active": true}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build service area query", err, infra.KindDBFailure)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list service areas", err)
	}
	defer rows.Close()

	var out []servicearea.ServiceArea
	for rows.Next() {
		var a servicearea.ServiceArea
		if err := rows.Scan(
			&a.ID, &a.Name, &a.CoveredRegions, &a.BaseFeeCents, &a.PerHourRateCents, &a.TravelFeeCents, &a.IsActive,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan service area", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate service areas", err)
	}
	return out, nil
}
