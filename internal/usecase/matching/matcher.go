package matching

import (
	"context"
	"log/slog"
	"time"

	"install-scheduler/internal/domain/technician"
	"install-scheduler/internal/infra"
	"install-scheduler/internal/pkg/clock"
	"install-scheduler/internal/pkg/errs"

	"github.com/google/uuid"
)

// Reads is the technician state a selection is computed from.
type Reads interface {
	TechnicianByID(ctx context.Context, id uuid.UUID) (*technician.Technician, error)
	TechniciansCoveringArea(ctx context.Context, areaID uuid.UUID) ([]technician.Technician, error)
	SlotLoads(ctx context.Context, technicianIDs []uuid.UUID, date time.Time, timeSlotID uuid.UUID) (map[uuid.UUID]technician.Load, error)
}

type Selection struct {
	Date          time.Time
	TimeSlotID    uuid.UUID
	AreaID        uuid.UUID
	DurationHours float64
}

type Matcher interface {
	ValidatePreferred(ctx context.Context, technicianID uuid.UUID, sel Selection) (technician.Candidate, error)
	AutoSelect(ctx context.Context, sel Selection) (technician.Candidate, error)
	Ranked(ctx context.Context, sel Selection) ([]technician.Candidate, error)
}

type matcherImpl struct {
	reads Reads
}

func NewMatcher(reads Reads) Matcher {
	return &matcherImpl{reads: reads}
}

func (m *matcherImpl) ValidatePreferred(ctx context.Context, technicianID uuid.UUID, sel Selection) (technician.Candidate, error) {
	tech, err := m.reads.TechnicianByID(ctx, technicianID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return technician.Candidate{}, errs.ErrTechUnavailable
		}
		return technician.Candidate{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	priority, covers := tech.AreaPriority(sel.AreaID)
	if !covers {
		return technician.Candidate{}, errs.ErrTechUnavailable
	}

	loads, err := m.reads.SlotLoads(ctx, []uuid.UUID{tech.ID}, sel.Date, sel.TimeSlotID)
	if err != nil {
		return technician.Candidate{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	load := loads[tech.ID]
	if !tech.Accepts(load) {
		return technician.Candidate{}, errs.ErrTechUnavailable
	}

	return technician.Candidate{
		Technician:          *tech,
		AreaPriority:        priority,
		CurrentAppointments: load.Current,
		Capacity:            tech.CapacityFor(load),
	}, nil
}

func (m *matcherImpl) AutoSelect(ctx context.Context, sel Selection) (technician.Candidate, error) {
	ranked, err := m.Ranked(ctx, sel)
	if err != nil {
		return technician.Candidate{}, err
	}
	if len(ranked) == 0 {
		slog.InfoContext(ctx, "no technician available",
			"date", clock.FormatDate(sel.Date),
			"time_slot_id", sel.TimeSlotID.String(),
			"area_id", sel.AreaID.String(),
			"duration_hours", sel.DurationHours)
		return technician.Candidate{}, errs.ErrNoTechAvailable
	}
	return ranked[0], nil
}

func (m *matcherImpl) Ranked(ctx context.Context, sel Selection) ([]technician.Candidate, error) {
	techs, err := m.reads.TechniciansCoveringArea(ctx, sel.AreaID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if len(techs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(techs))
	for i, t := range techs {
		ids[i] = t.ID
	}
	loads, err := m.reads.SlotLoads(ctx, ids, sel.Date, sel.TimeSlotID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return technician.Rank(techs, sel.AreaID, loads), nil
}
