package queries

import (
	"context"
	"math"
	"time"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/domain/technician"
	"install-scheduler/internal/domain/timeslot"
	"install-scheduler/internal/pkg/clock"
	"install-scheduler/internal/pkg/config"
	"install-scheduler/internal/pkg/errs"
	"install-scheduler/internal/usecase/catalog"

	"github.com/google/uuid"
)

// SlotCell addresses one (technician, date, slot) capacity bucket in a load grid.
type SlotCell struct {
	TechnicianID uuid.UUID
	Date         time.Time
	TimeSlotID   uuid.UUID
}

type AvailabilityReadStore interface {
	TechniciansCoveringArea(ctx context.Context, areaID uuid.UUID) ([]technician.Technician, error)
	// LoadGrid returns loads for every cell in [from, to] that has appointments or a hold.
	LoadGrid(ctx context.Context, technicianIDs []uuid.UUID, from, to time.Time) (map[SlotCell]technician.Load, error)
}

type AvailabilityRequest struct {
	StartDate         string
	EndDate           string
	State             string
	EstimatedDuration float64
}

type AvailabilityResult struct {
	ServiceAreaID   uuid.UUID          `json:"service_area_id"`
	ServiceAreaName string             `json:"service_area_name"`
	DurationHours   float64            `json:"estimated_duration_hours"`
	Dates           []DateAvailability `json:"dates"`
}

type DateAvailability struct {
	Date  string             `json:"date"`
	Slots []SlotAvailability `json:"slots"`
}

type SlotAvailability struct {
	TimeSlot          TimeSlotSummary    `json:"time_slot"`
	DurationHours     float64            `json:"duration_hours"`
	EstimatedCents    int64              `json:"estimated_total_cents"`
	RemainingCapacity int                `json:"remaining_capacity"`
	Technicians       []TechnicianOption `json:"technicians"`
}

type TechnicianOption struct {
	TechnicianSummary
	AreaPriority        int `json:"area_priority"`
	CurrentAppointments int `json:"current_appointments"`
	Remaining           int `json:"remaining"`
}

type AvailabilityQueries interface {
	Search(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error)
}

type availabilityQueriesImpl struct {
	store           AvailabilityReadStore
	slots           catalog.TimeSlotCatalog
	areas           catalog.ServiceAreaResolver
	pricing         appointment.PriceCalculator
	clock           clock.Clock
	loc             *time.Location
	leadDays        int
	maxRangeDays    int
	defaultDuration float64
}

func NewAvailabilityQueries(
	store AvailabilityReadStore,
	slots catalog.TimeSlotCatalog,
	areas catalog.ServiceAreaResolver,
	pricing appointment.PriceCalculator,
	clk clock.Clock,
	cfg config.SchedulingConfig,
) AvailabilityQueries {
	return &availabilityQueriesImpl{
		store:           store,
		slots:           slots,
		areas:           areas,
		pricing:         pricing,
		clock:           clk,
		loc:             cfg.Location(),
		leadDays:        cfg.LeadTimeDays,
		maxRangeDays:    cfg.AvailabilityMaxRangeDays,
		defaultDuration: cfg.DefaultDurationHours,
	}
}

// Search lists bookable slots per date, ranking technicians the same way booking auto-selection does.
func (q *availabilityQueriesImpl) Search(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error) {
	start, end, err := q.parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	duration := req.EstimatedDuration
	if duration == 0 {
		duration = q.defaultDuration
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		return nil, errs.ErrInvalidRequest
	}

	area, err := q.areas.Resolve(ctx, req.State)
	if err != nil {
		return nil, err
	}

	result := &AvailabilityResult{
		ServiceAreaID:   area.ID,
		ServiceAreaName: area.Name,
		DurationHours:   duration,
		Dates:           []DateAvailability{},
	}

	first := clock.AddDays(clock.Today(q.clock, q.loc), q.leadDays)
	if start.Before(first) {
		start = first
	}
	if end.Before(start) {
		return result, nil
	}

	active, err := q.slots.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	slots := active[:0:0]
	for _, s := range active {
		if s.Fits(duration) {
			slots = append(slots, s)
		}
	}
	if len(slots) == 0 {
		return result, nil
	}

	techs, err := q.store.TechniciansCoveringArea(ctx, area.ID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if len(techs) == 0 {
		return result, nil
	}
	ids := make([]uuid.UUID, len(techs))
	for i, t := range techs {
		ids[i] = t.ID
	}

	grid, err := q.store.LoadGrid(ctx, ids, start, end)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	for d := start; !d.After(end); d = clock.AddDays(d, 1) {
		day := DateAvailability{Date: clock.FormatDate(d)}
		for _, slot := range slots {
			if !slot.AvailableOn(d) {
				continue
			}

			loads := make(map[uuid.UUID]technician.Load, len(techs))
			for _, id := range ids {
				if l, ok := grid[SlotCell{TechnicianID: id, Date: d, TimeSlotID: slot.ID}]; ok {
					loads[id] = l
				}
			}
			ranked := technician.Rank(techs, area.ID, loads)
			if len(ranked) == 0 {
				continue
			}

			price, err := q.pricing.Price(area, slot, duration)
			if err != nil {
				return nil, errs.Wrapf(err, "price service area %s", area.ID)
			}

			sa := SlotAvailability{
				TimeSlot:       toTimeSlotSummary(slot),
				DurationHours:  slot.DurationHours,
				EstimatedCents: price.Total().Cents(),
				Technicians:    make([]TechnicianOption, 0, len(ranked)),
			}
			for _, c := range ranked {
				sa.RemainingCapacity += c.Remaining()
				sa.Technicians = append(sa.Technicians, TechnicianOption{
					TechnicianSummary: TechnicianSummary{
						ID:            c.Technician.ID,
						Name:          c.Technician.Name,
						SkillLevel:    c.Technician.SkillLevel,
						AverageRating: c.Technician.AverageRating,
					},
					AreaPriority:        c.AreaPriority,
					CurrentAppointments: c.CurrentAppointments,
					Remaining:           c.Remaining(),
				})
			}
			day.Slots = append(day.Slots, sa)
		}
		if len(day.Slots) > 0 {
			result.Dates = append(result.Dates, day)
		}
	}
	return result, nil
}

func (q *availabilityQueriesImpl) parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := clock.ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errs.Mark(err, errs.ErrInvalidDateRange)
	}
	end, err := clock.ParseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errs.Mark(err, errs.ErrInvalidDateRange)
	}
	if end.Before(start) || start.Before(clock.Today(q.clock, q.loc)) {
		return time.Time{}, time.Time{}, errs.ErrInvalidDateRange
	}
	if end.Sub(start) > time.Duration(q.maxRangeDays)*24*time.Hour {
		return time.Time{}, time.Time{}, errs.ErrInvalidDateRange
	}
	return start, end, nil
}

func toTimeSlotSummary(s timeslot.TimeSlot) TimeSlotSummary {
	return TimeSlotSummary{ID: s.ID, Name: s.Name, Code: s.Code, StartTime: s.StartTime, EndTime: s.EndTime, IsPremium: s.IsPremium}
}
