//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/domain/servicearea"
	"install-scheduler/internal/domain/technician"
	"install-scheduler/internal/domain/timeslot"
	"install-scheduler/internal/pkg/clock"
	"install-scheduler/internal/pkg/config"
	"install-scheduler/internal/pkg/errs"
	"install-scheduler/internal/usecase/catalog"
	"install-scheduler/internal/usecase/queries"
	"install-scheduler/internal/usecase/shared"
	"install-scheduler/tests/common/builder"
	"install-scheduler/tests/common/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogStore struct {
	slots []timeslot.TimeSlot
	areas []servicearea.ServiceArea
}

func (s *catalogStore) ListActiveTimeSlots(context.Context) ([]timeslot.TimeSlot, error) {
	return s.slots, nil
}

func (s *catalogStore) ListActiveServiceAreas(context.Context) ([]servicearea.ServiceArea, error) {
	return s.areas, nil
}

type missCache struct{}

func (missCache) Get(context.Context, string, any) error  { return catalog.ErrCacheMiss }
func (missCache) Set(context.Context, string, any) error  { return nil }
func (missCache) Delete(context.Context, ...string) error { return nil }

type availabilityFixture struct {
	store   *memstore.Store
	area    servicearea.ServiceArea
	morning timeslot.TimeSlot
	evening timeslot.TimeSlot
	tech    technician.Technician
}

func newAvailabilityFixture() *availabilityFixture {
	area := builder.NewServiceAreaBuilder().Build()
	f := &availabilityFixture{
		store:   memstore.New(),
		area:    area,
		morning: builder.NewTimeSlotBuilder().Build(),
		evening: builder.NewTimeSlotBuilder().With(func(s *timeslot.TimeSlot) {
			s.Name, s.Code, s.DurationHours, s.DisplayOrder = "Evening", "EVE", 3, 3
		}).AsPremium(2500).Build(),
		tech: builder.NewTechnicianBuilder().WithPrimaryArea(area.ID).WithMaxJobs(1).Build(),
	}
	f.store.AddTechnician(f.tech)
	return f
}

func (f *availabilityFixture) queries() queries.AvailabilityQueries {
	c := catalog.NewCatalog(&catalogStore{
		slots: []timeslot.TimeSlot{f.morning, f.evening},
		areas: []servicearea.ServiceArea{f.area},
	}, missCache{})
	return queries.NewAvailabilityQueries(
		f.store, c, c,
		appointment.NewDefaultPriceCalculator(),
		clock.NewMockClock(time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)),
		config.SchedulingConfig{TimeZone: "UTC", LeadTimeDays: 3, AvailabilityMaxRangeDays: 60, DefaultDurationHours: 2},
	)
}

func (f *availabilityFixture) book(date time.Time, slot timeslot.TimeSlot) {
	f.store.PutAppointment(builder.NewAppointmentBuilder().With(func(b *builder.AppointmentBuilder) {
		b.TechnicianID, b.TimeSlotID, b.Date = f.tech.ID, slot.ID, date
	}).BuildDomain())
}

func slotCodes(d queries.DateAvailability) []string {
	out := make([]string, len(d.Slots))
	for i, s := range d.Slots {
		out[i] = s.TimeSlot.Code
	}
	return out
}

// =============================================================================
// Search
// =============================================================================

func TestAvailability_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("success: clamps to lead time and drops full slots", func(t *testing.T) {
		f := newAvailabilityFixture()
		f.book(time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC), f.morning)

		res, err := f.queries().Search(ctx, queries.AvailabilityRequest{
			StartDate: "2030-03-01",
			EndDate:   "2030-03-05",
			State:     "ny",
		})
		require.NoError(t, err)

		assert.Equal(t, f.area.ID, res.ServiceAreaID)
		assert.Equal(t, 2.0, res.DurationHours)
		require.Len(t, res.Dates, 2)
		assert.Equal(t, "2030-03-04", res.Dates[0].Date)
		assert.Equal(t, []string{"EVE"}, slotCodes(res.Dates[0]))
		assert.Equal(t, "2030-03-05", res.Dates[1].Date)
		assert.Equal(t, []string{"AM", "EVE"}, slotCodes(res.Dates[1]))

		am := res.Dates[1].Slots[0]
		assert.Equal(t, int64(15500), am.EstimatedCents)
		assert.Equal(t, 1, am.RemainingCapacity)
		require.Len(t, am.Technicians, 1)
		assert.Equal(t, f.tech.ID, am.Technicians[0].ID)
		assert.Equal(t, technician.PriorityPrimary, am.Technicians[0].AreaPriority)
		assert.Equal(t, int64(18000), res.Dates[1].Slots[1].EstimatedCents)
	})

	t.Run("success: long jobs only see long slots", func(t *testing.T) {
		f := newAvailabilityFixture()

		res, err := f.queries().Search(ctx, queries.AvailabilityRequest{
			StartDate:         "2030-03-05",
			EndDate:           "2030-03-05",
			State:             "NY",
			EstimatedDuration: 3.5,
		})
		require.NoError(t, err)
		require.Len(t, res.Dates, 1)
		assert.Equal(t, []string{"AM"}, slotCodes(res.Dates[0]))
	})

	t.Run("success: time off removes the slot", func(t *testing.T) {
		f := newAvailabilityFixture()
		date := time.Date(2030, 3, 5, 0, 0, 0, 0, time.UTC)
		f.store.SetHold(shared.SlotKey{TechnicianID: f.tech.ID, Date: date, TimeSlotID: f.evening.ID},
			memstore.Hold{Available: false, Reason: "time_off"})

		res, err := f.queries().Search(ctx, queries.AvailabilityRequest{StartDate: "2030-03-05", EndDate: "2030-03-05", State: "NY"})
		require.NoError(t, err)
		require.Len(t, res.Dates, 1)
		assert.Equal(t, []string{"AM"}, slotCodes(res.Dates[0]))
	})

	t.Run("success: range entirely inside lead time is empty", func(t *testing.T) {
		f := newAvailabilityFixture()

		res, err := f.queries().Search(ctx, queries.AvailabilityRequest{StartDate: "2030-03-01", EndDate: "2030-03-03", State: "NY"})
		require.NoError(t, err)
		assert.Empty(t, res.Dates)
	})

	testCases := []struct {
		name    string
		req     queries.AvailabilityRequest
		wantErr error
	}{
		{name: "malformed start", req: queries.AvailabilityRequest{StartDate: "03/05/2030", EndDate: "2030-03-06", State: "NY"}, wantErr: errs.ErrInvalidDateRange},
		{name: "start in the past", req: queries.AvailabilityRequest{StartDate: "2030-02-28", EndDate: "2030-03-06", State: "NY"}, wantErr: errs.ErrInvalidDateRange},
		{name: "end before start", req: queries.AvailabilityRequest{StartDate: "2030-03-06", EndDate: "2030-03-05", State: "NY"}, wantErr: errs.ErrInvalidDateRange},
		{name: "range too wide", req: queries.AvailabilityRequest{StartDate: "2030-03-05", EndDate: "2030-05-05", State: "NY"}, wantErr: errs.ErrInvalidDateRange},
		{name: "negative duration", req: queries.AvailabilityRequest{StartDate: "2030-03-05", EndDate: "2030-03-06", State: "NY", EstimatedDuration: -1}, wantErr: errs.ErrInvalidRequest},
		{name: "uncovered state", req: queries.AvailabilityRequest{StartDate: "2030-03-05", EndDate: "2030-03-06", State: "TX"}, wantErr: errs.ErrNoCoverage},
	}

	for _, tc := range testCases {
		t.Run("error: "+tc.name, func(t *testing.T) {
			res, err := newAvailabilityFixture().queries().Search(ctx, tc.req)
			assert.Nil(t, res)
			assert.True(t, errs.Is(err, tc.wantErr), "expected %v but got %v", tc.wantErr, err)
		})
	}
}
