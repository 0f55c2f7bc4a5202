//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/domain/servicearea"
	"install-scheduler/internal/domain/technician"
	"install-scheduler/internal/domain/timeslot"
	"install-scheduler/internal/domain/user"
	"install-scheduler/internal/pkg/clock"
	"install-scheduler/internal/pkg/config"
	"install-scheduler/internal/usecase/catalog"
	"install-scheduler/internal/usecase/commands"
	"install-scheduler/internal/usecase/matching"
	"install-scheduler/internal/usecase/shared"
	"install-scheduler/tests/common/builder"
	"install-scheduler/tests/common/memstore"

	"github.com/google/uuid"
)

var bookingDate = time.Date(2030, 3, 11, 0, 0, 0, 0, time.UTC)

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

type recorder struct {
	mu          sync.Mutex
	bookings    []string
	transitions []string
}

func (r *recorder) ObserveBooking(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, result)
}

func (r *recorder) ObserveTransition(to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, to)
}

// schedulingFixture is one Northeast area with a morning and a premium evening slot.
type schedulingFixture struct {
	store    *memstore.Store
	recorder *recorder
	clock    *clock.MockClock
	cfg      config.SchedulingConfig

	area     servicearea.ServiceArea
	morning  timeslot.TimeSlot
	evening  timeslot.TimeSlot
	tech     technician.Technician
	customer user.Requester
	admin    user.Requester
	order    shared.OrderSnapshot
}

func newSchedulingFixture() *schedulingFixture {
	area := builder.NewServiceAreaBuilder().Build()
	f := &schedulingFixture{
		store:    memstore.New(),
		recorder: &recorder{},
		clock:    clock.NewMockClock(time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)),
		cfg: config.SchedulingConfig{
			TimeZone:                 "UTC",
			LeadTimeDays:             3,
			AvailabilityMaxRangeDays: 60,
			DefaultDurationHours:     2,
			TxMaxRetries:             3,
		},
		area:    area,
		morning: builder.NewTimeSlotBuilder().Build(),
		evening: builder.NewTimeSlotBuilder().With(func(s *timeslot.TimeSlot) {
			s.Name, s.Code, s.StartTime, s.EndTime, s.DurationHours, s.DisplayOrder = "Evening", "EVE", "17:00", "20:00", 3, 3
		}).AsPremium(2500).Build(),
		tech:     builder.NewTechnicianBuilder().WithPrimaryArea(area.ID).WithMaxJobs(1).Build(),
		customer: user.Requester{ID: uuid.New(), Role: user.RoleCustomer},
		admin:    user.Requester{ID: uuid.New(), Role: user.RoleAdmin},
	}
	f.order = shared.OrderSnapshot{ID: uuid.New(), CustomerID: f.customer.ID, Status: "confirmed"}
	f.store.AddOrder(f.order)
	f.store.AddTechnician(f.tech)
	return f
}

func (f *schedulingFixture) catalog() *catalog.Catalog {
	return catalog.NewCatalog(&catalogStore{
		slots: []timeslot.TimeSlot{f.morning, f.evening},
		areas: []servicearea.ServiceArea{f.area},
	}, missCache{})
}

func (f *schedulingFixture) booking() commands.BookingCommands {
	c := f.catalog()
	return commands.NewBookingUseCase(
		f.store, c, c,
		matching.NewMatcher(f.store.CommandReads()),
		appointment.NewDefaultPriceCalculator(),
		f.recorder, f.clock, f.cfg,
	)
}

func (f *schedulingFixture) lifecycle() commands.LifecycleCommands {
	c := f.catalog()
	return commands.NewLifecycleUseCase(
		f.store, c, c,
		matching.NewMatcher(f.store.CommandReads()),
		appointment.NewDefaultPriceCalculator(),
		f.recorder, f.clock, f.cfg,
	)
}

func (f *schedulingFixture) request() commands.BookingRequest {
	return commands.BookingRequest{
		OrderID:                f.order.ID,
		AppointmentDate:        "2030-03-11",
		TimeSlotID:             f.morning.ID,
		InstallationType:       "installation",
		EstimatedDurationHours: 2,
		ProductTypes:           []string{"blinds"},
		RoomCount:              2,
		WindowCount:            4,
		Address: commands.AddressInput{
			Line1:      "12 Main St",
			City:       "Albany",
			State:      "NY",
			PostalCode: "12207",
		},
		ContactPhone: "555-0199",
	}
}

func (f *schedulingFixture) slotKey(techID, slotID uuid.UUID, date time.Time) shared.SlotKey {
	return shared.SlotKey{TechnicianID: techID, Date: date, TimeSlotID: slotID}
}

// scheduled stores an active appointment for the fixture's order and technician.
func (f *schedulingFixture) scheduled(status appointment.Status) *appointment.Appointment {
	a := builder.NewAppointmentBuilder().With(func(b *builder.AppointmentBuilder) {
		b.OrderID = f.order.ID
		b.CustomerID = f.customer.ID
		b.TechnicianID = f.tech.ID
		b.TimeSlotID = f.morning.ID
		b.Date = bookingDate
		b.Status = status
	}).BuildDomain()
	f.store.PutAppointment(a)
	linked := f.order
	id := a.ID()
	linked.InstallationAppointmentID = &id
	f.store.AddOrder(linked)
	f.store.SetHold(f.slotKey(f.tech.ID, f.morning.ID, bookingDate), memstore.Hold{Available: false, Reason: "booked"})
	return a
}
