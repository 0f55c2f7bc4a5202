//go:build unit || e2e

package builder

import (
	"time"

	"install-scheduler/internal/domain/appointment"
	reqdto "install-scheduler/internal/handler/dto/request"
	"install-scheduler/internal/usecase/queries"

	"github.com/google/uuid"
)

type AppointmentBuilder struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	CustomerID     uuid.UUID
	Date           time.Time
	TimeSlotID     uuid.UUID
	TechnicianID   uuid.UUID
	EstimatedHours float64
	Details        appointment.Details
	Price          appointment.PriceBreakdown
	Status         appointment.Status
	CreatedAt      time.Time
}

func NewAppointmentBuilder() *AppointmentBuilder {
	now := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)
	return &AppointmentBuilder{
		ID:             uuid.New(),
		OrderID:        uuid.New(),
		CustomerID:     uuid.New(),
		Date:           time.Date(2030, 3, 11, 0, 0, 0, 0, time.UTC),
		TimeSlotID:     uuid.New(),
		TechnicianID:   uuid.New(),
		EstimatedHours: 2,
		Details: appointment.Details{
			InstallationType: appointment.TypeInstallation,
			ProductTypes:     []string{"blinds"},
			RoomCount:        2,
			WindowCount:      4,
			Address: appointment.Address{
				Line1:      "12 Main St",
				City:       "Albany",
				State:      "NY",
				PostalCode: "12207",
				Country:    "US",
			},
			ContactPhone: "555-0199",
		},
		Price: appointment.PriceBreakdown{
			Base:   appointment.MoneyFromCents(5000),
			Labor:  appointment.MoneyFromCents(9000),
			Travel: appointment.MoneyFromCents(1500),
		},
		Status:    appointment.StatusScheduled,
		CreatedAt: now,
	}
}

func (b *AppointmentBuilder) With(mutate func(*AppointmentBuilder)) *AppointmentBuilder {
	mutate(b)
	return b
}

func (b *AppointmentBuilder) WithStatus(s appointment.Status) *AppointmentBuilder {
	b.Status = s
	return b
}

func (b *AppointmentBuilder) WithTechnician(id uuid.UUID) *AppointmentBuilder {
	b.TechnicianID = id
	return b
}

func (b *AppointmentBuilder) WithCustomer(id uuid.UUID) *AppointmentBuilder {
	b.CustomerID = id
	return b
}

func (b *AppointmentBuilder) BuildDomain() *appointment.Appointment {
	return appointment.ReconstructAppointment(
		b.ID, b.OrderID, b.CustomerID,
		b.Date,
		b.TimeSlotID,
		b.EstimatedHours,
		b.TechnicianID,
		b.Details,
		b.Price,
		b.Status,
		b.CreatedAt, b.CreatedAt,
	)
}

func (b *AppointmentBuilder) BuildBookingRequestDTO() reqdto.BookAppointmentRequest {
	return reqdto.BookAppointmentRequest{
		OrderID:                b.OrderID,
		AppointmentDate:        b.Date.Format("2006-01-02"),
		TimeSlotID:             b.TimeSlotID,
		InstallationType:       string(b.Details.InstallationType),
		EstimatedDurationHours: b.EstimatedHours,
		ProductTypes:           b.Details.ProductTypes,
		RoomCount:              b.Details.RoomCount,
		WindowCount:            b.Details.WindowCount,
		InstallationAddress: reqdto.AddressRequest{
			Line1:      b.Details.Address.Line1,
			City:       b.Details.Address.City,
			State:      b.Details.Address.State,
			PostalCode: b.Details.Address.PostalCode,
		},
		ContactPhone: b.Details.ContactPhone,
	}
}

func (b *AppointmentBuilder) BuildView() *queries.AppointmentView {
	return &queries.AppointmentView{
		ID:                     b.ID,
		OrderID:                b.OrderID,
		CustomerID:             b.CustomerID,
		AppointmentDate:        b.Date,
		Status:                 b.Status.String(),
		EstimatedDurationHours: b.EstimatedHours,
		InstallationType:       string(b.Details.InstallationType),
		ProductTypes:           b.Details.ProductTypes,
		RoomCount:              b.Details.RoomCount,
		WindowCount:            b.Details.WindowCount,
		Address:                b.Details.Address,
		ContactPhone:           b.Details.ContactPhone,
		Technician: queries.TechnicianSummary{
			ID:            b.TechnicianID,
			Name:          "Alex Rivera",
			SkillLevel:    "senior",
			AverageRating: 4.5,
		},
		TimeSlot: queries.TimeSlotSummary{
			ID:        b.TimeSlotID,
			Name:      "Morning",
			Code:      "AM",
			StartTime: "08:00",
			EndTime:   "12:00",
		},
		Pricing: queries.PricingView{
			BaseCents:        b.Price.Base.Cents(),
			LaborCents:       b.Price.Labor.Cents(),
			PremiumTimeCents: b.Price.PremiumTime.Cents(),
			TravelCents:      b.Price.Travel.Cents(),
			TotalCents:       b.Price.Total().Cents(),
		},
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.CreatedAt,
	}
}

func (b *AppointmentBuilder) BuildListItem() *queries.AppointmentListItem {
	return &queries.AppointmentListItem{
		ID:              b.ID,
		OrderID:         b.OrderID,
		AppointmentDate: b.Date,
		TimeSlotName:    "Morning",
		TechnicianID:    b.TechnicianID,
		TechnicianName:  "Alex Rivera",
		Status:          b.Status.String(),
		TotalCents:      b.Price.Total().Cents(),
		CreatedAt:       b.CreatedAt,
	}
}
