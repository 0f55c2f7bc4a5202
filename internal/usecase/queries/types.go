package queries

import (
	"time"

	"install-scheduler/internal/domain/appointment"

	"github.com/google/uuid"
)

// AppointmentView is the serialized appointment returned after booking and on detail reads.
type AppointmentView struct {
	ID                     uuid.UUID           `json:"id"`
	OrderID                uuid.UUID           `json:"order_id"`
	CustomerID             uuid.UUID           `json:"customer_id"`
	AppointmentDate        time.Time           `json:"appointment_date"`
	Status                 string              `json:"status"`
	EstimatedDurationHours float64             `json:"estimated_duration_hours"`
	InstallationType       string              `json:"installation_type"`
	ProductTypes           []string            `json:"product_types"`
	RoomCount              int                 `json:"room_count"`
	WindowCount            int                 `json:"window_count"`
	SpecialRequirements    string              `json:"special_requirements,omitempty"`
	Address                appointment.Address `json:"installation_address"`
	AccessInstructions     string              `json:"access_instructions,omitempty"`
	ParkingInstructions    string              `json:"parking_instructions,omitempty"`
	ContactPhone           string              `json:"contact_phone"`
	AlternativeContact     string              `json:"alternative_contact,omitempty"`
	Technician             TechnicianSummary   `json:"technician"`
	TimeSlot               TimeSlotSummary     `json:"time_slot"`
	Pricing                PricingView         `json:"pricing"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
}

type TechnicianSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	SkillLevel    string    `json:"skill_level"`
	AverageRating float64   `json:"average_rating"`
}

type TimeSlotSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsPremium bool      `json:"is_premium"`
}

type PricingView struct {
	BaseCents        int64 `json:"base_cents"`
	LaborCents       int64 `json:"labor_cents"`
	PremiumTimeCents int64 `json:"premium_time_cents"`
	TravelCents      int64 `json:"travel_cents"`
	TotalCents       int64 `json:"total_cents"`
}

type AppointmentListItem struct {
	ID              uuid.UUID `json:"id"`
	OrderID         uuid.UUID `json:"order_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	TimeSlotName    string    `json:"time_slot_name"`
	TechnicianID    uuid.UUID `json:"technician_id"`
	TechnicianName  string    `json:"technician_name"`
	Status          string    `json:"status"`
	TotalCents      int64     `json:"total_cents"`
	CreatedAt       time.Time `json:"created_at"`
}

type AppointmentFilters struct {
	OrderID      *uuid.UUID
	CustomerID   *uuid.UUID
	TechnicianID *uuid.UUID
	Status       *string
	DateFrom     *time.Time
	DateTo       *time.Time
}

// Keyset positions a page after (CreatedAt, ID) in descending order.
type Keyset struct {
	CreatedAt time.Time
	ID        uuid.UUID
}
