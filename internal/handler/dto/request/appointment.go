package request

import (
	"strings"

	"install-scheduler/internal/usecase/commands"

	"github.com/google/uuid"
)

type AddressRequest struct {
	Line1      string  `json:"line1" binding:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" binding:"required"`
	State      string  `json:"state" binding:"required"`
	PostalCode string  `json:"postal_code" binding:"required"`
	Country    *string `json:"country,omitempty"`
}

type BookAppointmentRequest struct {
	OrderID                uuid.UUID      `json:"order_id" binding:"required"`
	AppointmentDate        string         `json:"appointment_date" binding:"required"`
	TimeSlotID             uuid.UUID      `json:"time_slot_id" binding:"required"`
	InstallationType       string         `json:"installation_type" binding:"required"`
	EstimatedDurationHours float64        `json:"estimated_duration_hours" binding:"required,gt=0"`
	PreferredTechnicianID  *uuid.UUID     `json:"preferred_technician_id,omitempty"`
	ProductTypes           []string       `json:"product_types,omitempty"`
	RoomCount              int            `json:"room_count" binding:"min=0"`
	WindowCount            int            `json:"window_count" binding:"min=0"`
	SpecialRequirements    *string        `json:"special_requirements,omitempty"`
	InstallationAddress    AddressRequest `json:"installation_address" binding:"required"`
	AccessInstructions     *string        `json:"access_instructions,omitempty"`
	ParkingInstructions    *string        `json:"parking_instructions,omitempty"`
	ContactPhone           string         `json:"contact_phone" binding:"required"`
	AlternativeContact     *string        `json:"alternative_contact,omitempty"`
}

func (r BookAppointmentRequest) ToCommand() commands.BookingRequest {
	return commands.BookingRequest{
		OrderID:                r.OrderID,
		AppointmentDate:        strings.TrimSpace(r.AppointmentDate),
		TimeSlotID:             r.TimeSlotID,
		InstallationType:       strings.TrimSpace(r.InstallationType),
		EstimatedDurationHours: r.EstimatedDurationHours,
		PreferredTechnicianID:  r.PreferredTechnicianID,
		ProductTypes:           r.ProductTypes,
		RoomCount:              r.RoomCount,
		WindowCount:            r.WindowCount,
		SpecialRequirements:    optional(r.SpecialRequirements),
		Address: commands.AddressInput{
			Line1:      r.InstallationAddress.Line1,
			Line2:      optional(r.InstallationAddress.Line2),
			City:       r.InstallationAddress.City,
			State:      r.InstallationAddress.State,
			PostalCode: r.InstallationAddress.PostalCode,
			Country:    optional(r.InstallationAddress.Country),
		},
		AccessInstructions:  optional(r.AccessInstructions),
		ParkingInstructions: optional(r.ParkingInstructions),
		ContactPhone:        r.ContactPhone,
		AlternativeContact:  optional(r.AlternativeContact),
	}
}

type TransitionRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

type RescheduleRequest struct {
	AppointmentDate       string     `json:"appointment_date" binding:"required"`
	TimeSlotID            uuid.UUID  `json:"time_slot_id" binding:"required"`
	PreferredTechnicianID *uuid.UUID `json:"preferred_technician_id,omitempty"`
}

func (r RescheduleRequest) ToCommand() commands.RescheduleRequest {
	return commands.RescheduleRequest{
		AppointmentDate:       strings.TrimSpace(r.AppointmentDate),
		TimeSlotID:            r.TimeSlotID,
		PreferredTechnicianID: r.PreferredTechnicianID,
	}
}

// optional trims an omitted-or-present JSON string down to its value.
func optional(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
