package response

import (
	"time"

	"install-scheduler/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type AddressResponse struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type TechnicianResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	SkillLevel    string    `json:"skill_level"`
	AverageRating float64   `json:"average_rating"`
}

type TimeSlotResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsPremium bool      `json:"is_premium"`
}

type PricingResponse struct {
	BaseCents        int64 `json:"base_cents"`
	LaborCents       int64 `json:"labor_cents"`
	PremiumTimeCents int64 `json:"premium_time_cents"`
	TravelCents      int64 `json:"travel_cents"`
	TotalCents       int64 `json:"total_cents"`
}

type AppointmentResponse struct {
	ID                     uuid.UUID          `json:"id"`
	OrderID                uuid.UUID          `json:"order_id"`
	CustomerID             uuid.UUID          `json:"customer_id"`
	AppointmentDate        string             `json:"appointment_date" copier:"-"`
	Status                 string             `json:"status"`
	EstimatedDurationHours float64            `json:"estimated_duration_hours"`
	InstallationType       string             `json:"installation_type"`
	ProductTypes           []string           `json:"product_types"`
	RoomCount              int                `json:"room_count"`
	WindowCount            int                `json:"window_count"`
	SpecialRequirements    string             `json:"special_requirements,omitempty"`
	Address                AddressResponse    `json:"installation_address"`
	AccessInstructions     string             `json:"access_instructions,omitempty"`
	ParkingInstructions    string             `json:"parking_instructions,omitempty"`
	ContactPhone           string             `json:"contact_phone"`
	AlternativeContact     string             `json:"alternative_contact,omitempty"`
	Technician             TechnicianResponse `json:"technician"`
	TimeSlot               TimeSlotResponse   `json:"time_slot"`
	Pricing                PricingResponse    `json:"pricing"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

type AppointmentListItemResponse struct {
	ID              uuid.UUID `json:"id"`
	OrderID         uuid.UUID `json:"order_id"`
	AppointmentDate string    `json:"appointment_date" copier:"-"`
	TimeSlotName    string    `json:"time_slot_name"`
	TechnicianID    uuid.UUID `json:"technician_id"`
	TechnicianName  string    `json:"technician_name"`
	Status          string    `json:"status"`
	TotalCents      int64     `json:"total_cents"`
	CreatedAt       time.Time `json:"created_at"`
}

type AppointmentListResponse struct {
	Items      []*AppointmentListItemResponse `json:"items"`
	NextCursor string                         `json:"next_cursor,omitempty"`
}

const dateLayout = "2006-01-02"

func FromAppointmentView(v *queries.AppointmentView) (*AppointmentResponse, error) {
	var res AppointmentResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	res.AppointmentDate = v.AppointmentDate.Format(dateLayout)
	if res.ProductTypes == nil {
		res.ProductTypes = []string{}
	}
	return &res, nil
}

func FromAppointmentList(items []*queries.AppointmentListItem, next *queries.Cursor) (*AppointmentListResponse, error) {
	res := &AppointmentListResponse{Items: make([]*AppointmentListItemResponse, len(items))}
	for i, it := range items {
		var item AppointmentListItemResponse
		if err := copier.Copy(&item, it); err != nil {
			return nil, err
		}
		item.AppointmentDate = it.AppointmentDate.Format(dateLayout)
		res.Items[i] = &item
	}
	if next != nil {
		res.NextCursor = next.After
	}
	return res, nil
}
