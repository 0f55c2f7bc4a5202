package appointment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus           = errors.New("invalid appointment status")
	ErrInvalidTransition       = errors.New("invalid appointment status transition")
	ErrNotReschedulable        = errors.New("appointment cannot be rescheduled in its current status")
	ErrInvalidInstallationType = errors.New("invalid installation type")
	ErrInvalidAddress          = errors.New("installation address is incomplete")
	ErrInvalidCount            = errors.New("room and window counts cannot be negative")
	ErrContactRequired         = errors.New("contact phone is required")
	ErrInvalidDuration         = errors.New("estimated duration must be positive")
	ErrNegativePrice           = errors.New("price cannot be negative")
	ErrMissingReference        = errors.New("order, customer, slot and technician are required")
)

type Appointment struct {
	id             uuid.UUID
	orderID        uuid.UUID
	customerID     uuid.UUID
	date           time.Time
	timeSlotID     uuid.UUID
	estimatedHours float64
	technicianID   uuid.UUID
	details        Details
	price          PriceBreakdown
	status         Status
	createdAt      time.Time
	updatedAt      time.Time
}

type NewParams struct {
	OrderID        uuid.UUID
	CustomerID     uuid.UUID
	Date           time.Time
	TimeSlotID     uuid.UUID
	EstimatedHours float64
	TechnicianID   uuid.UUID
	Details        Details
	Price          PriceBreakdown
	Now            time.Time
}

func NewAppointment(p NewParams) (*Appointment, error) {
	if p.OrderID == uuid.Nil || p.CustomerID == uuid.Nil || p.TimeSlotID == uuid.Nil || p.TechnicianID == uuid.Nil {
		return nil, ErrMissingReference
	}
	if p.EstimatedHours <= 0 {
		return nil, ErrInvalidDuration
	}
	if err := p.Details.Validate(); err != nil {
		return nil, err
	}

	return &Appointment{
		id:             uuid.New(),
		orderID:        p.OrderID,
		customerID:     p.CustomerID,
		date:           p.Date,
		timeSlotID:     p.TimeSlotID,
		estimatedHours: p.EstimatedHours,
		technicianID:   p.TechnicianID,
		details:        p.Details,
		price:          p.Price,
		status:         StatusScheduled,
		createdAt:      p.Now,
		updatedAt:      p.Now,
	}, nil
}

func ReconstructAppointment(
	id, orderID, customerID uuid.UUID,
	date time.Time,
	timeSlotID uuid.UUID,
	estimatedHours float64,
	technicianID uuid.UUID,
	details Details,
	price PriceBreakdown,
	status Status,
	createdAt, updatedAt time.Time,
) *Appointment {
	return &Appointment{
		id:             id,
		orderID:        orderID,
		customerID:     customerID,
		date:           date,
		timeSlotID:     timeSlotID,
		estimatedHours: estimatedHours,
		technicianID:   technicianID,
		details:        details,
		price:          price,
		status:         status,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// TransitionTo applies a lifecycle move and returns the previous status.
func (a *Appointment) TransitionTo(next Status, now time.Time) (Status, error) {
	if !a.status.CanTransitionTo(next) {
		return a.status, ErrInvalidTransition
	}
	prev := a.status
	a.status = next
	a.updatedAt = now
	return prev, nil
}

func (a *Appointment) Reschedule(date time.Time, timeSlotID, technicianID uuid.UUID, price PriceBreakdown, now time.Time) error {
	if !a.status.Reschedulable() {
		return ErrNotReschedulable
	}
	a.date = date
	a.timeSlotID = timeSlotID
	a.technicianID = technicianID
	a.price = price
	a.updatedAt = now
	return nil
}

func (a *Appointment) IsActive() bool {
	return a.status.IsActive()
}

func (a *Appointment) ID() uuid.UUID           { return a.id }
func (a *Appointment) OrderID() uuid.UUID      { return a.orderID }
func (a *Appointment) CustomerID() uuid.UUID   { return a.customerID }
func (a *Appointment) Date() time.Time         { return a.date }
func (a *Appointment) TimeSlotID() uuid.UUID   { return a.timeSlotID }
func (a *Appointment) EstimatedHours() float64 { return a.estimatedHours }
func (a *Appointment) TechnicianID() uuid.UUID { return a.technicianID }
func (a *Appointment) Details() Details        { return a.details }
func (a *Appointment) Price() PriceBreakdown   { return a.price }
func (a *Appointment) Status() Status          { return a.status }
func (a *Appointment) CreatedAt() time.Time    { return a.createdAt }
func (a *Appointment) UpdatedAt() time.Time    { return a.updatedAt }
