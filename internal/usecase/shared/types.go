package shared

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses that may still receive an installation booking.
var bookableOrderStatuses = map[string]struct{}{
	"pending":    {},
	"confirmed":  {},
	"processing": {},
}

// Write-side view of an order owned by the storefront.
type OrderSnapshot struct {
	ID                        uuid.UUID
	CustomerID                uuid.UUID
	Status                    string
	InstallationAppointmentID *uuid.UUID
}

func (o OrderSnapshot) Bookable() bool {
	_, ok := bookableOrderStatuses[o.Status]
	return ok
}

// SlotKey identifies one technician's capacity bucket.
type SlotKey struct {
	TechnicianID uuid.UUID
	Date         time.Time
	TimeSlotID   uuid.UUID
}
