package shared

import (
	"context"
	"time"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/domain/technician"
	"install-scheduler/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrTransactionBegin   = errs.New("failed to begin transaction")
	ErrTransactionCommit  = errs.New("failed to commit transaction")
	ErrMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type UnitOfWork interface {
	// Within: SERIALIZABLE transaction for write operations with retry on serialization failures
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: pool-backed reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Appointments() AppointmentRepository
	Technicians() TechnicianRepository
	Holds() HoldRepository
	Orders() OrderRepository
}

// CommandReads are the lookups the booking flow runs before opening the commit transaction.
type CommandReads interface {
	OrderByID(ctx context.Context, id uuid.UUID) (*OrderSnapshot, error)
	HasActiveAppointmentForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	AppointmentByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	TechnicianByID(ctx context.Context, id uuid.UUID) (*technician.Technician, error)
	TechniciansCoveringArea(ctx context.Context, areaID uuid.UUID) ([]technician.Technician, error)
	SlotLoads(ctx context.Context, technicianIDs []uuid.UUID, date time.Time, timeSlotID uuid.UUID) (map[uuid.UUID]technician.Load, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *appointment.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	ExistsActiveForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	// UpdateStatus applies from -> to only when the stored status is still from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to appointment.Status, now time.Time) error
	// UpdateSchedule writes date, slot, technician and price when the stored status is still expected.
	UpdateSchedule(ctx context.Context, a *appointment.Appointment, expected appointment.Status) error
	CountActiveForSlot(ctx context.Context, key SlotKey) (int, error)
}

type TechnicianRepository interface {
	// LockByID reads the technician row FOR UPDATE.
	LockByID(ctx context.Context, id uuid.UUID) (*technician.Technician, error)
	SlotLoad(ctx context.Context, key SlotKey) (technician.Load, error)
}

type HoldRepository interface {
	// Reserve upserts the hold row for key as booked.
	Reserve(ctx context.Context, key SlotKey) error
	// Release reopens a booked hold; explicit time off is left untouched.
	Release(ctx context.Context, key SlotKey) error
}

type OrderRepository interface {
	LinkAppointment(ctx context.Context, orderID, appointmentID uuid.UUID) error
	UnlinkAppointment(ctx context.Context, orderID, appointmentID uuid.UUID) error
}
