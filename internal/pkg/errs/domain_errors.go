package errs

import "errors"

// Scheduling sentinel errors shared by the command and query sides.
// Handlers map them to HTTP statuses with errors.Is.
var (
	// Validation errors
	ErrInvalidRequest     = errors.New("invalid booking request")
	ErrLeadTimeViolation  = errors.New("appointment date is inside the booking lead time")
	ErrSlotTooShort       = errors.New("time slot is shorter than the estimated duration")
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrInvalidTransition  = errors.New("invalid appointment status transition")
	ErrNotReschedulable   = errors.New("appointment can no longer be rescheduled")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrOrderNotEligible   = errors.New("order is not eligible for installation booking")
	ErrInvalidSlot        = errors.New("time slot not found or inactive")
	ErrNoCoverage         = errors.New("no active service area covers the installation address")
	ErrAlreadyBooked      = errors.New("order already has an active installation appointment")
	ErrTechUnavailable    = errors.New("preferred technician is not available")
	ErrNoTechAvailable    = errors.New("no technician available for the requested date and slot")
	ErrConcurrentBooking  = errors.New("technician capacity was taken by a concurrent booking")
	ErrOrderNotFound      = errors.New("order not found")
	ErrAppointmentMissing = errors.New("appointment not found")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
