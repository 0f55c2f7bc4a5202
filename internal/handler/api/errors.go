package api

import (
	"errors"
	"net/http"

	"install-scheduler/internal/handler/httperr"
	"install-scheduler/internal/pkg/errs"
	"install-scheduler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{errs.ErrInvalidRequest, http.StatusBadRequest, "invalid_request", "Invalid request"},
	{errs.ErrLeadTimeViolation, http.StatusBadRequest, "lead_time_violation", "Appointment date is inside the booking lead time"},
	{errs.ErrSlotTooShort, http.StatusBadRequest, "slot_too_short", "Time slot is shorter than the estimated duration"},
	{errs.ErrInvalidSlot, http.StatusBadRequest, "invalid_slot", "Time slot not found or inactive"},
	{errs.ErrInvalidDateRange, http.StatusBadRequest, "invalid_date_range", "Invalid date range"},
	{queries.ErrInvalidCursor, http.StatusBadRequest, "invalid_cursor", "Invalid cursor"},
	{errs.ErrPermissionDenied, http.StatusForbidden, "permission_denied", "Permission denied"},
	{errs.ErrOrderNotFound, http.StatusNotFound, "order_not_found", "Order not found"},
	{errs.ErrAppointmentMissing, http.StatusNotFound, "appointment_not_found", "Appointment not found"},
	{errs.ErrAlreadyBooked, http.StatusConflict, "already_booked", "Order already has an active installation appointment"},
	{errs.ErrOrderNotEligible, http.StatusConflict, "order_not_eligible", "Order is not eligible for installation booking"},
	{errs.ErrNoCoverage, http.StatusConflict, "no_coverage", "No service area covers the installation address"},
	{errs.ErrTechUnavailable, http.StatusConflict, "technician_unavailable", "Preferred technician is not available"},
	{errs.ErrNoTechAvailable, http.StatusConflict, "no_technician_available", "No technician available for the requested date and slot"},
	{errs.ErrConcurrentBooking, http.StatusConflict, codeConcurrentBooking, "Technician capacity was taken by a concurrent booking, please retry"},
	{errs.ErrInvalidTransition, http.StatusConflict, "invalid_transition", "Invalid appointment status transition"},
	{errs.ErrNotReschedulable, http.StatusConflict, "not_reschedulable", "Appointment can no longer be rescheduled"},
}

// The only conflict a caller can resolve by resubmitting the same request.
const codeConcurrentBooking = "concurrent_booking_conflict"

// abortWithUseCaseError maps usecase sentinels to statuses; anything unmatched is a 500.
func abortWithUseCaseError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errs.Is(err, m.target) {
			resp := httperr.New(m.status, m.code, m.message)
			resp.Error.Retryable = m.code == codeConcurrentBooking
			httperr.Abort(c, err, resp)
			return
		}
	}
	if ctxErr := c.Request.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Request cancelled", nil)
		return
	}
	httperr.Abort(c, err, httperr.Internal())
}
