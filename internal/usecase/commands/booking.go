package commands

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/domain/servicearea"
	"install-scheduler/internal/domain/technician"
	"install-scheduler/internal/domain/timeslot"
	"install-scheduler/internal/domain/user"
	"install-scheduler/internal/infra"
	"install-scheduler/internal/pkg/clock"
	"install-scheduler/internal/pkg/config"
	"install-scheduler/internal/pkg/errs"
	"install-scheduler/internal/usecase/catalog"
	"install-scheduler/internal/usecase/matching"
	"install-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

// Outcome labels for booking metrics.
const (
	OutcomeBooked     = "booked"
	OutcomeInvalid    = "invalid"
	OutcomeRejected   = "rejected"
	OutcomeConflict   = "concurrent_conflict"
	OutcomeFailure    = "error"
	bookingLogMessage = "installation booking"
)

// Recorder receives command outcomes for metrics.
type Recorder interface {
	ObserveBooking(result string)
	ObserveTransition(to string)
}

type BookingRequest struct {
	OrderID                uuid.UUID
	AppointmentDate        string
	TimeSlotID             uuid.UUID
	InstallationType       string
	EstimatedDurationHours float64
	PreferredTechnicianID  *uuid.UUID
	ProductTypes           []string
	RoomCount              int
	WindowCount            int
	SpecialRequirements    string
	Address                AddressInput
	AccessInstructions     string
	ParkingInstructions    string
	ContactPhone           string
	AlternativeContact     string
}

type AddressInput struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type BookingResult struct {
	AppointmentID uuid.UUID
	TechnicianID  uuid.UUID
	Total         int64
}

type BookingCommands interface {
	Book(ctx context.Context, req BookingRequest, requester user.Requester) (*BookingResult, error)
}

type bookingUseCaseImpl struct {
	uow      shared.UnitOfWork
	slots    catalog.TimeSlotCatalog
	areas    catalog.ServiceAreaResolver
	matcher  matching.Matcher
	pricing  appointment.PriceCalculator
	recorder Recorder
	clock    clock.Clock
	loc      *time.Location
	leadDays int
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	slots catalog.TimeSlotCatalog,
	areas catalog.ServiceAreaResolver,
	matcher matching.Matcher,
	pricing appointment.PriceCalculator,
	recorder Recorder,
	clk clock.Clock,
	cfg config.SchedulingConfig,
) BookingCommands {
	return &bookingUseCaseImpl{
		uow:      uow,
		slots:    slots,
		areas:    areas,
		matcher:  matcher,
		pricing:  pricing,
		recorder: recorder,
		clock:    clk,
		loc:      cfg.Location(),
		leadDays: cfg.LeadTimeDays,
	}
}

// validated carries everything resolved before the commit transaction.
type validated struct {
	// customerID is the order owner, not necessarily the requester.
	customerID uuid.UUID
	date       time.Time
	details    appointment.Details
	slot       timeslot.TimeSlot
	area       servicearea.ServiceArea
	tech       technician.Candidate
	price      appointment.PriceBreakdown
}

func (uc *bookingUseCaseImpl) Book(ctx context.Context, req BookingRequest, requester user.Requester) (*BookingResult, error) {
	res, err := uc.book(ctx, req, requester)
	outcome := bookingOutcome(err)
	uc.recorder.ObserveBooking(outcome)

	switch outcome {
	case OutcomeBooked:
		slog.InfoContext(ctx, bookingLogMessage+" committed",
			"order_id", req.OrderID.String(),
			"appointment_id", res.AppointmentID.String(),
			"technician_id", res.TechnicianID.String())
	case OutcomeFailure:
		slog.ErrorContext(ctx, bookingLogMessage+" failed",
			"order_id", req.OrderID.String(),
			"error", err.Error())
	default:
		slog.WarnContext(ctx, bookingLogMessage+" rejected",
			"order_id", req.OrderID.String(),
			"outcome", outcome,
			"error", err.Error())
	}
	return res, err
}

func (uc *bookingUseCaseImpl) book(ctx context.Context, req BookingRequest, requester user.Requester) (*BookingResult, error) {
	v, err := uc.validate(ctx, req, requester)
	if err != nil {
		return nil, err
	}

	appt, err := appointment.NewAppointment(appointment.NewParams{
		OrderID:        req.OrderID,
		CustomerID:     v.customerID,
		Date:           v.date,
		TimeSlotID:     v.slot.ID,
		EstimatedHours: req.EstimatedDurationHours,
		TechnicianID:   v.tech.Technician.ID,
		Details:        v.details,
		Price:          v.price,
		Now:            uc.clock.Now(),
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidRequest)
	}

	key := shared.SlotKey{TechnicianID: appt.TechnicianID(), Date: v.date, TimeSlotID: v.slot.ID}
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return commitBooking(ctx, tx, appt, key, v.area.ID)
	})
	if err != nil {
		return nil, classifyCommitError(err)
	}

	return &BookingResult{
		AppointmentID: appt.ID(),
		TechnicianID:  appt.TechnicianID(),
		Total:         appt.Price().Total().Cents(),
	}, nil
}

// validate runs the pre-commit checks in order; the first failure wins.
func (uc *bookingUseCaseImpl) validate(ctx context.Context, req BookingRequest, requester user.Requester) (*validated, error) {
	date, details, err := parseBookingRequest(req)
	if err != nil {
		return nil, err
	}

	if err := checkLeadTime(date, clock.Today(uc.clock, uc.loc), uc.leadDays); err != nil {
		return nil, err
	}

	reads := uc.uow.CommandReads()
	order, err := reads.OrderByID(ctx, req.OrderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrOrderNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !requester.CanActFor(order.CustomerID) {
		return nil, errs.ErrOrderNotFound
	}
	if !order.Bookable() {
		return nil, errs.ErrOrderNotEligible
	}

	booked, err := reads.HasActiveAppointmentForOrder(ctx, req.OrderID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if booked {
		return nil, errs.ErrAlreadyBooked
	}

	slot, err := uc.slots.GetActiveSlot(ctx, req.TimeSlotID)
	if err != nil {
		return nil, err
	}
	if !slot.Fits(req.EstimatedDurationHours) {
		return nil, errs.ErrSlotTooShort
	}

	area, err := uc.areas.Resolve(ctx, details.Address.Region())
	if err != nil {
		return nil, err
	}

	sel := matching.Selection{
		Date:          date,
		TimeSlotID:    slot.ID,
		AreaID:        area.ID,
		DurationHours: req.EstimatedDurationHours,
	}
	var tech technician.Candidate
	if req.PreferredTechnicianID != nil {
		tech, err = uc.matcher.ValidatePreferred(ctx, *req.PreferredTechnicianID, sel)
	} else {
		tech, err = uc.matcher.AutoSelect(ctx, sel)
	}
	if err != nil {
		return nil, err
	}

	price, err := uc.pricing.Price(area, slot, req.EstimatedDurationHours)
	if err != nil {
		return nil, errs.Wrapf(err, "price service area %s", area.ID)
	}

	return &validated{
		customerID: order.CustomerID,
		date:       date,
		details:    details,
		slot:       slot,
		area:       area,
		tech:       tech,
		price:      price,
	}, nil
}

// commitBooking re-checks the order and technician capacity under lock, then
// writes the appointment, the order link and the hold together.
func commitBooking(ctx context.Context, tx shared.Tx, appt *appointment.Appointment, key shared.SlotKey, areaID uuid.UUID) error {
	exists, err := tx.Appointments().ExistsActiveForOrder(ctx, appt.OrderID())
	if err != nil {
		return err
	}
	if exists {
		return errs.ErrAlreadyBooked
	}

	tech, err := tx.Technicians().LockByID(ctx, key.TechnicianID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrConcurrentBooking
		}
		return err
	}
	if !tech.Covers(areaID) {
		return errs.ErrConcurrentBooking
	}

	load, err := tx.Technicians().SlotLoad(ctx, key)
	if err != nil {
		return err
	}
	if !tech.Accepts(load) {
		return errs.ErrConcurrentBooking
	}

	if err := tx.Appointments().Create(ctx, appt); err != nil {
		return err
	}
	if err := tx.Orders().LinkAppointment(ctx, appt.OrderID(), appt.ID()); err != nil {
		return err
	}
	return tx.Holds().Reserve(ctx, key)
}

func classifyCommitError(err error) error {
	switch {
	case errs.IsAny(err, errs.ErrAlreadyBooked, errs.ErrConcurrentBooking):
		return err
	case infra.IsKind(err, infra.KindDuplicateKey):
		return errs.Mark(err, errs.ErrAlreadyBooked)
	case errs.Is(err, shared.ErrMaxRetriesExceeded):
		return errs.Mark(err, errs.ErrConcurrentBooking)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	default:
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
}

func parseBookingRequest(req BookingRequest) (time.Time, appointment.Details, error) {
	if req.OrderID == uuid.Nil || req.TimeSlotID == uuid.Nil {
		return time.Time{}, appointment.Details{}, errs.ErrInvalidRequest
	}
	if math.IsNaN(req.EstimatedDurationHours) || math.IsInf(req.EstimatedDurationHours, 0) || req.EstimatedDurationHours <= 0 {
		return time.Time{}, appointment.Details{}, errs.Mark(appointment.ErrInvalidDuration, errs.ErrInvalidRequest)
	}

	date, err := clock.ParseDate(req.AppointmentDate)
	if err != nil {
		return time.Time{}, appointment.Details{}, errs.Mark(err, errs.ErrInvalidRequest)
	}

	instType, err := appointment.ParseInstallationType(req.InstallationType)
	if err != nil {
		return time.Time{}, appointment.Details{}, errs.Mark(err, errs.ErrInvalidRequest)
	}
	addr, err := appointment.NewAddress(req.Address.Line1, req.Address.Line2, req.Address.City, req.Address.State, req.Address.PostalCode, req.Address.Country)
	if err != nil {
		return time.Time{}, appointment.Details{}, errs.Mark(err, errs.ErrInvalidRequest)
	}

	details := appointment.Details{
		InstallationType:    instType,
		ProductTypes:        req.ProductTypes,
		RoomCount:           req.RoomCount,
		WindowCount:         req.WindowCount,
		SpecialRequirements: req.SpecialRequirements,
		Address:             addr,
		AccessInstructions:  req.AccessInstructions,
		ParkingInstructions: req.ParkingInstructions,
		ContactPhone:        req.ContactPhone,
		AlternativeContact:  req.AlternativeContact,
	}
	if err := details.Validate(); err != nil {
		return time.Time{}, appointment.Details{}, errs.Mark(err, errs.ErrInvalidRequest)
	}
	return date, details, nil
}

// checkLeadTime requires date on or after today plus leadDays.
func checkLeadTime(date, today time.Time, leadDays int) error {
	if date.Before(today) || date.Before(clock.AddDays(today, leadDays)) {
		return errs.ErrLeadTimeViolation
	}
	return nil
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeBooked
	case errs.Is(err, errs.ErrConcurrentBooking):
		return OutcomeConflict
	case errs.IsAny(err, errs.ErrInvalidRequest, errs.ErrLeadTimeViolation, errs.ErrSlotTooShort, errs.ErrInvalidSlot):
		return OutcomeInvalid
	case errs.IsAny(err,
		errs.ErrOrderNotFound,
		errs.ErrOrderNotEligible,
		errs.ErrAlreadyBooked,
		errs.ErrNoCoverage,
		errs.ErrTechUnavailable,
		errs.ErrNoTechAvailable):
		return OutcomeRejected
	default:
		return OutcomeFailure
	}
}
