package commands

import (
	"context"
	"log/slog"
	"time"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/domain/technician"
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

type RescheduleRequest struct {
	AppointmentDate       string
	TimeSlotID            uuid.UUID
	PreferredTechnicianID *uuid.UUID
}

type LifecycleCommands interface {
	// Transition moves an appointment from -> to when the stored status is still from.
	Transition(ctx context.Context, id uuid.UUID, from, to string, requester user.Requester) error
	Cancel(ctx context.Context, id uuid.UUID, requester user.Requester) error
	Reschedule(ctx context.Context, id uuid.UUID, req RescheduleRequest, requester user.Requester) (*BookingResult, error)
}

type lifecycleUseCaseImpl struct {
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

func NewLifecycleUseCase(
	uow shared.UnitOfWork,
	slots catalog.TimeSlotCatalog,
	areas catalog.ServiceAreaResolver,
	matcher matching.Matcher,
	pricing appointment.PriceCalculator,
	recorder Recorder,
	clk clock.Clock,
	cfg config.SchedulingConfig,
) LifecycleCommands {
	return &lifecycleUseCaseImpl{
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

func (uc *lifecycleUseCaseImpl) Transition(ctx context.Context, id uuid.UUID, from, to string, requester user.Requester) error {
	fromStatus, err := appointment.ParseStatus(from)
	if err != nil {
		return errs.Mark(err, errs.ErrInvalidRequest)
	}
	toStatus, err := appointment.ParseStatus(to)
	if err != nil {
		return errs.Mark(err, errs.ErrInvalidRequest)
	}
	if !fromStatus.CanTransitionTo(toStatus) {
		return errs.ErrInvalidTransition
	}

	appt, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if !canOperate(requester, appt) {
		return errs.ErrPermissionDenied
	}

	return uc.apply(ctx, appt, fromStatus, toStatus)
}

// Cancel is open to the customer who owns the appointment as well as staff.
func (uc *lifecycleUseCaseImpl) Cancel(ctx context.Context, id uuid.UUID, requester user.Requester) error {
	appt, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if !requester.CanActFor(appt.CustomerID()) && !canOperate(requester, appt) {
		return errs.ErrAppointmentMissing
	}
	if !appt.Status().CanTransitionTo(appointment.StatusCancelled) {
		return errs.ErrInvalidTransition
	}

	return uc.apply(ctx, appt, appt.Status(), appointment.StatusCancelled)
}

func (uc *lifecycleUseCaseImpl) Reschedule(ctx context.Context, id uuid.UUID, req RescheduleRequest, requester user.Requester) (*BookingResult, error) {
	if !requester.IsAdmin() {
		return nil, errs.ErrPermissionDenied
	}
	if req.TimeSlotID == uuid.Nil {
		return nil, errs.ErrInvalidRequest
	}
	date, err := clock.ParseDate(req.AppointmentDate)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidRequest)
	}
	if err := checkLeadTime(date, clock.Today(uc.clock, uc.loc), uc.leadDays); err != nil {
		return nil, err
	}

	appt, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.Status().Reschedulable() {
		return nil, errs.ErrNotReschedulable
	}

	sameSlot := date.Equal(appt.Date()) && req.TimeSlotID == appt.TimeSlotID()
	if sameSlot && (req.PreferredTechnicianID == nil || *req.PreferredTechnicianID == appt.TechnicianID()) {
		return nil, errs.ErrInvalidRequest
	}

	slot, err := uc.slots.GetActiveSlot(ctx, req.TimeSlotID)
	if err != nil {
		return nil, err
	}
	if !slot.Fits(appt.EstimatedHours()) {
		return nil, errs.ErrSlotTooShort
	}
	area, err := uc.areas.Resolve(ctx, appt.Details().Address.Region())
	if err != nil {
		return nil, err
	}

	sel := matching.Selection{Date: date, TimeSlotID: slot.ID, AreaID: area.ID, DurationHours: appt.EstimatedHours()}
	tech, err := uc.selectForReschedule(ctx, appt, req.PreferredTechnicianID, sel)
	if err != nil {
		return nil, err
	}

	price, err := uc.pricing.Price(area, slot, appt.EstimatedHours())
	if err != nil {
		return nil, errs.Wrapf(err, "price service area %s", area.ID)
	}

	oldKey := slotKeyOf(appt)
	expected := appt.Status()
	if err := appt.Reschedule(date, slot.ID, tech.Technician.ID, price, uc.clock.Now()); err != nil {
		return nil, errs.Mark(err, errs.ErrNotReschedulable)
	}
	newKey := slotKeyOf(appt)

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		locked, err := tx.Technicians().LockByID(ctx, newKey.TechnicianID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrConcurrentBooking
			}
			return err
		}
		load, err := tx.Technicians().SlotLoad(ctx, newKey)
		if err != nil {
			return err
		}
		if !locked.Covers(area.ID) || !locked.Accepts(load) {
			return errs.ErrConcurrentBooking
		}

		if err := tx.Appointments().UpdateSchedule(ctx, appt, expected); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(err, errs.ErrNotReschedulable)
			}
			return err
		}
		if err := releaseIfIdle(ctx, tx, oldKey); err != nil {
			return err
		}
		return tx.Holds().Reserve(ctx, newKey)
	})
	if err != nil {
		if errs.IsAny(err, errs.ErrNotReschedulable, errs.ErrConcurrentBooking) {
			return nil, err
		}
		return nil, classifyCommitError(err)
	}

	slog.InfoContext(ctx, "appointment rescheduled",
		"appointment_id", appt.ID().String(),
		"date", clock.FormatDate(date),
		"time_slot_id", slot.ID.String(),
		"technician_id", tech.Technician.ID.String())

	return &BookingResult{
		AppointmentID: appt.ID(),
		TechnicianID:  appt.TechnicianID(),
		Total:         appt.Price().Total().Cents(),
	}, nil
}

// selectForReschedule keeps the assigned technician when still eligible,
// otherwise falls back to auto-selection.
func (uc *lifecycleUseCaseImpl) selectForReschedule(ctx context.Context, appt *appointment.Appointment, preferred *uuid.UUID, sel matching.Selection) (technician.Candidate, error) {
	if preferred != nil {
		return uc.matcher.ValidatePreferred(ctx, *preferred, sel)
	}

	current, err := uc.matcher.ValidatePreferred(ctx, appt.TechnicianID(), sel)
	if err == nil {
		return current, nil
	}
	if !errs.Is(err, errs.ErrTechUnavailable) {
		return technician.Candidate{}, err
	}
	return uc.matcher.AutoSelect(ctx, sel)
}

func (uc *lifecycleUseCaseImpl) apply(ctx context.Context, appt *appointment.Appointment, from, to appointment.Status) error {
	now := uc.clock.Now()
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Appointments().UpdateStatus(ctx, appt.ID(), from, to, now); err != nil {
			return err
		}
		if to != appointment.StatusCancelled {
			return nil
		}
		if err := tx.Orders().UnlinkAppointment(ctx, appt.OrderID(), appt.ID()); err != nil {
			return err
		}
		return releaseIfIdle(ctx, tx, slotKeyOf(appt))
	})
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		return classifyCommitError(err)
	}

	uc.recorder.ObserveTransition(to.String())
	slog.InfoContext(ctx, "appointment status changed",
		"appointment_id", appt.ID().String(),
		"from", from.String(),
		"to", to.String())
	return nil
}

func (uc *lifecycleUseCaseImpl) load(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	appt, err := uc.uow.CommandReads().AppointmentByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrAppointmentMissing
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return appt, nil
}

// releaseIfIdle reopens the hold once no active appointment uses the slot.
func releaseIfIdle(ctx context.Context, tx shared.Tx, key shared.SlotKey) error {
	remaining, err := tx.Appointments().CountActiveForSlot(ctx, key)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}
	return tx.Holds().Release(ctx, key)
}

// canOperate covers staff-side lifecycle moves: admins, or the assigned technician.
func canOperate(requester user.Requester, appt *appointment.Appointment) bool {
	if requester.IsAdmin() {
		return true
	}
	return requester.Role == user.RoleTechnician && requester.ID == appt.TechnicianID()
}

func slotKeyOf(appt *appointment.Appointment) shared.SlotKey {
	return shared.SlotKey{
		TechnicianID: appt.TechnicianID(),
		Date:         appt.Date(),
		TimeSlotID:   appt.TimeSlotID(),
	}
}
