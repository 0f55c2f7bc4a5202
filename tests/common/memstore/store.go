//go:build unit

// Package memstore is an in-memory unit of work for usecase tests.
package memstore

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/domain/technician"
	"install-scheduler/internal/infra"
	"install-scheduler/internal/usecase/queries"
	"install-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const reasonBooked = "booked"

type Hold struct {
	Available bool
	Reason    string
	Override  int
}

type Store struct {
	mu sync.Mutex

	orders       map[uuid.UUID]shared.OrderSnapshot
	appointments map[uuid.UUID]*appointment.Appointment
	technicians  map[uuid.UUID]technician.Technician
	holds        map[shared.SlotKey]Hold

	// BeforeCommit runs at the start of Within, before the store is locked.
	BeforeCommit func(s *Store)
	// CommitErr is returned instead of committing a successful callback.
	CommitErr error
	Commits   int
}

func New() *Store {
	return &Store{
		orders:       map[uuid.UUID]shared.OrderSnapshot{},
		appointments: map[uuid.UUID]*appointment.Appointment{},
		technicians:  map[uuid.UUID]technician.Technician{},
		holds:        map[shared.SlotKey]Hold{},
	}
}

func (s *Store) AddOrder(o shared.OrderSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

func (s *Store) AddTechnician(t technician.Technician) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.technicians[t.ID] = t
}

// PutAppointment stores a without the booking checks.
func (s *Store) PutAppointment(a *appointment.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.appointments[a.ID()] = &cp
}

func (s *Store) SetHold(key shared.SlotKey, h Hold) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holds[key] = h
}

func (s *Store) Order(id uuid.UUID) shared.OrderSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *Store) Appointment(id uuid.UUID) *appointment.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

func (s *Store) HoldAt(key shared.SlotKey) (Hold, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[key]
	return h, ok
}

func (s *Store) AppointmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appointments)
}

// =============================================================================
// shared.UnitOfWork
// =============================================================================

type snapshot struct {
	orders       map[uuid.UUID]shared.OrderSnapshot
	appointments map[uuid.UUID]*appointment.Appointment
	holds        map[shared.SlotKey]Hold
}

// Within rolls every change back when fn or the commit fails.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if s.BeforeCommit != nil {
		s.BeforeCommit(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		orders:       maps.Clone(s.orders),
		appointments: maps.Clone(s.appointments),
		holds:        maps.Clone(s.holds),
	}

	err := fn(ctx, &tx{s: s})
	if err == nil {
		err = s.CommitErr
	}
	if err != nil {
		s.orders, s.appointments, s.holds = snap.orders, snap.appointments, snap.holds
		return err
	}
	s.Commits++
	return nil
}

func (s *Store) CommandReads() shared.CommandReads {
	return &reads{s: s}
}

// =============================================================================
// lock-free internals, callers hold mu
// =============================================================================

func (s *Store) activeForOrder(orderID uuid.UUID) bool {
	for _, a := range s.appointments {
		if a.OrderID() == orderID && a.IsActive() {
			return true
		}
	}
	return false
}

func (s *Store) countActive(key shared.SlotKey) int {
	n := 0
	for _, a := range s.appointments {
		if a.IsActive() && a.TechnicianID() == key.TechnicianID && a.Date().Equal(key.Date) && a.TimeSlotID() == key.TimeSlotID {
			n++
		}
	}
	return n
}

func (s *Store) loadFor(key shared.SlotKey) (technician.Load, bool) {
	l := technician.Load{Current: s.countActive(key)}
	h, held := s.holds[key]
	if held {
		l.CapacityOverride = h.Override
		l.Blocked = !h.Available && h.Reason != reasonBooked
	}
	return l, held || l.Current > 0
}

func (s *Store) covering(areaID uuid.UUID) []technician.Technician {
	var out []technician.Technician
	for _, t := range s.technicians {
		if t.IsActive && t.Availability == technician.StatusAvailable && t.Covers(areaID) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, pgx.ErrNoRows)
}

// =============================================================================
// pool-side reads
// =============================================================================

type reads struct {
	s *Store
}

func (r *reads) OrderByID(_ context.Context, id uuid.UUID) (*shared.OrderSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, notFound("order not found")
	}
	return &o, nil
}

func (r *reads) HasActiveAppointmentForOrder(_ context.Context, orderID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.activeForOrder(orderID), nil
}

func (r *reads) AppointmentByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	if a := r.s.Appointment(id); a != nil {
		return a, nil
	}
	return nil, notFound("appointment not found")
}

func (r *reads) TechnicianByID(_ context.Context, id uuid.UUID) (*technician.Technician, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.technicians[id]
	if !ok {
		return nil, notFound("technician not found")
	}
	return &t, nil
}

func (r *reads) TechniciansCoveringArea(_ context.Context, areaID uuid.UUID) ([]technician.Technician, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.covering(areaID), nil
}

func (r *reads) SlotLoads(_ context.Context, technicianIDs []uuid.UUID, date time.Time, timeSlotID uuid.UUID) (map[uuid.UUID]technician.Load, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID]technician.Load)
	for _, id := range technicianIDs {
		if l, ok := r.s.loadFor(shared.SlotKey{TechnicianID: id, Date: date, TimeSlotID: timeSlotID}); ok {
			out[id] = l
		}
	}
	return out, nil
}

// =============================================================================
// queries.AvailabilityReadStore
// =============================================================================

func (s *Store) TechniciansCoveringArea(ctx context.Context, areaID uuid.UUID) ([]technician.Technician, error) {
	return (&reads{s: s}).TechniciansCoveringArea(ctx, areaID)
}

func (s *Store) LoadGrid(_ context.Context, technicianIDs []uuid.UUID, from, to time.Time) (map[queries.SlotCell]technician.Load, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := map[shared.SlotKey]struct{}{}
	for _, a := range s.appointments {
		keys[shared.SlotKey{TechnicianID: a.TechnicianID(), Date: a.Date(), TimeSlotID: a.TimeSlotID()}] = struct{}{}
	}
	for k := range s.holds {
		keys[k] = struct{}{}
	}

	wanted := map[uuid.UUID]struct{}{}
	for _, id := range technicianIDs {
		wanted[id] = struct{}{}
	}

	grid := make(map[queries.SlotCell]technician.Load)
	for k := range keys {
		if _, ok := wanted[k.TechnicianID]; !ok || k.Date.Before(from) || k.Date.After(to) {
			continue
		}
		if l, ok := s.loadFor(k); ok {
			grid[queries.SlotCell(k)] = l
		}
	}
	return grid, nil
}

// =============================================================================
// shared.Tx
// =============================================================================

type tx struct {
	s *Store
}

func (t *tx) Appointments() shared.AppointmentRepository { return &appointments{s: t.s} }
func (t *tx) Technicians() shared.TechnicianRepository   { return &technicians{s: t.s} }
func (t *tx) Holds() shared.HoldRepository               { return &holds{s: t.s} }
func (t *tx) Orders() shared.OrderRepository             { return &orders{s: t.s} }

type appointments struct {
	s *Store
}

// Create enforces one active appointment per order like the partial unique index.
func (r *appointments) Create(_ context.Context, a *appointment.Appointment) error {
	if r.s.activeForOrder(a.OrderID()) {
		return infra.WrapRepoErr("failed to create appointment", &pgconn.PgError{Code: "23505"})
	}
	cp := *a
	r.s.appointments[a.ID()] = &cp
	return nil
}

func (r *appointments) FindByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, notFound("appointment not found")
	}
	cp := *a
	return &cp, nil
}

func (r *appointments) ExistsActiveForOrder(_ context.Context, orderID uuid.UUID) (bool, error) {
	return r.s.activeForOrder(orderID), nil
}

func (r *appointments) UpdateStatus(_ context.Context, id uuid.UUID, from, to appointment.Status, now time.Time) error {
	a, ok := r.s.appointments[id]
	if !ok || a.Status() != from {
		return infra.WrapRepoErr("appointment status no longer "+from.String(), nil, infra.KindConflict)
	}
	cp := *a
	if _, err := cp.TransitionTo(to, now); err != nil {
		return infra.WrapRepoErr("appointment status no longer "+from.String(), err, infra.KindConflict)
	}
	r.s.appointments[id] = &cp
	return nil
}

func (r *appointments) UpdateSchedule(_ context.Context, a *appointment.Appointment, expected appointment.Status) error {
	stored, ok := r.s.appointments[a.ID()]
	if !ok || stored.Status() != expected {
		return infra.WrapRepoErr("appointment status no longer "+expected.String(), nil, infra.KindConflict)
	}
	cp := *a
	r.s.appointments[a.ID()] = &cp
	return nil
}

func (r *appointments) CountActiveForSlot(_ context.Context, key shared.SlotKey) (int, error) {
	return r.s.countActive(key), nil
}

type technicians struct {
	s *Store
}

func (r *technicians) LockByID(_ context.Context, id uuid.UUID) (*technician.Technician, error) {
	t, ok := r.s.technicians[id]
	if !ok {
		return nil, notFound("technician not found")
	}
	return &t, nil
}

func (r *technicians) SlotLoad(_ context.Context, key shared.SlotKey) (technician.Load, error) {
	l, _ := r.s.loadFor(key)
	return l, nil
}

type holds struct {
	s *Store
}

func (r *holds) Reserve(_ context.Context, key shared.SlotKey) error {
	h, ok := r.s.holds[key]
	if ok && !h.Available && h.Reason != reasonBooked {
		return nil
	}
	h.Available = false
	h.Reason = reasonBooked
	r.s.holds[key] = h
	return nil
}

func (r *holds) Release(_ context.Context, key shared.SlotKey) error {
	h, ok := r.s.holds[key]
	if !ok || h.Reason != reasonBooked {
		return nil
	}
	h.Available = true
	h.Reason = ""
	r.s.holds[key] = h
	return nil
}

type orders struct {
	s *Store
}

func (r *orders) LinkAppointment(_ context.Context, orderID, appointmentID uuid.UUID) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	id := appointmentID
	o.InstallationAppointmentID = &id
	r.s.orders[orderID] = o
	return nil
}

func (r *orders) UnlinkAppointment(_ context.Context, orderID, appointmentID uuid.UUID) error {
	o, ok := r.s.orders[orderID]
	if !ok || o.InstallationAppointmentID == nil || *o.InstallationAppointmentID != appointmentID {
		return nil
	}
	o.InstallationAppointmentID = nil
	r.s.orders[orderID] = o
	return nil
}
