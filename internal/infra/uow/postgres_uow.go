package uow

import (
	"context"
	"log/slog"
	"time"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/domain/technician"
	"install-scheduler/internal/infra/db"
	"install-scheduler/internal/infra/readstore"
	"install-scheduler/internal/infra/repository"
	"install-scheduler/internal/pkg/config"
	"install-scheduler/internal/pkg/errs"
	"install-scheduler/internal/usecase/shared"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SQLSTATEs after which the whole transaction can be replayed unchanged.
var retryableCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
}

type PostgresUoW struct {
	pool       *pgxpool.Pool
	maxRetries int
}

func NewPostgresUoW(pool *pgxpool.Pool, cfg config.SchedulingConfig) shared.UnitOfWork {
	return &PostgresUoW{pool: pool, maxRetries: max(cfg.TxMaxRetries, 0)}
}

// Within runs fn at SERIALIZABLE and replays it on serialization failures, so two
// bookings racing for the same technician slot cannot both commit.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	delays := newRetryBackoff()
	for attempt := 0; ; attempt++ {
		err := u.attempt(ctx, opts, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if attempt >= u.maxRetries {
			slog.ErrorContext(ctx, "transaction retries exhausted", "attempts", attempt+1, "error", err.Error())
			return errs.Mark(err, shared.ErrMaxRetriesExceeded)
		}

		wait := delays.NextBackOff()
		slog.WarnContext(ctx, "retrying serialization conflict",
			"attempt", attempt+1, "wait_ms", wait.Milliseconds(), "error", err.Error())
		select {
		case <-ctx.Done():
			return errs.Wrap(ctx.Err(), "waiting to retry transaction")
		case <-time.After(wait):
		}
	}
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return newCommandReads(u.pool)
}

// attempt owns exactly one pgx transaction; the deferred rollback is a no-op after commit.
func (u *PostgresUoW) attempt(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, opts)
	if err != nil {
		return errs.Mark(err, shared.ErrTransactionBegin)
	}
	defer func() {
		if rbErr := pgxTx.Rollback(ctx); rbErr != nil && !errs.Is(rbErr, pgx.ErrTxClosed) {
			slog.WarnContext(ctx, "rollback failed", "error", rbErr.Error())
		}
	}()

	if err := fn(ctx, &pgTx{dbtx: pgxTx}); err != nil {
		return err
	}
	if err := pgxTx.Commit(ctx); err != nil {
		return errs.Mark(err, shared.ErrTransactionCommit)
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	return errs.As(err, &pgErr) && retryableCodes[pgErr.Code]
}

// newRetryBackoff doubles from 50ms up to 1s with 20% jitter either way.
// MaxElapsedTime is off; maxRetries bounds the loop.
func newRetryBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	appointmentRepo shared.AppointmentRepository
	technicianRepo  shared.TechnicianRepository
	holdRepo        shared.HoldRepository
	orderRepo       shared.OrderRepository
}

func (t *pgTx) Appointments() shared.AppointmentRepository {
	if t.appointmentRepo == nil {
		t.appointmentRepo = repository.NewAppointmentRepository(t.dbtx)
	}
	return t.appointmentRepo
}

func (t *pgTx) Technicians() shared.TechnicianRepository {
	if t.technicianRepo == nil {
		t.technicianRepo = repository.NewTechnicianRepository(t.dbtx, readstore.NewTechnicianReadStore(t.dbtx))
	}
	return t.technicianRepo
}

func (t *pgTx) Holds() shared.HoldRepository {
	if t.holdRepo == nil {
		t.holdRepo = repository.NewHoldRepository(t.dbtx)
	}
	return t.holdRepo
}

func (t *pgTx) Orders() shared.OrderRepository {
	if t.orderRepo == nil {
		t.orderRepo = repository.NewOrderRepository(t.dbtx)
	}
	return t.orderRepo
}

type commandReads struct {
	orders       *readstore.OrderReadStore
	technicians  *readstore.TechnicianReadStore
	appointments *repository.AppointmentRepository
}

func newCommandReads(dbtx db.DBTX) *commandReads {
	return &commandReads{
		orders:       readstore.NewOrderReadStore(dbtx),
		technicians:  readstore.NewTechnicianReadStore(dbtx),
		appointments: repository.NewAppointmentRepository(dbtx),
	}
}

func (r *commandReads) OrderByID(ctx context.Context, id uuid.UUID) (*shared.OrderSnapshot, error) {
	return r.orders.FindByID(ctx, id)
}

func (r *commandReads) HasActiveAppointmentForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	return r.appointments.ExistsActiveForOrder(ctx, orderID)
}

func (r *commandReads) AppointmentByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return r.appointments.FindByID(ctx, id)
}

func (r *commandReads) TechnicianByID(ctx context.Context, id uuid.UUID) (*technician.Technician, error) {
	return r.technicians.FindByID(ctx, id)
}

func (r *commandReads) TechniciansCoveringArea(ctx context.Context, areaID uuid.UUID) ([]technician.Technician, error) {
	return r.technicians.TechniciansCoveringArea(ctx, areaID)
}

func (r *commandReads) SlotLoads(ctx context.Context, technicianIDs []uuid.UUID, date time.Time, timeSlotID uuid.UUID) (map[uuid.UUID]technician.Load, error) {
	return r.technicians.SlotLoads(ctx, technicianIDs, date, timeSlotID)
}
