//go:build unit || e2e

package dbtest

import (
	"context"
	"strings"
	"testing"
	"time"

	"install-scheduler/internal/infra/db"
	"install-scheduler/internal/pkg/errs"
	"install-scheduler/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Reference catalog seeded into every test database.
const (
	SeedAreaName      = "Northeast"
	SeedSlotMorning   = "AM"
	SeedSlotAfternoon = "PM"
	SeedSlotEvening   = "EVE"
)

type TechnicianParams struct {
	Name           string
	MaxJobsPerDay  int
	PrimaryAreaID  uuid.UUID
	SecondaryAreas []uuid.UUID
	Rating         float64
	Unavailable    bool
}

func CreateTechnician(t *testing.T, q db.DBTX, p TechnicianParams) uuid.UUID {
	t.Helper()

	if p.Name == "" {
		p.Name = "Tech " + uuid.NewString()[:8]
	}
	if p.MaxJobsPerDay == 0 {
		p.MaxJobsPerDay = 1
	}
	if p.SecondaryAreas == nil {
		p.SecondaryAreas = []uuid.UUID{}
	}
	status := "available"
	if p.Unavailable {
		status = "unavailable"
	}

	id := uuid.New()
	_, err := q.Exec(context.Background(), `
		INSERT INTO installation_technicians
		    (id, name, phone, skill_level, max_jobs_per_day, primary_service_area_id,
		     secondary_service_areas, availability_status, average_rating)
		VALUES ($1, $2, '555-0100', 'senior', $3, $4, $5, $6, $7)`,
		id, p.Name, p.MaxJobsPerDay, p.PrimaryAreaID, pgconv.UUIDsToPgtype(p.SecondaryAreas), status, p.Rating)
	require.NoError(t, err)
	return id
}

func CreateServiceArea(t *testing.T, q db.DBTX, name string, regions ...string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := q.Exec(context.Background(), `
		INSERT INTO installation_service_areas (id, name, covered_regions, base_fee_cents, per_hour_rate_cents, travel_fee_cents)
		VALUES ($1, $2, $3, 6000, 4000, 1000)`,
		id, name, regions)
	require.NoError(t, err)
	return id
}

// CreateOrder inserts a storefront order in the given status.
func CreateOrder(t *testing.T, q db.DBTX, customerID uuid.UUID, status string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := q.Exec(context.Background(),
		"INSERT INTO orders (id, customer_id, status) VALUES ($1, $2, $3)", id, customerID, status)
	require.NoError(t, err)
	return id
}

// BlockSlot records time off for a technician.
func BlockSlot(t *testing.T, q db.DBTX, technicianID uuid.UUID, date time.Time, timeSlotID uuid.UUID) {
	t.Helper()

	_, err := q.Exec(context.Background(), `
		INSERT INTO technician_availability (technician_id, availability_date, time_slot_id, is_available, reason)
		VALUES ($1, $2, $3, false, 'time_off')
		ON CONFLICT (technician_id, availability_date, time_slot_id)
		DO UPDATE SET is_available = false, reason = 'time_off'`,
		technicianID, date.Format("2006-01-02"), timeSlotID)
	require.NoError(t, err)
}

func TimeSlotID(t *testing.T, q db.DBTX, code string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := q.QueryRow(context.Background(), "SELECT id FROM installation_time_slots WHERE code = $1", code).Scan(&id)
	require.NoError(t, err)
	return id
}

func ServiceAreaID(t *testing.T, q db.DBTX, name string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := q.QueryRow(context.Background(), "SELECT id FROM installation_service_areas WHERE name = $1", name).Scan(&id)
	require.NoError(t, err)
	return id
}

func OrderAppointmentID(t *testing.T, q db.DBTX, orderID uuid.UUID) *uuid.UUID {
	t.Helper()

	var id *uuid.UUID
	err := q.QueryRow(context.Background(), "SELECT installation_appointment_id FROM orders WHERE id = $1", orderID).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedReferenceData inserts the catalog every test database starts with. It is idempotent.
func SeedReferenceData(ctx context.Context, q db.DBTX) error {
	if _, err := q.Exec(ctx, `
		INSERT INTO installation_time_slots
		    (name, code, start_time, end_time, duration_hours, is_premium, premium_fee_cents, display_order)
		VALUES
		    ('Morning', 'AM', '08:00', '12:00', 4, false, 0, 1),
		    ('Afternoon', 'PM', '13:00', '17:00', 4, false, 0, 2),
		    ('Evening', 'EVE', '17:00', '20:00', 3, true, 2500, 3)
		ON CONFLICT (code) DO NOTHING`); err != nil {
		return errs.Wrap(err, "seed time slots")
	}
	_, err := q.Exec(ctx, `
		INSERT INTO installation_service_areas (name, covered_regions, base_fee_cents, per_hour_rate_cents, travel_fee_cents)
		SELECT $1, ARRAY['NY', 'NJ', 'CT'], 5000, 4500, 1500
		WHERE NOT EXISTS (SELECT 1 FROM installation_service_areas WHERE name = $1)`, SeedAreaName)
	return errs.Wrap(err, "seed service area")
}

// Tables written by bookings and fixtures; the seeded catalog rows are kept.
var transactionalTables = []string{
	"technician_availability",
	"installation_appointments",
	"installation_technicians",
	"orders",
}

// ResetDB empties transactional tables and drops catalog rows added by tests.
// Seeded slot and area IDs stay stable, so a warm catalog cache remains valid.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return errs.Wrap(err, "begin reset")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stmts := []string{
		"TRUNCATE " + strings.Join(transactionalTables, ", ") + " CASCADE",
		"DELETE FROM installation_service_areas WHERE name <> '" + SeedAreaName + "'",
		"UPDATE installation_service_areas SET is_active = true",
		"UPDATE installation_time_slots SET is_active = true",
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return errs.Wrapf(err, "reset: %s", stmt)
		}
	}
	if err := SeedReferenceData(ctx, tx); err != nil {
		return err
	}
	return errs.Wrap(tx.Commit(ctx), "commit reset")
}
