//go:build unit

package appointment_test

import (
	"testing"
	"time"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	all := []appointment.Status{
		appointment.StatusScheduled,
		appointment.StatusConfirmed,
		appointment.StatusInProgress,
		appointment.StatusCompleted,
		appointment.StatusCancelled,
	}
	allowed := map[appointment.Status][]appointment.Status{
		appointment.StatusScheduled:  {appointment.StatusConfirmed, appointment.StatusCancelled},
		appointment.StatusConfirmed:  {appointment.StatusInProgress, appointment.StatusCancelled},
		appointment.StatusInProgress: {appointment.StatusCompleted},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equalf(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	t.Run("every status but cancelled holds capacity", func(t *testing.T) {
		for _, s := range []appointment.Status{
			appointment.StatusScheduled, appointment.StatusConfirmed, appointment.StatusInProgress, appointment.StatusCompleted,
		} {
			assert.True(t, s.IsActive(), s)
		}
		assert.False(t, appointment.StatusCancelled.IsActive())
	})

	t.Run("parse rejects unknown status", func(t *testing.T) {
		_, err := appointment.ParseStatus("done")
		require.ErrorIs(t, err, appointment.ErrInvalidStatus)
	})
}

func TestNewAppointment(t *testing.T) {
	t.Run("基本成功ケース", func(t *testing.T) {
		a, err := builder.NewAppointmentBuilder().BuildDomain()
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, a.ID())
		assert.Equal(t, appointment.StatusScheduled, a.Status())
		assert.True(t, a.IsActive())
	})

	cases := []struct {
		name   string
		mutate func(*builder.AppointmentBuilder)
		errIs  error
	}{
		{
			name:   "注文IDなしNG",
			mutate: func(b *builder.AppointmentBuilder) { b.OrderID = uuid.Nil },
			errIs:  appointment.ErrMissingReference,
		},
		{
			name:   "技術者なしNG",
			mutate: func(b *builder.AppointmentBuilder) { b.TechnicianID = uuid.Nil },
			errIs:  appointment.ErrMissingReference,
		},
		{
			name:   "所要時間ゼロNG",
			mutate: func(b *builder.AppointmentBuilder) { b.EstimatedHours = 0 },
			errIs:  appointment.ErrInvalidDuration,
		},
		{
			name:   "施工種別不正NG",
			mutate: func(b *builder.AppointmentBuilder) { b.Details.InstallationType = "painting" },
			errIs:  appointment.ErrInvalidInstallationType,
		},
		{
			name:   "連絡先電話なしNG",
			mutate: func(b *builder.AppointmentBuilder) { b.Details.ContactPhone = " " },
			errIs:  appointment.ErrContactRequired,
		},
		{
			name:   "窓数マイナスNG",
			mutate: func(b *builder.AppointmentBuilder) { b.Details.WindowCount = -1 },
			errIs:  appointment.ErrInvalidCount,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := builder.NewAppointmentBuilder().With(tc.mutate).BuildDomain()
			require.Nil(t, a)
			require.ErrorIs(t, err, tc.errIs)
		})
	}
}

func TestAppointment_TransitionTo(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("walks the happy path", func(t *testing.T) {
		a, err := builder.NewAppointmentBuilder().BuildDomain()
		require.NoError(t, err)

		for _, next := range []appointment.Status{appointment.StatusConfirmed, appointment.StatusInProgress, appointment.StatusCompleted} {
			_, err := a.TransitionTo(next, now)
			require.NoError(t, err)
		}
		assert.Equal(t, appointment.StatusCompleted, a.Status())
		assert.Equal(t, now, a.UpdatedAt())
	})

	t.Run("rejects transitions out of terminal states", func(t *testing.T) {
		a, err := builder.NewAppointmentBuilder().BuildDomain()
		require.NoError(t, err)
		_, err = a.TransitionTo(appointment.StatusCancelled, now)
		require.NoError(t, err)

		prev, err := a.TransitionTo(appointment.StatusConfirmed, now)
		require.ErrorIs(t, err, appointment.ErrInvalidTransition)
		assert.Equal(t, appointment.StatusCancelled, prev)
	})

	t.Run("reschedule only before work starts", func(t *testing.T) {
		a, err := builder.NewAppointmentBuilder().BuildDomain()
		require.NoError(t, err)

		newDate := a.Date().AddDate(0, 0, 2)
		slot, tech := uuid.New(), uuid.New()
		require.NoError(t, a.Reschedule(newDate, slot, tech, a.Price(), now))
		assert.Equal(t, newDate, a.Date())
		assert.Equal(t, slot, a.TimeSlotID())
		assert.Equal(t, tech, a.TechnicianID())

		_, _ = a.TransitionTo(appointment.StatusConfirmed, now)
		_, _ = a.TransitionTo(appointment.StatusInProgress, now)
		require.ErrorIs(t, a.Reschedule(newDate, slot, tech, a.Price(), now), appointment.ErrNotReschedulable)
	})
}

func TestNewAddress(t *testing.T) {
	got, err := appointment.NewAddress(" 1 Main St ", "", "Albany", " ny ", "12207", "")
	require.NoError(t, err)

	want := appointment.Address{Line1: "1 Main St", City: "Albany", State: "ny", PostalCode: "12207", Country: "US"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Address mismatch (-want +got):\n%s", diff)
	}

	_, err = appointment.NewAddress("", "", "Albany", "NY", "12207", "US")
	require.ErrorIs(t, err, appointment.ErrInvalidAddress)
}
