//go:build unit

package technician_test

import (
	"testing"

	"install-scheduler/internal/domain/technician"
	"install-scheduler/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(cs []technician.Candidate) []uuid.UUID {
	out := make([]uuid.UUID, len(cs))
	for i, c := range cs {
		out[i] = c.Technician.ID
	}
	return out
}

func TestRank(t *testing.T) {
	area := uuid.New()

	t.Run("primary area beats higher-rated secondary", func(t *testing.T) {
		primary := builder.NewTechnicianBuilder().WithPrimaryArea(area).WithRating(3.0).Build()
		secondary := builder.NewTechnicianBuilder().WithSecondaryAreas(area).WithRating(5.0).Build()

		ranked := technician.Rank([]technician.Technician{secondary, primary}, area, nil)

		require.Len(t, ranked, 2)
		assert.Equal(t, []uuid.UUID{primary.ID, secondary.ID}, ids(ranked))
		assert.Equal(t, technician.PriorityPrimary, ranked[0].AreaPriority)
		assert.Equal(t, technician.PrioritySecondary, ranked[1].AreaPriority)
	})

	t.Run("higher rating wins within the same priority", func(t *testing.T) {
		low := builder.NewTechnicianBuilder().WithPrimaryArea(area).WithRating(4.1).Build()
		high := builder.NewTechnicianBuilder().WithPrimaryArea(area).WithRating(4.9).Build()

		ranked := technician.Rank([]technician.Technician{low, high}, area, nil)

		assert.Equal(t, []uuid.UUID{high.ID, low.ID}, ids(ranked))
	})

	t.Run("least loaded wins when priority and rating tie", func(t *testing.T) {
		busy := builder.NewTechnicianBuilder().WithPrimaryArea(area).WithMaxJobs(3).Build()
		idle := builder.NewTechnicianBuilder().WithPrimaryArea(area).WithMaxJobs(3).Build()
		loads := map[uuid.UUID]technician.Load{busy.ID: {Current: 2}}

		ranked := technician.Rank([]technician.Technician{busy, idle}, area, loads)

		assert.Equal(t, []uuid.UUID{idle.ID, busy.ID}, ids(ranked))
		assert.Equal(t, 0, ranked[0].CurrentAppointments)
		assert.Equal(t, 2, ranked[1].CurrentAppointments)
	})

	t.Run("technician id breaks full ties", func(t *testing.T) {
		a := builder.NewTechnicianBuilder().WithID(uuid.MustParse("00000000-0000-0000-0000-000000000002")).WithPrimaryArea(area).Build()
		b := builder.NewTechnicianBuilder().WithID(uuid.MustParse("00000000-0000-0000-0000-000000000001")).WithPrimaryArea(area).Build()

		ranked := technician.Rank([]technician.Technician{a, b}, area, nil)

		assert.Equal(t, []uuid.UUID{b.ID, a.ID}, ids(ranked))
	})

	t.Run("filters inactive, unavailable, uncovered, blocked and full technicians", func(t *testing.T) {
		ok := builder.NewTechnicianBuilder().WithPrimaryArea(area).Build()
		inactive := builder.NewTechnicianBuilder().WithPrimaryArea(area).AsInactive().Build()
		unavailable := builder.NewTechnicianBuilder().WithPrimaryArea(area).AsUnavailable().Build()
		elsewhere := builder.NewTechnicianBuilder().Build()
		blocked := builder.NewTechnicianBuilder().WithPrimaryArea(area).Build()
		full := builder.NewTechnicianBuilder().WithPrimaryArea(area).WithMaxJobs(2).Build()

		loads := map[uuid.UUID]technician.Load{
			blocked.ID: {Blocked: true},
			full.ID:    {Current: 2},
		}

		ranked := technician.Rank([]technician.Technician{ok, inactive, unavailable, elsewhere, blocked, full}, area, loads)

		assert.Equal(t, []uuid.UUID{ok.ID}, ids(ranked))
	})

	t.Run("capacity override only lowers max jobs per day", func(t *testing.T) {
		atMax := builder.NewTechnicianBuilder().WithPrimaryArea(area).WithMaxJobs(1).Build()
		lowered := builder.NewTechnicianBuilder().WithPrimaryArea(area).WithMaxJobs(3).Build()
		loweredFull := builder.NewTechnicianBuilder().WithPrimaryArea(area).WithMaxJobs(3).Build()

		tests := []struct {
			name     string
			tech     technician.Technician
			load     technician.Load
			capacity int
			accepts  bool
		}{
			{"override above max is ignored", atMax, technician.Load{Current: 1, CapacityOverride: 3}, 1, false},
			{"override below max lowers capacity", lowered, technician.Load{Current: 0, CapacityOverride: 2}, 2, true},
			{"lowered capacity reached", loweredFull, technician.Load{Current: 1, CapacityOverride: 1}, 1, false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.capacity, tt.tech.CapacityFor(tt.load))
				assert.Equal(t, tt.accepts, tt.tech.Accepts(tt.load))
			})
		}

		ranked := technician.Rank([]technician.Technician{atMax, lowered, loweredFull}, area, map[uuid.UUID]technician.Load{
			atMax.ID:       {Current: 1, CapacityOverride: 3},
			lowered.ID:     {Current: 0, CapacityOverride: 2},
			loweredFull.ID: {Current: 1, CapacityOverride: 1},
		})

		require.Len(t, ranked, 1)
		assert.Equal(t, lowered.ID, ranked[0].Technician.ID)
		assert.Equal(t, 2, ranked[0].Capacity)
		assert.Equal(t, 2, ranked[0].Remaining())

		best, ok := technician.Best([]technician.Technician{atMax}, area, map[uuid.UUID]technician.Load{
			atMax.ID: {Current: 1, CapacityOverride: 3},
		})
		assert.False(t, ok, "technician at max jobs per day must not be selected")
		assert.Zero(t, best)
	})

	t.Run("ranking is deterministic regardless of input order", func(t *testing.T) {
		techs := []technician.Technician{
			builder.NewTechnicianBuilder().WithPrimaryArea(area).WithRating(4.0).Build(),
			builder.NewTechnicianBuilder().WithSecondaryAreas(area).WithRating(4.8).Build(),
			builder.NewTechnicianBuilder().WithPrimaryArea(area).WithRating(4.0).Build(),
			builder.NewTechnicianBuilder().WithPrimaryArea(area).WithRating(4.7).Build(),
		}
		reversed := make([]technician.Technician, len(techs))
		for i := range techs {
			reversed[len(techs)-1-i] = techs[i]
		}

		first := ids(technician.Rank(techs, area, nil))
		for range 5 {
			assert.Equal(t, first, ids(technician.Rank(techs, area, nil)))
		}
		assert.Equal(t, first, ids(technician.Rank(reversed, area, nil)))
	})
}

func TestBest(t *testing.T) {
	area := uuid.New()

	t.Run("empty pool", func(t *testing.T) {
		_, ok := technician.Best(nil, area, nil)
		assert.False(t, ok)
	})

	t.Run("returns top candidate", func(t *testing.T) {
		top := builder.NewTechnicianBuilder().WithPrimaryArea(area).WithRating(5).Build()
		other := builder.NewTechnicianBuilder().WithPrimaryArea(area).WithRating(3).Build()

		best, ok := technician.Best([]technician.Technician{other, top}, area, nil)

		require.True(t, ok)
		assert.Equal(t, top.ID, best.Technician.ID)
	})
}
