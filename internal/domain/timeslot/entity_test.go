//go:build unit

package timeslot_test

import (
	"testing"
	"time"

	"install-scheduler/tests/common/builder"

	"github.com/stretchr/testify/assert"
)

func TestTimeSlot(t *testing.T) {
	t.Run("duration fit", func(t *testing.T) {
		slot := builder.NewTimeSlotBuilder().WithDuration(2).Build()
		assert.True(t, slot.Fits(2))
		assert.True(t, slot.Fits(1.5))
		assert.False(t, slot.Fits(4))
	})

	t.Run("weekday availability", func(t *testing.T) {
		monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		sunday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		weekdays := builder.NewTimeSlotBuilder().
			OnDays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday).
			Build()
		assert.True(t, weekdays.AvailableOn(monday))
		assert.False(t, weekdays.AvailableOn(sunday))

		everyDay := builder.NewTimeSlotBuilder().Build()
		assert.True(t, everyDay.AvailableOn(sunday))
	})

	t.Run("premium fee only on premium slots", func(t *testing.T) {
		assert.Equal(t, int64(2500), builder.NewTimeSlotBuilder().AsPremium(2500).Build().PremiumCents())
		assert.Zero(t, builder.NewTimeSlotBuilder().Build().PremiumCents())
	})
}
