//go:build unit

package appointment_test

import (
	"math"
	"testing"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/domain/timeslot"
	"install-scheduler/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPriceCalculator(t *testing.T) {
	calc := appointment.NewDefaultPriceCalculator()
	area := builder.NewServiceAreaBuilder().WithFees(5000, 4500, 1500).Build()

	cases := []struct {
		name        string
		premiumFee  int64
		isPremium   bool
		hours       float64
		wantLabor   int64
		wantPremium int64
		wantTotal   int64
	}{
		{name: "standard slot two hours", hours: 2, wantLabor: 9000, wantTotal: 15500},
		{name: "premium slot adds fee", isPremium: true, premiumFee: 2500, hours: 2, wantLabor: 9000, wantPremium: 2500, wantTotal: 18000},
		{name: "fractional hours", hours: 2.5, wantLabor: 11250, wantTotal: 17750},
		{name: "fee ignored on standard slot", premiumFee: 2500, hours: 1, wantLabor: 4500, wantTotal: 11000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewTimeSlotBuilder()
			if tc.isPremium {
				b.AsPremium(tc.premiumFee)
			} else {
				b.With(func(s *timeslot.TimeSlot) { s.PremiumFeeCents = tc.premiumFee })
			}

			p, err := calc.Price(area, b.Build(), tc.hours)
			require.NoError(t, err)

			assert.Equal(t, int64(5000), p.Base.Cents())
			assert.Equal(t, tc.wantLabor, p.Labor.Cents())
			assert.Equal(t, tc.wantPremium, p.PremiumTime.Cents())
			assert.Equal(t, int64(1500), p.Travel.Cents())
			assert.Equal(t, tc.wantTotal, p.Total().Cents())
			assert.Equal(t, p.Base.Cents()+p.Labor.Cents()+p.PremiumTime.Cents()+p.Travel.Cents(), p.Total().Cents())
		})
	}

	t.Run("labor rounds half cents up", func(t *testing.T) {
		odd := builder.NewServiceAreaBuilder().WithFees(0, 3333, 0).Build()
		p, err := calc.Price(odd, builder.NewTimeSlotBuilder().Build(), 1.5)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), p.Labor.Cents())
	})

	t.Run("rejects non-positive and non-finite durations", func(t *testing.T) {
		for _, h := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			_, err := calc.Price(area, builder.NewTimeSlotBuilder().Build(), h)
			require.ErrorIs(t, err, appointment.ErrInvalidDuration)
		}
	})

	t.Run("rejects negative fees", func(t *testing.T) {
		bad := builder.NewServiceAreaBuilder().WithFees(-1, 4500, 1500).Build()
		_, err := calc.Price(bad, builder.NewTimeSlotBuilder().Build(), 1)
		require.ErrorIs(t, err, appointment.ErrNegativePrice)
	})
}
