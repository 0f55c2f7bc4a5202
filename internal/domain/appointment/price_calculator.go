package appointment

import (
	"math"

	"install-scheduler/internal/domain/servicearea"
	"install-scheduler/internal/domain/timeslot"
)

type PriceCalculator interface {
	Price(area servicearea.ServiceArea, slot timeslot.TimeSlot, durationHours float64) (PriceBreakdown, error)
}

type DefaultPriceCalculator struct{}

func NewDefaultPriceCalculator() *DefaultPriceCalculator {
	return &DefaultPriceCalculator{}
}

// Price is base + hourly labor + premium slot fee + travel. Labor is rounded to the cent.
func (pc *DefaultPriceCalculator) Price(area servicearea.ServiceArea, slot timeslot.TimeSlot, durationHours float64) (PriceBreakdown, error) {
	if durationHours <= 0 || math.IsNaN(durationHours) || math.IsInf(durationHours, 0) {
		return PriceBreakdown{}, ErrInvalidDuration
	}

	base, err := NewMoney(area.BaseFeeCents)
	if err != nil {
		return PriceBreakdown{}, err
	}
	labor, err := NewMoney(int64(math.Round(float64(area.PerHourRateCents) * durationHours)))
	if err != nil {
		return PriceBreakdown{}, err
	}
	premium, err := NewMoney(slot.PremiumCents())
	if err != nil {
		return PriceBreakdown{}, err
	}
	travel, err := NewMoney(area.TravelFeeCents)
	if err != nil {
		return PriceBreakdown{}, err
	}

	return PriceBreakdown{
		Base:        base,
		Labor:       labor,
		PremiumTime: premium,
		Travel:      travel,
	}, nil
}
