//go:build unit || e2e

package builder

import (
	"time"

	"install-scheduler/internal/domain/servicearea"
	"install-scheduler/internal/domain/timeslot"

	"github.com/google/uuid"
)

type TimeSlotBuilder struct {
	slot timeslot.TimeSlot
}

func NewTimeSlotBuilder() *TimeSlotBuilder {
	return &TimeSlotBuilder{
		slot: timeslot.TimeSlot{
			ID:            uuid.New(),
			Name:          "Morning",
			Code:          "AM",
			StartTime:     "08:00",
			EndTime:       "12:00",
			DurationHours: 4,
			IsActive:      true,
			DisplayOrder:  1,
		},
	}
}

func (b *TimeSlotBuilder) With(mutate func(*timeslot.TimeSlot)) *TimeSlotBuilder {
	mutate(&b.slot)
	return b
}

func (b *TimeSlotBuilder) WithID(id uuid.UUID) *TimeSlotBuilder {
	b.slot.ID = id
	return b
}

func (b *TimeSlotBuilder) WithDuration(hours float64) *TimeSlotBuilder {
	b.slot.DurationHours = hours
	return b
}

func (b *TimeSlotBuilder) AsPremium(feeCents int64) *TimeSlotBuilder {
	b.slot.IsPremium = true
	b.slot.PremiumFeeCents = feeCents
	return b
}

func (b *TimeSlotBuilder) AsInactive() *TimeSlotBuilder {
	b.slot.IsActive = false
	return b
}

func (b *TimeSlotBuilder) OnDays(days ...time.Weekday) *TimeSlotBuilder {
	b.slot.AvailableDays = days
	return b
}

func (b *TimeSlotBuilder) Build() timeslot.TimeSlot {
	return b.slot
}

type ServiceAreaBuilder struct {
	area servicearea.ServiceArea
}

func NewServiceAreaBuilder() *ServiceAreaBuilder {
	return &ServiceAreaBuilder{
		area: servicearea.ServiceArea{
			ID:               uuid.New(),
			Name:             "Northeast",
			CoveredRegions:   []string{"NY", "NJ", "CT"},
			BaseFeeCents:     5000,
			PerHourRateCents: 4500,
			TravelFeeCents:   1500,
			IsActive:         true,
		},
	}
}

func (b *ServiceAreaBuilder) With(mutate func(*servicearea.ServiceArea)) *ServiceAreaBuilder {
	mutate(&b.area)
	return b
}

func (b *ServiceAreaBuilder) WithID(id uuid.UUID) *ServiceAreaBuilder {
	b.area.ID = id
	return b
}

func (b *ServiceAreaBuilder) WithRegions(regions ...string) *ServiceAreaBuilder {
	b.area.CoveredRegions = regions
	return b
}

func (b *ServiceAreaBuilder) WithFees(baseCents, perHourCents, travelCents int64) *ServiceAreaBuilder {
	b.area.BaseFeeCents = baseCents
	b.area.PerHourRateCents = perHourCents
	b.area.TravelFeeCents = travelCents
	return b
}

func (b *ServiceAreaBuilder) AsInactive() *ServiceAreaBuilder {
	b.area.IsActive = false
	return b
}

func (b *ServiceAreaBuilder) Build() servicearea.ServiceArea {
	return b.area
}
