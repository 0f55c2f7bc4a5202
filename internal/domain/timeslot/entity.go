package timeslot

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is a named daily installation window from the catalog.
// StartTime and EndTime are wall-clock "HH:MM" strings in the scheduling zone.
type TimeSlot struct {
	ID              uuid.UUID
	Name            string
	Code            string
	StartTime       string
	EndTime         string
	DurationHours   float64
	IsPremium       bool
	PremiumFeeCents int64
	IsActive        bool
	AvailableDays   []time.Weekday
	DisplayOrder    int
}

func (s TimeSlot) Fits(estimatedHours float64) bool {
	return s.DurationHours >= estimatedHours
}

// AvailableOn treats an empty weekday set as every day.
func (s TimeSlot) AvailableOn(date time.Time) bool {
	if len(s.AvailableDays) == 0 {
		return true
	}
	wd := date.Weekday()
	for _, d := range s.AvailableDays {
		if d == wd {
			return true
		}
	}
	return false
}

// PremiumCents is zero for standard slots regardless of the stored fee.
func (s TimeSlot) PremiumCents() int64 {
	if !s.IsPremium {
		return 0
	}
	return s.PremiumFeeCents
}
