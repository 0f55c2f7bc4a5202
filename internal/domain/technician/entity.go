package technician

import (
	"slices"

	"github.com/google/uuid"
)

type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "available"
	StatusUnavailable AvailabilityStatus = "unavailable"
)

func (s AvailabilityStatus) IsValid() bool {
	return s == StatusAvailable || s == StatusUnavailable
}

const (
	PriorityPrimary   = 1
	PrioritySecondary = 2
)

type Technician struct {
	ID               uuid.UUID
	Name             string
	Phone            string
	SkillLevel       string
	MaxJobsPerDay    int
	PrimaryAreaID    uuid.UUID
	SecondaryAreaIDs []uuid.UUID
	Availability     AvailabilityStatus
	AverageRating    float64
	IsActive         bool
}

// Bookable reports whether the technician may take new jobs at all.
func (t Technician) Bookable() bool {
	return t.IsActive && t.Availability == StatusAvailable && t.MaxJobsPerDay > 0
}

// AreaPriority returns 1 for the primary area, 2 for a secondary area.
func (t Technician) AreaPriority(areaID uuid.UUID) (int, bool) {
	if t.PrimaryAreaID == areaID {
		return PriorityPrimary, true
	}
	if slices.Contains(t.SecondaryAreaIDs, areaID) {
		return PrioritySecondary, true
	}
	return 0, false
}

func (t Technician) Covers(areaID uuid.UUID) bool {
	_, ok := t.AreaPriority(areaID)
	return ok
}
