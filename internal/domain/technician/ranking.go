package technician

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// Load is a technician's booking state for one date and slot.
type Load struct {
	// Current counts non-cancelled appointments.
	Current int
	// CapacityOverride lowers MaxJobsPerDay for one date and slot when positive.
	CapacityOverride int
	// Blocked marks explicit time off for the date and slot.
	Blocked bool
}

// Candidate is a technician that survived filtering, with its ranking keys.
type Candidate struct {
	Technician          Technician
	AreaPriority        int
	CurrentAppointments int
	Capacity            int
}

func (c Candidate) Remaining() int {
	if r := c.Capacity - c.CurrentAppointments; r > 0 {
		return r
	}
	return 0
}

// CapacityFor is the job limit that applies under load.
func (t Technician) CapacityFor(load Load) int {
	if load.CapacityOverride > 0 {
		return min(load.CapacityOverride, t.MaxJobsPerDay)
	}
	return t.MaxJobsPerDay
}

// Accepts reports whether one more job fits under load.
func (t Technician) Accepts(load Load) bool {
	return t.Bookable() && !load.Blocked && load.Current < t.CapacityFor(load)
}

// Rank filters technicians for areaID and orders them best first:
// bookable, covering the area, not blocked and under capacity,
// then (areaPriority asc, averageRating desc, currentAppointments asc, id asc).
// A technician missing from loads has no appointments for the slot.
func Rank(techs []Technician, areaID uuid.UUID, loads map[uuid.UUID]Load) []Candidate {
	out := make([]Candidate, 0, len(techs))
	for _, t := range techs {
		priority, ok := t.AreaPriority(areaID)
		if !ok {
			continue
		}
		load := loads[t.ID]
		if !t.Accepts(load) {
			continue
		}
		out = append(out, Candidate{
			Technician:          t,
			AreaPriority:        priority,
			CurrentAppointments: load.Current,
			Capacity:            t.CapacityFor(load),
		})
	}

	slices.SortStableFunc(out, compareCandidates)
	return out
}

// Best returns the top-ranked candidate, if any.
func Best(techs []Technician, areaID uuid.UUID, loads map[uuid.UUID]Load) (Candidate, bool) {
	ranked := Rank(techs, areaID, loads)
	if len(ranked) == 0 {
		return Candidate{}, false
	}
	return ranked[0], true
}

func compareCandidates(a, b Candidate) int {
	if c := cmp.Compare(a.AreaPriority, b.AreaPriority); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Technician.AverageRating, a.Technician.AverageRating); c != 0 {
		return c
	}
	if c := cmp.Compare(a.CurrentAppointments, b.CurrentAppointments); c != 0 {
		return c
	}
	return bytes.Compare(a.Technician.ID[:], b.Technician.ID[:])
}
