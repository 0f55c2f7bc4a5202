package servicearea

import (
	"bytes"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
)

type ServiceArea struct {
	ID               uuid.UUID
	Name             string
	CoveredRegions   []string
	BaseFeeCents     int64
	PerHourRateCents int64
	TravelFeeCents   int64
	IsActive         bool
}

func NormalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}

func (a ServiceArea) Covers(region string) bool {
	want := NormalizeRegion(region)
	if want == "" {
		return false
	}
	for _, r := range a.CoveredRegions {
		if NormalizeRegion(r) == want {
			return true
		}
	}
	return false
}

// Resolve returns the active area covering region. When several areas claim
// the same region the lowest ID wins so the choice is stable across calls.
func Resolve(areas []ServiceArea, region string) (ServiceArea, bool) {
	matches := make([]ServiceArea, 0, 1)
	for _, a := range areas {
		if a.IsActive && a.Covers(region) {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		return ServiceArea{}, false
	}
	slices.SortFunc(matches, func(x, y ServiceArea) int {
		return bytes.Compare(x.ID[:], y.ID[:])
	})
	return matches[0], true
}

// Overlaps lists regions claimed by more than one active area.
func Overlaps(areas []ServiceArea) map[string][]uuid.UUID {
	claims := make(map[string][]uuid.UUID)
	for _, a := range areas {
		if !a.IsActive {
			continue
		}
		seen := make(map[string]struct{}, len(a.CoveredRegions))
		for _, r := range a.CoveredRegions {
			n := NormalizeRegion(r)
			if _, dup := seen[n]; dup || n == "" {
				continue
			}
			seen[n] = struct{}{}
			claims[n] = append(claims[n], a.ID)
		}
	}
	out := make(map[string][]uuid.UUID)
	for region, ids := range claims {
		if len(ids) > 1 {
			sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
			out[region] = ids
		}
	}
	return out
}
