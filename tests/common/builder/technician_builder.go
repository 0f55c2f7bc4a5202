//go:build unit || e2e

package builder

import (
	"install-scheduler/internal/domain/technician"

	"github.com/google/uuid"
)

type TechnicianBuilder struct {
	tech technician.Technician
}

func NewTechnicianBuilder() *TechnicianBuilder {
	return &TechnicianBuilder{
		tech: technician.Technician{
			ID:            uuid.New(),
			Name:          "Alex Rivera",
			Phone:         "555-0100",
			SkillLevel:    "senior",
			MaxJobsPerDay: 2,
			PrimaryAreaID: uuid.New(),
			Availability:  technician.StatusAvailable,
			AverageRating: 4.5,
			IsActive:      true,
		},
	}
}

func (b *TechnicianBuilder) With(mutate func(*technician.Technician)) *TechnicianBuilder {
	mutate(&b.tech)
	return b
}

func (b *TechnicianBuilder) WithID(id uuid.UUID) *TechnicianBuilder {
	b.tech.ID = id
	return b
}

func (b *TechnicianBuilder) WithName(name string) *TechnicianBuilder {
	b.tech.Name = name
	return b
}

func (b *TechnicianBuilder) WithPrimaryArea(areaID uuid.UUID) *TechnicianBuilder {
	b.tech.PrimaryAreaID = areaID
	return b
}

func (b *TechnicianBuilder) WithSecondaryAreas(areaIDs ...uuid.UUID) *TechnicianBuilder {
	b.tech.SecondaryAreaIDs = areaIDs
	return b
}

func (b *TechnicianBuilder) WithRating(rating float64) *TechnicianBuilder {
	b.tech.AverageRating = rating
	return b
}

func (b *TechnicianBuilder) WithMaxJobs(n int) *TechnicianBuilder {
	b.tech.MaxJobsPerDay = n
	return b
}

func (b *TechnicianBuilder) AsUnavailable() *TechnicianBuilder {
	b.tech.Availability = technician.StatusUnavailable
	return b
}

func (b *TechnicianBuilder) AsInactive() *TechnicianBuilder {
	b.tech.IsActive = false
	return b
}

func (b *TechnicianBuilder) Build() technician.Technician {
	return b.tech
}
