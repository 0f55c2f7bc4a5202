package request

import (
	"time"

	"install-scheduler/internal/usecase/queries"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type ListAppointmentsQuery struct {
	OrderID      *string `form:"order_id"`
	TechnicianID *string `form:"technician_id"`
	Status       *string `form:"status"`
	DateFrom     *string `form:"date_from"`
	DateTo       *string `form:"date_to"`
	After        string  `form:"after"`
	Limit        int     `form:"limit" binding:"omitempty,min=1"`
}

func (q ListAppointmentsQuery) ToFilters() (queries.AppointmentFilters, error) {
	f := queries.AppointmentFilters{Status: q.Status}
	var err error
	if f.OrderID, err = parseUUID(q.OrderID); err != nil {
		return queries.AppointmentFilters{}, err
	}
	if f.TechnicianID, err = parseUUID(q.TechnicianID); err != nil {
		return queries.AppointmentFilters{}, err
	}
	if f.DateFrom, err = parseDate(q.DateFrom); err != nil {
		return queries.AppointmentFilters{}, err
	}
	if f.DateTo, err = parseDate(q.DateTo); err != nil {
		return queries.AppointmentFilters{}, err
	}
	return f, nil
}

func (q ListAppointmentsQuery) Cursor() *queries.Cursor {
	if q.After == "" {
		return nil
	}
	return &queries.Cursor{After: q.After}
}

func parseUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type AvailabilityQuery struct {
	StartDate         string  `form:"start_date" binding:"required"`
	EndDate           string  `form:"end_date" binding:"required"`
	State             string  `form:"state" binding:"required"`
	EstimatedDuration float64 `form:"estimated_duration" binding:"omitempty,gt=0"`
}

func (q AvailabilityQuery) ToRequest() queries.AvailabilityRequest {
	return queries.AvailabilityRequest{
		StartDate:         q.StartDate,
		EndDate:           q.EndDate,
		State:             q.State,
		EstimatedDuration: q.EstimatedDuration,
	}
}
