package queries

import (
	"context"

	"install-scheduler/internal/domain/appointment"
	"install-scheduler/internal/domain/user"
	"install-scheduler/internal/infra"
	"install-scheduler/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrInvalidCursor = errs.New("invalid cursor")

type AppointmentReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AppointmentView, error)
	List(ctx context.Context, filters AppointmentFilters, after *Keyset, limit int) ([]*AppointmentListItem, error)
}

type AppointmentQueries interface {
	GetByID(ctx context.Context, id uuid.UUID, requester user.Requester) (*AppointmentView, error)
	List(ctx context.Context, filters AppointmentFilters, requester user.Requester, cursor *Cursor, limit int) ([]*AppointmentListItem, *Cursor, error)
}

type appointmentQueriesImpl struct {
	store AppointmentReadStore
}

func NewAppointmentQueries(store AppointmentReadStore) AppointmentQueries {
	return &appointmentQueriesImpl{store: store}
}

// GetByID hides appointments the requester may not see behind not-found.
func (q *appointmentQueriesImpl) GetByID(ctx context.Context, id uuid.UUID, requester user.Requester) (*AppointmentView, error) {
	v, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrAppointmentMissing
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	switch requester.Role {
	case user.RoleAdmin:
	case user.RoleTechnician:
		if v.Technician.ID != requester.ID {
			return nil, errs.ErrAppointmentMissing
		}
	default:
		if v.CustomerID != requester.ID {
			return nil, errs.ErrAppointmentMissing
		}
	}
	return v, nil
}

// List narrows filters to the requester's own appointments unless admin.
func (q *appointmentQueriesImpl) List(ctx context.Context, filters AppointmentFilters, requester user.Requester, cursor *Cursor, limit int) ([]*AppointmentListItem, *Cursor, error) {
	if filters.Status != nil {
		if _, err := appointment.ParseStatus(*filters.Status); err != nil {
			return nil, nil, errs.Mark(err, errs.ErrInvalidRequest)
		}
	}
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return nil, nil, errs.ErrInvalidDateRange
	}

	switch requester.Role {
	case user.RoleAdmin:
	case user.RoleTechnician:
		id := requester.ID
		filters.TechnicianID = &id
	default:
		id := requester.ID
		filters.CustomerID = &id
	}

	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, nil, err
	}

	limit = ValidateLimit(limit)
	rows, err := q.store.List(ctx, filters, after, limit+1)
	if err != nil {
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = EncodeCursor(Keyset{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	return rows, next, nil
}
