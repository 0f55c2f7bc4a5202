//go:build unit

package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"install-scheduler/internal/domain/user"
	"install-scheduler/internal/infra"
	"install-scheduler/internal/pkg/errs"
	"install-scheduler/internal/usecase/queries"
	"install-scheduler/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAppointmentStore struct {
	view *queries.AppointmentView
	err  error

	rows       []*queries.AppointmentListItem
	gotFilters queries.AppointmentFilters
	gotAfter   *queries.Keyset
	gotLimit   int
	listCalled bool
}

func (s *fakeAppointmentStore) FindByID(context.Context, uuid.UUID) (*queries.AppointmentView, error) {
	return s.view, s.err
}

func (s *fakeAppointmentStore) List(_ context.Context, filters queries.AppointmentFilters, after *queries.Keyset, limit int) ([]*queries.AppointmentListItem, error) {
	s.listCalled = true
	s.gotFilters, s.gotAfter, s.gotLimit = filters, after, limit
	if len(s.rows) > limit {
		return s.rows[:limit], s.err
	}
	return s.rows, s.err
}

// =============================================================================
// GetByID
// =============================================================================

func TestAppointmentQueries_GetByID(t *testing.T) {
	ctx := context.Background()
	b := builder.NewAppointmentBuilder()
	view := b.BuildView()

	testCases := []struct {
		name      string
		storeErr  error
		requester user.Requester
		wantErr   error
	}{
		{name: "success: admin", requester: user.Requester{ID: uuid.New(), Role: user.RoleAdmin}},
		{name: "success: owning customer", requester: user.Requester{ID: b.CustomerID, Role: user.RoleCustomer}},
		{name: "success: assigned technician", requester: user.Requester{ID: b.TechnicianID, Role: user.RoleTechnician}},
		{
			name:      "error: another customer",
			requester: user.Requester{ID: uuid.New(), Role: user.RoleCustomer},
			wantErr:   errs.ErrAppointmentMissing,
		},
		{
			name:      "error: another technician",
			requester: user.Requester{ID: b.CustomerID, Role: user.RoleTechnician},
			wantErr:   errs.ErrAppointmentMissing,
		},
		{
			name:      "error: not found",
			storeErr:  infra.WrapRepoErr("appointment not found", pgx.ErrNoRows),
			requester: user.Requester{ID: uuid.New(), Role: user.RoleAdmin},
			wantErr:   errs.ErrAppointmentMissing,
		},
		{
			name:      "error: database failure",
			storeErr:  infra.WrapRepoErr("failed to get appointment view", errors.New("connection reset")),
			requester: user.Requester{ID: uuid.New(), Role: user.RoleAdmin},
			wantErr:   errs.ErrDatabaseOperationFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeAppointmentStore{view: view, err: tc.storeErr}
			if tc.storeErr != nil {
				store.view = nil
			}

			got, err := queries.NewAppointmentQueries(store).GetByID(ctx, b.ID, tc.requester)
			if tc.wantErr != nil {
				assert.Nil(t, got)
				assert.True(t, errs.Is(err, tc.wantErr), "expected %v but got %v", tc.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, view, got)
		})
	}
}

// =============================================================================
// List
// =============================================================================

func listItems(n int) []*queries.AppointmentListItem {
	base := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]*queries.AppointmentListItem, n)
	for i := range out {
		out[i] = builder.NewAppointmentBuilder().With(func(b *builder.AppointmentBuilder) {
			b.CreatedAt = base.Add(-time.Duration(i) * time.Minute)
		}).BuildListItem()
	}
	return out
}

func TestAppointmentQueries_List(t *testing.T) {
	ctx := context.Background()

	t.Run("success: customer is scoped to own appointments", func(t *testing.T) {
		store := &fakeAppointmentStore{}
		requester := user.Requester{ID: uuid.New(), Role: user.RoleCustomer}
		other := uuid.New()

		_, _, err := queries.NewAppointmentQueries(store).List(ctx, queries.AppointmentFilters{CustomerID: &other}, requester, nil, 0)
		require.NoError(t, err)
		require.NotNil(t, store.gotFilters.CustomerID)
		assert.Equal(t, requester.ID, *store.gotFilters.CustomerID)
		assert.Equal(t, queries.DefaultListLimit+1, store.gotLimit)
	})

	t.Run("success: technician is scoped to assigned appointments", func(t *testing.T) {
		store := &fakeAppointmentStore{}
		requester := user.Requester{ID: uuid.New(), Role: user.RoleTechnician}

		_, _, err := queries.NewAppointmentQueries(store).List(ctx, queries.AppointmentFilters{}, requester, nil, 10)
		require.NoError(t, err)
		require.NotNil(t, store.gotFilters.TechnicianID)
		assert.Equal(t, requester.ID, *store.gotFilters.TechnicianID)
		assert.Nil(t, store.gotFilters.CustomerID)
	})

	t.Run("success: admin filters pass through", func(t *testing.T) {
		store := &fakeAppointmentStore{}
		orderID := uuid.New()
		status := "confirmed"

		_, _, err := queries.NewAppointmentQueries(store).List(ctx,
			queries.AppointmentFilters{OrderID: &orderID, Status: &status},
			user.Requester{ID: uuid.New(), Role: user.RoleAdmin}, nil, 500)
		require.NoError(t, err)
		assert.Equal(t, &orderID, store.gotFilters.OrderID)
		assert.Nil(t, store.gotFilters.CustomerID)
		assert.Equal(t, queries.MaxListLimit+1, store.gotLimit)
	})

	t.Run("success: pages with a cursor from the last returned row", func(t *testing.T) {
		admin := user.Requester{ID: uuid.New(), Role: user.RoleAdmin}
		rows := listItems(3)
		store := &fakeAppointmentStore{rows: rows}
		q := queries.NewAppointmentQueries(store)

		page, next, err := q.List(ctx, queries.AppointmentFilters{}, admin, nil, 2)
		require.NoError(t, err)
		assert.Len(t, page, 2)
		require.NotNil(t, next)

		store.rows = rows[2:]
		page, last, err := q.List(ctx, queries.AppointmentFilters{}, admin, next, 2)
		require.NoError(t, err)
		assert.Len(t, page, 1)
		assert.Nil(t, last)
		require.NotNil(t, store.gotAfter)
		assert.Equal(t, rows[1].ID, store.gotAfter.ID)
		assert.True(t, rows[1].CreatedAt.Equal(store.gotAfter.CreatedAt))
	})

	dateFrom := time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC)
	dateTo := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	badStatus := "archived"

	testCases := []struct {
		name    string
		filters queries.AppointmentFilters
		cursor  *queries.Cursor
		wantErr error
	}{
		{name: "unknown status", filters: queries.AppointmentFilters{Status: &badStatus}, wantErr: errs.ErrInvalidRequest},
		{name: "inverted date range", filters: queries.AppointmentFilters{DateFrom: &dateFrom, DateTo: &dateTo}, wantErr: errs.ErrInvalidDateRange},
		{name: "garbage cursor", cursor: &queries.Cursor{After: "%%%"}, wantErr: queries.ErrInvalidCursor},
	}

	for _, tc := range testCases {
		t.Run("error: "+tc.name, func(t *testing.T) {
			store := &fakeAppointmentStore{}

			_, _, err := queries.NewAppointmentQueries(store).List(ctx, tc.filters,
				user.Requester{ID: uuid.New(), Role: user.RoleAdmin}, tc.cursor, 10)
			assert.True(t, errs.Is(err, tc.wantErr), "expected %v but got %v", tc.wantErr, err)
			assert.False(t, store.listCalled)
		})
	}
}
