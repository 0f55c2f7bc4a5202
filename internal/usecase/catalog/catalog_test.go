//go:build unit

package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"install-scheduler/internal/domain/servicearea"
	"install-scheduler/internal/domain/timeslot"
	"install-scheduler/internal/pkg/errs"
	"install-scheduler/internal/usecase/catalog"
	"install-scheduler/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	slots     []timeslot.TimeSlot
	areas     []servicearea.ServiceArea
	err       error
	slotCalls int
	areaCalls int
}

func (s *fakeStore) ListActiveTimeSlots(context.Context) ([]timeslot.TimeSlot, error) {
	s.slotCalls++
	return append([]timeslot.TimeSlot(nil), s.slots...), s.err
}

func (s *fakeStore) ListActiveServiceAreas(context.Context) ([]servicearea.ServiceArea, error) {
	s.areaCalls++
	return append([]servicearea.ServiceArea(nil), s.areas...), s.err
}

// mapCache encodes values as JSON like the Redis cache does.
type mapCache struct {
	data   map[string][]byte
	getErr error
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string, dest any) error {
	if c.getErr != nil {
		return c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return catalog.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

// =============================================================================
// Time Slots
// =============================================================================

func TestCatalog_ListActive(t *testing.T) {
	ctx := context.Background()
	evening := builder.NewTimeSlotBuilder().With(func(s *timeslot.TimeSlot) {
		s.Code, s.DisplayOrder = "EVE", 3
	}).Build()
	morning := builder.NewTimeSlotBuilder().Build()
	afternoon := builder.NewTimeSlotBuilder().With(func(s *timeslot.TimeSlot) {
		s.Code, s.DisplayOrder = "PM", 2
	}).Build()

	t.Run("success: sorted by display order and cached", func(t *testing.T) {
		store := &fakeStore{slots: []timeslot.TimeSlot{evening, morning, afternoon}}
		c := catalog.NewCatalog(store, newMapCache())

		first, err := c.ListActive(ctx)
		require.NoError(t, err)
		second, err := c.ListActive(ctx)
		require.NoError(t, err)

		codes := func(slots []timeslot.TimeSlot) []string {
			out := make([]string, len(slots))
			for i, s := range slots {
				out[i] = s.Code
			}
			return out
		}
		assert.Equal(t, []string{"AM", "PM", "EVE"}, codes(first))
		assert.Equal(t, codes(first), codes(second))
		assert.Equal(t, 1, store.slotCalls)
	})

	t.Run("success: cache failure falls back to store", func(t *testing.T) {
		store := &fakeStore{slots: []timeslot.TimeSlot{morning}}
		cache := newMapCache()
		cache.getErr = errors.New("redis: connection refused")
		c := catalog.NewCatalog(store, cache)

		for range 2 {
			slots, err := c.ListActive(ctx)
			require.NoError(t, err)
			assert.Len(t, slots, 1)
		}
		assert.Equal(t, 2, store.slotCalls)
	})

	t.Run("error: store failure", func(t *testing.T) {
		c := catalog.NewCatalog(&fakeStore{err: errors.New("database connection lost")}, newMapCache())

		_, err := c.ListActive(ctx)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrDatabaseOperationFailed), "got %v", err)
	})
}

func TestCatalog_GetActiveSlot(t *testing.T) {
	ctx := context.Background()
	morning := builder.NewTimeSlotBuilder().Build()
	c := catalog.NewCatalog(&fakeStore{slots: []timeslot.TimeSlot{morning}}, newMapCache())

	got, err := c.GetActiveSlot(ctx, morning.ID)
	require.NoError(t, err)
	assert.Equal(t, morning.ID, got.ID)

	_, err = c.GetActiveSlot(ctx, uuid.New())
	assert.ErrorIs(t, err, errs.ErrInvalidSlot)
}

func TestCatalog_GetActiveSlot_IgnoresStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	morning := builder.NewTimeSlotBuilder().Build()
	store := &fakeStore{slots: []timeslot.TimeSlot{morning}}
	c := catalog.NewCatalog(store, newMapCache())

	cached, err := c.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)

	// Deactivated directly in the database, without invalidating the cache.
	store.slots = nil

	_, err = c.GetActiveSlot(ctx, morning.ID)
	assert.True(t, errs.Is(err, errs.ErrInvalidSlot), "got %v", err)

	listed, err := c.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed, "snapshot refreshed by the slot lookup")
	assert.Equal(t, 2, store.slotCalls)
}

func TestCatalog_Invalidate(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{slots: []timeslot.TimeSlot{builder.NewTimeSlotBuilder().Build()}}
	c := catalog.NewCatalog(store, newMapCache())

	_, err := c.ListActive(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))
	_, err = c.ListActive(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, store.slotCalls)
}

// =============================================================================
// Service Areas
// =============================================================================

func TestCatalog_Resolve(t *testing.T) {
	ctx := context.Background()
	lowID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	highID := uuid.MustParse("ffffffff-0000-0000-0000-000000000001")

	northeast := builder.NewServiceAreaBuilder().WithID(highID).Build()
	metro := builder.NewServiceAreaBuilder().WithID(lowID).WithRegions("NJ").Build()
	retired := builder.NewServiceAreaBuilder().WithRegions("TX").AsInactive().Build()

	store := &fakeStore{areas: []servicearea.ServiceArea{northeast, metro, retired}}
	c := catalog.NewCatalog(store, newMapCache())

	testCases := []struct {
		name    string
		region  string
		wantID  uuid.UUID
		wantErr error
	}{
		{name: "success: single covering area", region: "NY", wantID: highID},
		{name: "success: region is normalized", region: " ct ", wantID: highID},
		{name: "success: overlap picks lowest id", region: "NJ", wantID: lowID},
		{name: "error: inactive area ignored", region: "TX", wantErr: errs.ErrNoCoverage},
		{name: "error: uncovered region", region: "CA", wantErr: errs.ErrNoCoverage},
		{name: "error: empty region", region: "", wantErr: errs.ErrNoCoverage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			area, err := c.Resolve(ctx, tc.region)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, area.ID)
		})
	}
	assert.Equal(t, 1, store.areaCalls)
}
