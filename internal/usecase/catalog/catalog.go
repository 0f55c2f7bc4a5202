package catalog

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"install-scheduler/internal/domain/servicearea"
	"install-scheduler/internal/domain/timeslot"
	"install-scheduler/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	timeSlotsKey    = "catalog:time_slots"
	serviceAreasKey = "catalog:service_areas"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache stores JSON-encodable catalog snapshots. Get returns ErrCacheMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

// Store is the persistent source of active catalog rows.
type Store interface {
	ListActiveTimeSlots(ctx context.Context) ([]timeslot.TimeSlot, error)
	ListActiveServiceAreas(ctx context.Context) ([]servicearea.ServiceArea, error)
}

type TimeSlotCatalog interface {
	GetActiveSlot(ctx context.Context, id uuid.UUID) (timeslot.TimeSlot, error)
	ListActive(ctx context.Context) ([]timeslot.TimeSlot, error)
}

type ServiceAreaResolver interface {
	Resolve(ctx context.Context, region string) (servicearea.ServiceArea, error)
}

// Invalidator drops cached catalog snapshots after an administrative edit.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Catalog struct {
	store Store
	cache Cache
}

func NewCatalog(store Store, cache Cache) *Catalog {
	return &Catalog{store: store, cache: cache}
}

// GetActiveSlot backs bookings and reschedules, so it reads the store and
// refreshes the cached snapshot rather than trusting it.
func (c *Catalog) GetActiveSlot(ctx context.Context, id uuid.UUID) (timeslot.TimeSlot, error) {
	slots, err := c.loadSlots(ctx)
	if err != nil {
		return timeslot.TimeSlot{}, err
	}
	for _, s := range slots {
		if s.ID == id && s.IsActive {
			return s, nil
		}
	}
	return timeslot.TimeSlot{}, errs.ErrInvalidSlot
}

// ListActive returns active slots in display order.
func (c *Catalog) ListActive(ctx context.Context) ([]timeslot.TimeSlot, error) {
	var slots []timeslot.TimeSlot
	if c.readCache(ctx, timeSlotsKey, &slots) {
		return slots, nil
	}
	return c.loadSlots(ctx)
}

func (c *Catalog) loadSlots(ctx context.Context) ([]timeslot.TimeSlot, error) {
	slots, err := c.store.ListActiveTimeSlots(ctx)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	slices.SortStableFunc(slots, func(a, b timeslot.TimeSlot) int {
		return a.DisplayOrder - b.DisplayOrder
	})
	c.writeCache(ctx, timeSlotsKey, slots)
	return slots, nil
}

func (c *Catalog) Resolve(ctx context.Context, region string) (servicearea.ServiceArea, error) {
	areas, err := c.activeAreas(ctx)
	if err != nil {
		return servicearea.ServiceArea{}, err
	}

	area, ok := servicearea.Resolve(areas, region)
	if !ok {
		return servicearea.ServiceArea{}, errs.ErrNoCoverage
	}

	if ids, overlapping := servicearea.Overlaps(areas)[servicearea.NormalizeRegion(region)]; overlapping {
		strIDs := make([]string, len(ids))
		for i, id := range ids {
			strIDs[i] = id.String()
		}
		slog.WarnContext(ctx, "region claimed by multiple service areas",
			"region", servicearea.NormalizeRegion(region),
			"areas", strings.Join(strIDs, ","),
			"selected", area.ID.String())
	}
	return area, nil
}

func (c *Catalog) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, timeSlotsKey, serviceAreasKey)
}

func (c *Catalog) activeAreas(ctx context.Context) ([]servicearea.ServiceArea, error) {
	var areas []servicearea.ServiceArea
	if c.readCache(ctx, serviceAreasKey, &areas) {
		return areas, nil
	}

	areas, err := c.store.ListActiveServiceAreas(ctx)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	c.writeCache(ctx, serviceAreasKey, areas)
	return areas, nil
}

// Cache failures degrade to a store read.
func (c *Catalog) readCache(ctx context.Context, key string, dest any) bool {
	err := c.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrCacheMiss) {
		slog.WarnContext(ctx, "catalog cache read failed", "key", key, "error", err.Error())
	}
	return false
}

func (c *Catalog) writeCache(ctx context.Context, key string, value any) {
	if err := c.cache.Set(ctx, key, value); err != nil {
		slog.WarnContext(ctx, "catalog cache write failed", "key", key, "error", err.Error())
	}
}
