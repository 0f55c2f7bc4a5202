package clock

import (
	"sync"
	"time"
)

const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func NewRealClock() Clock {
	return RealClock{}
}

func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock is a settable clock for tests; safe for concurrent bookings.
type MockClock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *MockClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Calendar dates are carried as UTC midnight so they compare and round-trip
// through Postgres `date` columns without zone drift.

func Today(c Clock, loc *time.Location) time.Time {
	now := c.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func AddDays(d time.Time, days int) time.Time {
	return d.AddDate(0, 0, days)
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}
