package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/service/catalog"
)

const day = 24 * time.Hour

// Result is the derived staleness view of an item.
type Result struct {
	ElapsedDays int
	PercentUsed int
	Status      domain.Status
}

// DisplayPercent clamps PercentUsed to [0, 100] for progress bars.
func (r Result) DisplayPercent() int {
	switch {
	case r.PercentUsed < 0:
		return 0
	case r.PercentUsed > 100:
		return 100
	default:
		return r.PercentUsed
	}
}

// Calculator classifies items on a linear time-decay model. It holds no
// mutable state; the same inputs on the same calendar day give the same result.
type Calculator struct {
	catalog *catalog.Catalog
	loc     *time.Location
	now     func() time.Time
}

// NewCalculator builds a calculator. A nil location means time.Local and a nil
// clock means time.Now.
func NewCalculator(cat *catalog.Catalog, loc *time.Location, now func() time.Time) *Calculator {
	if cat == nil {
		cat = catalog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Calculator{
		catalog: cat,
		loc:     loc,
		now:     now,
	}
}

// Now returns the current instant of the injected clock.
func (c *Calculator) Now() time.Time {
	return c.now()
}

// Classify computes elapsed days, percent used and status. Thresholds are
// applied to the exact ratio elapsed/duration, so 79.5% is still a warning.
// A non-positive duration falls back to catalog.GlobalFallbackDays.
func (c *Calculator) Classify(dateLastServiced time.Time, expectedDurationDays int) Result {
	if expectedDurationDays <= 0 {
		expectedDurationDays = catalog.GlobalFallbackDays
	}

	elapsed := c.ElapsedDays(dateLastServiced)

	return Result{
		ElapsedDays: elapsed,
		PercentUsed: percentUsed(elapsed, expectedDurationDays),
		Status:      classify(elapsed, expectedDurationDays),
	}
}

// ClassifyItem classifies a stored item, substituting the catalog default
// when a legacy record carries no usable duration. An item without a service
// date is reported as good.
func (c *Calculator) ClassifyItem(item *domain.MaintenanceItem) Result {
	if item.DateLastServiced.IsZero() {
		return Result{Status: domain.StatusGood}
	}

	duration := item.ExpectedDurationDays
	if duration <= 0 {
		duration = c.catalog.DefaultDuration(item.Category, item.ItemType)
	}
	return c.Classify(item.DateLastServiced, duration)
}

// ElapsedDays is the number of calendar days from the service date to today.
// It is negative for a future service date.
func (c *Calculator) ElapsedDays(dateLastServiced time.Time) int {
	today := c.Today()
	serviced := c.DateOf(dateLastServiced)
	return int(today.Sub(serviced) / day)
}

// Today returns the current calendar date in the configured location.
func (c *Calculator) Today() time.Time {
	return c.civil(c.now().In(c.loc))
}

// DateOf normalizes t to a calendar date, represented as midnight UTC.
// A value already at midnight UTC is treated as a date; any other instant is
// dated in the configured location.
func (c *Calculator) DateOf(t time.Time) time.Time {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u
	}
	return c.civil(t.In(c.loc))
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the calendar date.
func (c *Calculator) ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}

	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD or RFC 3339", domain.ErrInvalidInput, raw)
	}
	return c.civil(t.In(c.loc)), nil
}

func (c *Calculator) civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func classify(elapsed, duration int) domain.Status {
	switch {
	case int64(elapsed)*5 >= int64(duration)*4:
		return domain.StatusReplace
	case int64(elapsed)*2 >= int64(duration):
		return domain.StatusWarning
	default:
		return domain.StatusGood
	}
}

func percentUsed(elapsed, duration int) int {
	return int(math.Floor(100*float64(elapsed)/float64(duration) + 0.5))
}
