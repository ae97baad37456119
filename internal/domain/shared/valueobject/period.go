package valueobject

import (
	"fmt"
	"time"
)

// BillingPeriod identifies a calendar month used for invoice generation
// and duplicate-billing checks.
type BillingPeriod struct {
	year  int
	month time.Month
}

// NewBillingPeriod creates a BillingPeriod for the given year and month
func NewBillingPeriod(year int, month time.Month) (BillingPeriod, error) {
	if year < 2000 || year > 2200 {
		return BillingPeriod{}, fmt.Errorf("year out of range: %d", year)
	}
	if month < time.January || month > time.December {
		return BillingPeriod{}, fmt.Errorf("invalid month: %d", month)
	}
	return BillingPeriod{year: year, month: month}, nil
}

// BillingPeriodOf returns the period containing the given time
func BillingPeriodOf(t time.Time) BillingPeriod {
	return BillingPeriod{year: t.Year(), month: t.Month()}
}

// ParseBillingPeriod parses a period in "YYYY-MM" format
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return BillingPeriod{}, fmt.Errorf("invalid billing period %q: %w", s, err)
	}
	return NewBillingPeriod(t.Year(), t.Month())
}

// Year returns the period's year
func (p BillingPeriod) Year() int {
	return p.year
}

// Month returns the period's month
func (p BillingPeriod) Month() time.Month {
	return p.month
}

// IsZero returns true if the period is the zero value
func (p BillingPeriod) IsZero() bool {
	return p.year == 0 && p.month == 0
}

// String formats the period as "YYYY-MM"
func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.year, int(p.month))
}

// Start returns the first instant of the period in UTC
func (p BillingPeriod) Start() time.Time {
	return time.Date(p.year, p.month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following period in UTC
func (p BillingPeriod) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Previous returns the period one month earlier
func (p BillingPeriod) Previous() BillingPeriod {
	t := p.Start().AddDate(0, -1, 0)
	return BillingPeriod{year: t.Year(), month: t.Month()}
}

// Next returns the period one month later
func (p BillingPeriod) Next() BillingPeriod {
	t := p.End()
	return BillingPeriod{year: t.Year(), month: t.Month()}
}

// Before reports whether p is strictly earlier than other
func (p BillingPeriod) Before(other BillingPeriod) bool {
	if p.year != other.year {
		return p.year < other.year
	}
	return p.month < other.month
}

// Equals reports whether both periods identify the same month
func (p BillingPeriod) Equals(other BillingPeriod) bool {
	return p.year == other.year && p.month == other.month
}
