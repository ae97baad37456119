package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBillingPeriod(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   time.Month
		wantErr bool
	}{
		{name: "valid period", year: 2026, month: time.March, wantErr: false},
		{name: "year too small", year: 1999, month: time.January, wantErr: true},
		{name: "invalid month", year: 2026, month: time.Month(13), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewBillingPeriod(tt.year, tt.month)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.year, p.Year())
			assert.Equal(t, tt.month, p.Month())
		})
	}
}

func TestParseBillingPeriod(t *testing.T) {
	p, err := ParseBillingPeriod("2026-02")
	require.NoError(t, err)
	assert.Equal(t, 2026, p.Year())
	assert.Equal(t, time.February, p.Month())
	assert.Equal(t, "2026-02", p.String())

	_, err = ParseBillingPeriod("2026/02")
	assert.Error(t, err)
	_, err = ParseBillingPeriod("2026-13")
	assert.Error(t, err)
}

func TestBillingPeriod_Navigation(t *testing.T) {
	jan, err := NewBillingPeriod(2026, time.January)
	require.NoError(t, err)

	prev := jan.Previous()
	assert.Equal(t, 2025, prev.Year())
	assert.Equal(t, time.December, prev.Month())

	next := jan.Next()
	assert.Equal(t, 2026, next.Year())
	assert.Equal(t, time.February, next.Month())
}

func TestBillingPeriod_Ordering(t *testing.T) {
	jan, _ := NewBillingPeriod(2026, time.January)
	feb, _ := NewBillingPeriod(2026, time.February)
	janAgain, _ := NewBillingPeriod(2026, time.January)

	assert.True(t, jan.Before(feb))
	assert.False(t, feb.Before(jan))
	assert.True(t, jan.Equals(janAgain))
}

func TestBillingPeriod_Bounds(t *testing.T) {
	p, _ := NewBillingPeriod(2026, time.February)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), p.Start())
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), p.End())

	inside := time.Date(2026, time.February, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, p, BillingPeriodOf(inside))
}
