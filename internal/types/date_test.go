package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddClampedDate(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		years    int
		months   int
		days     int
		expected time.Time
	}{
		{
			name:     "plain_month_add",
			start:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "jan_31_clamps_to_leap_feb",
			start:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "jan_31_clamps_to_feb_28",
			start:    time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "year_wrap",
			start:    time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC),
			months:   3,
			expected: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "negative_months",
			start:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			months:   -1,
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "day_add_never_clamps",
			start:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			days:     30,
			expected: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "leap_day_plus_year",
			start:    time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			years:    1,
			expected: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddClampedDate(tt.start, tt.years, tt.months, tt.days)
			assert.True(t, got.Equal(tt.expected), "got %s, want %s", got, tt.expected)
		})
	}
}

func TestNextBillingDate(t *testing.T) {
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		unit     int
		period   BillingPeriod
		expected time.Time
	}{
		{"monthly", 1, BILLING_PERIOD_MONTHLY, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"bimonthly", 2, BILLING_PERIOD_MONTHLY, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		{"quarterly", 1, BILLING_PERIOD_QUARTERLY, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)},
		{"half_year", 1, BILLING_PERIOD_HALF_YEAR, time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)},
		{"annual", 1, BILLING_PERIOD_ANNUAL, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"weekly", 3, BILLING_PERIOD_WEEKLY, time.Date(2024, 2, 21, 0, 0, 0, 0, time.UTC)},
		{"daily", 10, BILLING_PERIOD_DAILY, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextBillingDate(start, tt.unit, tt.period)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.expected), "got %s, want %s", got, tt.expected)
		})
	}

	t.Run("invalid_unit", func(t *testing.T) {
		_, err := NextBillingDate(start, 0, BILLING_PERIOD_MONTHLY)
		require.Error(t, err)
	})

	t.Run("invalid_period", func(t *testing.T) {
		_, err := NextBillingDate(start, 1, BillingPeriod("fortnightly"))
		require.Error(t, err)
	})
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 31, DaysBetween(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 29, DaysBetween(
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, DaysBetween(
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	// Time of day is irrelevant
	assert.Equal(t, 1, DaysBetween(
		time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)))
}
