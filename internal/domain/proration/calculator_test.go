package proration

import (
	"testing"
	"time"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ratio(num, den int64) decimal.Decimal {
	return decimal.NewFromInt(num).Div(decimal.NewFromInt(den))
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		params   Params
		expected []BillableSegment
		nextBCD  time.Time
	}{
		{
			name: "whole_periods_only",
			params: Params{
				StartDate:     date(2024, 1, 1),
				TargetDate:    date(2024, 3, 1),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
			},
			expected: []BillableSegment{
				{StartDate: date(2024, 1, 1), EndDate: date(2024, 2, 1), CycleCount: decimal.NewFromInt(1)},
				{StartDate: date(2024, 2, 1), EndDate: date(2024, 3, 1), CycleCount: decimal.NewFromInt(1)},
			},
			nextBCD: date(2024, 3, 1),
		},
		{
			name: "open_ended_target_on_boundary_bills_whole_periods",
			params: Params{
				StartDate:     date(2020, 1, 1),
				TargetDate:    date(2020, 3, 1),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
			},
			expected: []BillableSegment{
				{StartDate: date(2020, 1, 1), EndDate: date(2020, 2, 1), CycleCount: decimal.NewFromInt(1)},
				{StartDate: date(2020, 2, 1), EndDate: date(2020, 3, 1), CycleCount: decimal.NewFromInt(1)},
			},
			nextBCD: date(2020, 3, 1),
		},
		{
			name: "open_ended_target_mid_period_adds_trailing_proration",
			params: Params{
				StartDate:     date(2020, 1, 1),
				TargetDate:    date(2020, 3, 15),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
			},
			expected: []BillableSegment{
				{StartDate: date(2020, 1, 1), EndDate: date(2020, 2, 1), CycleCount: decimal.NewFromInt(1)},
				{StartDate: date(2020, 2, 1), EndDate: date(2020, 3, 1), CycleCount: decimal.NewFromInt(1)},
				// 14 of the 31 days in [Mar 1, Apr 1)
				{StartDate: date(2020, 3, 1), EndDate: date(2020, 3, 15), CycleCount: ratio(14, 31)},
			},
			nextBCD: date(2020, 4, 1),
		},
		{
			name: "leading_proration_mid_month_start",
			params: Params{
				StartDate:     date(2024, 1, 15),
				TargetDate:    date(2024, 1, 15),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
			},
			expected: []BillableSegment{
				// 17 of the 31 days in [Jan 1, Feb 1)
				{StartDate: date(2024, 1, 15), EndDate: date(2024, 2, 1), CycleCount: ratio(17, 31)},
			},
			nextBCD: date(2024, 2, 1),
		},
		{
			name: "trailing_proration_mid_month_end",
			params: Params{
				StartDate:     date(2024, 1, 1),
				EndDate:       types.ToNillableTime(date(2024, 3, 15)),
				TargetDate:    date(2024, 4, 1),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
			},
			expected: []BillableSegment{
				{StartDate: date(2024, 1, 1), EndDate: date(2024, 2, 1), CycleCount: decimal.NewFromInt(1)},
				{StartDate: date(2024, 2, 1), EndDate: date(2024, 3, 1), CycleCount: decimal.NewFromInt(1)},
				// 14 of the 31 days in [Mar 1, Apr 1)
				{StartDate: date(2024, 3, 1), EndDate: date(2024, 3, 15), CycleCount: ratio(14, 31)},
			},
			nextBCD: date(2024, 4, 1),
		},
		{
			name: "end_before_first_cycle_date_single_segment",
			params: Params{
				StartDate:     date(2024, 1, 15),
				EndDate:       types.ToNillableTime(date(2024, 1, 25)),
				TargetDate:    date(2024, 1, 25),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
			},
			expected: []BillableSegment{
				// period length is days(Dec 25, Jan 25) = 31
				{StartDate: date(2024, 1, 15), EndDate: date(2024, 1, 25), CycleCount: ratio(10, 31)},
			},
			nextBCD: date(2024, 2, 1),
		},
		{
			name: "sub_day_interval_bills_nothing",
			params: Params{
				StartDate:     date(2024, 1, 15),
				EndDate:       types.ToNillableTime(date(2024, 1, 15)),
				TargetDate:    date(2024, 1, 15),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
			},
			expected: []BillableSegment{},
			nextBCD:  date(2024, 2, 1),
		},
		{
			name: "cycle_day_clamps_in_short_months",
			params: Params{
				StartDate:     date(2024, 1, 15),
				TargetDate:    date(2024, 4, 30),
				BillCycleDay:  31,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
			},
			expected: []BillableSegment{
				{StartDate: date(2024, 1, 15), EndDate: date(2024, 1, 31), CycleCount: ratio(16, 31)},
				{StartDate: date(2024, 1, 31), EndDate: date(2024, 2, 29), CycleCount: decimal.NewFromInt(1)},
				// clamp to Feb 29 does not drift later cycles off day 31
				{StartDate: date(2024, 2, 29), EndDate: date(2024, 3, 31), CycleCount: decimal.NewFromInt(1)},
				{StartDate: date(2024, 3, 31), EndDate: date(2024, 4, 30), CycleCount: decimal.NewFromInt(1)},
			},
			nextBCD: date(2024, 4, 30),
		},
		{
			name: "in_arrears_first_period_ends_one_period_past_start",
			params: Params{
				StartDate:     date(2024, 1, 1),
				TargetDate:    date(2024, 1, 1),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInArrears,
			},
			expected: []BillableSegment{
				{StartDate: date(2024, 1, 1), EndDate: date(2024, 2, 1), CycleCount: decimal.NewFromInt(1)},
			},
			nextBCD: date(2024, 2, 1),
		},
		{
			name: "weekly_period_anchors_on_start",
			params: Params{
				StartDate:     date(2024, 1, 3),
				TargetDate:    date(2024, 1, 24),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_WEEKLY,
				BillingMode:   types.BillingModeInAdvance,
			},
			expected: []BillableSegment{
				{StartDate: date(2024, 1, 3), EndDate: date(2024, 1, 10), CycleCount: decimal.NewFromInt(1)},
				{StartDate: date(2024, 1, 10), EndDate: date(2024, 1, 17), CycleCount: decimal.NewFromInt(1)},
				{StartDate: date(2024, 1, 17), EndDate: date(2024, 1, 24), CycleCount: decimal.NewFromInt(1)},
			},
			nextBCD: date(2024, 1, 24),
		},
		{
			name: "annual_period_with_leading_proration",
			params: Params{
				StartDate:     date(2024, 3, 15),
				TargetDate:    date(2024, 3, 15),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_ANNUAL,
				BillingMode:   types.BillingModeInAdvance,
			},
			expected: []BillableSegment{
				// days(Mar 15 2024, Mar 1 2025) over days(Mar 1 2024, Mar 1 2025)
				{StartDate: date(2024, 3, 15), EndDate: date(2025, 3, 1), CycleCount: ratio(351, 365)},
			},
			nextBCD: date(2025, 3, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Generate(tt.params)
			require.NoError(t, err)
			require.Len(t, result.Segments, len(tt.expected))

			for i, expected := range tt.expected {
				got := result.Segments[i]
				assert.True(t, expected.StartDate.Equal(got.StartDate),
					"segment %d start: expected %s got %s", i, expected.StartDate, got.StartDate)
				assert.True(t, expected.EndDate.Equal(got.EndDate),
					"segment %d end: expected %s got %s", i, expected.EndDate, got.EndDate)
				assert.True(t, expected.CycleCount.Equal(got.CycleCount),
					"segment %d cycle count: expected %s got %s", i, expected.CycleCount, got.CycleCount)
			}
			assert.True(t, tt.nextBCD.Equal(result.NextBillingCycleDate))
		})
	}
}

func TestGenerate_SegmentsTile(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{
			name: "monthly_with_leading_and_trailing",
			params: Params{
				StartDate:     date(2024, 1, 10),
				EndDate:       types.ToNillableTime(date(2024, 6, 20)),
				TargetDate:    date(2024, 12, 1),
				BillCycleDay:  5,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
			},
		},
		{
			name: "quarterly_with_cycle_day_clamp",
			params: Params{
				StartDate:     date(2023, 11, 20),
				TargetDate:    date(2024, 9, 1),
				BillCycleDay:  30,
				BillingPeriod: types.BILLING_PERIOD_QUARTERLY,
				BillingMode:   types.BillingModeInAdvance,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Generate(tt.params)
			require.NoError(t, err)
			require.NotEmpty(t, result.Segments)

			for i, seg := range result.Segments {
				assert.True(t, seg.StartDate.Before(seg.EndDate),
					"segment %d must span at least a day", i)
				assert.True(t, seg.CycleCount.GreaterThan(decimal.Zero),
					"segment %d cycle count must be positive", i)
				if i > 0 {
					assert.True(t, result.Segments[i-1].EndDate.Equal(seg.StartDate),
						"segment %d must start where segment %d ends", i, i-1)
				}
			}

			first := result.Segments[0]
			assert.True(t, first.StartDate.Equal(types.ToDateUTC(tt.params.StartDate)))
		})
	}
}

func TestGenerate_InvalidInput(t *testing.T) {
	base := Params{
		StartDate:     date(2024, 1, 15),
		TargetDate:    date(2024, 2, 15),
		BillCycleDay:  1,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
		BillingMode:   types.BillingModeInAdvance,
	}

	t.Run("end_before_start", func(t *testing.T) {
		params := base
		params.EndDate = types.ToNillableTime(date(2024, 1, 1))
		result, err := Generate(params)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, ierr.IsInvalidDateSequence(err))
	})

	t.Run("target_before_start", func(t *testing.T) {
		params := base
		params.TargetDate = date(2024, 1, 1)
		result, err := Generate(params)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, ierr.IsInvalidDateSequence(err))
	})

	t.Run("invalid_billing_period", func(t *testing.T) {
		params := base
		params.BillingPeriod = "FORTNIGHTLY"
		_, err := Generate(params)
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("invalid_cycle_day", func(t *testing.T) {
		params := base
		params.BillCycleDay = 45
		_, err := Generate(params)
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})
}
