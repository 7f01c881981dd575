package proration

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingIntervalDetail_FutureBillingDateFor(t *testing.T) {
	detail := newBillingIntervalDetail(Params{
		StartDate:     date(2024, 1, 15),
		TargetDate:    date(2024, 1, 15),
		BillCycleDay:  31,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
		BillingMode:   types.BillingModeInAdvance,
		PeriodUnit:    1,
	})

	require.True(t, date(2024, 1, 31).Equal(detail.FirstBillingCycleDate))

	// Each cycle date is derived from the anchor in one step, so the
	// February clamp does not pull March and April off day 31
	expected := []time.Time{
		date(2024, 1, 31),
		date(2024, 2, 29),
		date(2024, 3, 31),
		date(2024, 4, 30),
		date(2024, 5, 31),
	}
	for i, want := range expected {
		got := detail.FutureBillingDateFor(i)
		assert.True(t, want.Equal(got), "cycle date %d: expected %s got %s", i, want, got)
	}
}

func TestBillingIntervalDetail_EffectiveEndDate(t *testing.T) {
	tests := []struct {
		name            string
		params          Params
		expectedEnd     time.Time
		expectedLastBCD time.Time
	}{
		{
			name: "open_ended_ends_on_target",
			params: Params{
				StartDate:     date(2024, 1, 1),
				TargetDate:    date(2024, 3, 10),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
				PeriodUnit:    1,
			},
			expectedEnd:     date(2024, 3, 10),
			expectedLastBCD: date(2024, 3, 1),
		},
		{
			name: "subscription_end_caps_the_target_boundary",
			params: Params{
				StartDate:     date(2024, 1, 1),
				EndDate:       types.ToNillableTime(date(2024, 3, 15)),
				TargetDate:    date(2024, 6, 1),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
				PeriodUnit:    1,
			},
			expectedEnd:     date(2024, 3, 15),
			expectedLastBCD: date(2024, 3, 1),
		},
		{
			name: "target_before_first_boundary_clamps_last_to_first",
			params: Params{
				StartDate:     date(2024, 1, 15),
				TargetDate:    date(2024, 1, 20),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
				PeriodUnit:    1,
			},
			expectedEnd:     date(2024, 2, 1),
			expectedLastBCD: date(2024, 2, 1),
		},
		{
			name: "multi_month_unit_keeps_last_cycle_on_grid",
			params: Params{
				StartDate:     date(2024, 1, 1),
				TargetDate:    date(2024, 3, 10),
				BillCycleDay:  1,
				BillingPeriod: types.BILLING_PERIOD_MONTHLY,
				BillingMode:   types.BillingModeInAdvance,
				PeriodUnit:    2,
			},
			expectedEnd:     date(2024, 3, 10),
			expectedLastBCD: date(2024, 3, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail := newBillingIntervalDetail(tt.params)
			assert.True(t, tt.expectedEnd.Equal(detail.EffectiveEndDate),
				"effective end: expected %s got %s", tt.expectedEnd, detail.EffectiveEndDate)
			assert.True(t, tt.expectedLastBCD.Equal(detail.LastBillingCycleDate),
				"last cycle date: expected %s got %s", tt.expectedLastBCD, detail.LastBillingCycleDate)
		})
	}
}
