package proration

import (
	"time"

	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Params holds all necessary input for generating billable segments.
type Params struct {
	// StartDate is the start of the billable interval (subscription start
	// or previous charged-through date)
	StartDate time.Time

	// EndDate is the end of the subscription, nil while open ended
	EndDate *time.Time

	// TargetDate is the evaluation date the invoice is generated for
	TargetDate time.Time

	// BillCycleDay anchors recurring billing boundaries
	BillCycleDay types.BillingCycleDay

	// BillingPeriod is the length of one billing cycle
	BillingPeriod types.BillingPeriod

	// PeriodUnit is the frequency multiplier of the billing period,
	// defaults to 1 when zero
	PeriodUnit int

	// BillingMode is in_advance or in_arrears
	BillingMode types.BillingMode
}

// BillableSegment is one invoice-ready date segment. CycleCount is 1
// for a whole billing period and an exact fractional ratio in (0,1) for
// a leading or trailing proration. Segments produced by one Generate
// call tile the covered interval: each segment's end equals the next
// segment's start.
type BillableSegment struct {
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	CycleCount decimal.Decimal `json:"cycle_count"`
}

// IsWholePeriod reports whether the segment covers one full billing period
func (s BillableSegment) IsWholePeriod() bool {
	return s.CycleCount.Equal(decimal.NewFromInt(1))
}

// BillingIntervalDetail is the derived view of the raw interval inputs:
// the first billing cycle date at or after start, the last billing
// cycle date at or before the effective end, and the effective end
// itself. It is recomputed on demand and never persisted.
type BillingIntervalDetail struct {
	FirstBillingCycleDate time.Time `json:"first_billing_cycle_date"`
	LastBillingCycleDate  time.Time `json:"last_billing_cycle_date"`
	EffectiveEndDate      time.Time `json:"effective_end_date"`

	billCycleDay types.BillingCycleDay
	period       types.BillingPeriod
	unit         int
}

// Result is the output of one Generate call. NextBillingCycleDate is
// the first cycle boundary after the covered interval, used by callers
// to schedule the next invoice run.
type Result struct {
	Segments             []BillableSegment     `json:"segments"`
	Detail               BillingIntervalDetail `json:"detail"`
	NextBillingCycleDate time.Time             `json:"next_billing_cycle_date"`
}
