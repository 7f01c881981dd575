package proration

import (
	"time"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Generate produces the billable segments covering the interval from
// the start date up to the effective end implied by the target date,
// split on billing cycle boundaries:
//
//   - a leading prorated segment from the start to the first billing
//     cycle date, when the start is not already on the cycle grid
//   - one segment with cycle count 1 per whole billing period
//   - a trailing prorated segment from the last billing cycle date to
//     the effective end, when the end is not on the cycle grid
//
// Proration ratios are exact day-count quotients against the length of
// the enclosing billing period, never rounded here; rounding is an
// invoicing concern. Consecutive segments tile: each segment's end is
// the next segment's start, so no day is billed twice or skipped.
func Generate(params Params) (*Result, error) {
	if err := validateParams(&params); err != nil {
		return nil, err
	}

	detail := newBillingIntervalDetail(params)
	result := &Result{
		Segments: []BillableSegment{},
		Detail:   *detail,
	}

	// Intervals shorter than a day produce nothing
	if params.EndDate != nil && types.DaysBetween(params.StartDate, *params.EndDate) <= 0 {
		result.NextBillingCycleDate = detail.FirstBillingCycleDate
		return result, nil
	}

	// An end on or before the first cycle boundary never reaches a whole
	// period, one prorated segment covers the entire interval
	if params.EndDate != nil && !params.EndDate.After(detail.FirstBillingCycleDate) {
		result.Segments = append(result.Segments, BillableSegment{
			StartDate:  params.StartDate,
			EndDate:    *params.EndDate,
			CycleCount: detail.proRationTo(params.StartDate, *params.EndDate),
		})
		result.NextBillingCycleDate = detail.FirstBillingCycleDate
		return result, nil
	}

	if params.StartDate.Before(detail.FirstBillingCycleDate) {
		result.Segments = append(result.Segments, BillableSegment{
			StartDate:  params.StartDate,
			EndDate:    detail.FirstBillingCycleDate,
			CycleCount: detail.proRationTo(params.StartDate, detail.FirstBillingCycleDate),
		})
	}

	for i := 0; i < detail.numberOfWholePeriods(); i++ {
		segStart := detail.FutureBillingDateFor(i)
		segEnd := detail.FutureBillingDateFor(i + 1)
		if n := len(result.Segments); n > 0 {
			// Tile onto the previous segment even when a month end clamp
			// nudged the computed cycle date
			segStart = result.Segments[n-1].EndDate
		}
		result.Segments = append(result.Segments, BillableSegment{
			StartDate:  segStart,
			EndDate:    segEnd,
			CycleCount: decimal.NewFromInt(1),
		})
	}

	if detail.EffectiveEndDate.After(detail.LastBillingCycleDate) {
		segStart := detail.LastBillingCycleDate
		if n := len(result.Segments); n > 0 {
			segStart = result.Segments[n-1].EndDate
		}
		result.Segments = append(result.Segments, BillableSegment{
			StartDate:  segStart,
			EndDate:    detail.EffectiveEndDate,
			CycleCount: detail.proRationFrom(detail.LastBillingCycleDate, detail.EffectiveEndDate),
		})
	}

	result.NextBillingCycleDate = detail.cycleDateAfterEffectiveEnd()
	return result, nil
}

// proRationTo computes the fraction of the billing period ending at the
// given cycle boundary that the given sub-interval covers
func (d *BillingIntervalDetail) proRationTo(start, boundary time.Time) decimal.Decimal {
	periodStart := d.plainShift(boundary, -1)
	return dayRatio(types.DaysBetween(start, boundary), types.DaysBetween(periodStart, boundary))
}

// proRationFrom computes the fraction of the billing period starting at
// the given cycle boundary that the given sub-interval covers
func (d *BillingIntervalDetail) proRationFrom(boundary, end time.Time) decimal.Decimal {
	periodEnd := d.plainShift(boundary, 1)
	return dayRatio(types.DaysBetween(boundary, end), types.DaysBetween(boundary, periodEnd))
}

func (d *BillingIntervalDetail) cycleDateAfterEffectiveEnd() time.Time {
	for i := 0; ; i++ {
		candidate := d.FutureBillingDateFor(i)
		if candidate.After(d.EffectiveEndDate) || candidate.Equal(d.EffectiveEndDate) {
			return candidate
		}
	}
}

func dayRatio(days, periodDays int) decimal.Decimal {
	if days <= 0 || periodDays <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(int64(periodDays)))
}

func validateParams(p *Params) error {
	if p.PeriodUnit == 0 {
		p.PeriodUnit = 1
	}
	if p.PeriodUnit < 0 {
		return ierr.NewError("invalid billing period unit").
			WithHint("Billing period unit must be a positive integer").
			WithReportableDetails(map[string]any{
				"period_unit": p.PeriodUnit,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := p.BillingPeriod.Validate(); err != nil {
		return err
	}
	if err := p.BillingMode.Validate(); err != nil {
		return err
	}
	if err := p.BillCycleDay.Validate(); err != nil {
		return err
	}

	p.StartDate = types.ToDateUTC(p.StartDate)
	p.TargetDate = types.ToDateUTC(p.TargetDate)
	if p.EndDate != nil {
		end := types.ToDateUTC(*p.EndDate)
		p.EndDate = &end
	}

	if p.StartDate.IsZero() {
		return ierr.NewError("start date is required").
			WithHint("Start date is required").
			Mark(ierr.ErrValidation)
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return ierr.NewError("end date precedes start date").
			WithHintf("end date %s is before start date %s",
				p.EndDate.Format(time.DateOnly), p.StartDate.Format(time.DateOnly)).
			WithReportableDetails(map[string]any{
				"start_date": p.StartDate,
				"end_date":   p.EndDate,
			}).
			Mark(ierr.ErrInvalidDateSequence)
	}
	if p.TargetDate.Before(p.StartDate) {
		return ierr.NewError("target date precedes start date").
			WithHintf("target date %s is before start date %s",
				p.TargetDate.Format(time.DateOnly), p.StartDate.Format(time.DateOnly)).
			WithReportableDetails(map[string]any{
				"start_date":  p.StartDate,
				"target_date": p.TargetDate,
			}).
			Mark(ierr.ErrInvalidDateSequence)
	}
	return nil
}
