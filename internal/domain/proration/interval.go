package proration

import (
	"time"

	"github.com/billforge/billforge/internal/types"
)

// newBillingIntervalDetail derives the billing cycle boundaries for a
// validated, date-normalized parameter set.
//
// The first billing cycle date is the earliest date on the cycle grid
// at or after the interval start; for arrears billing the grid is
// shifted one full period past the start. Cycle dates for month based
// periods land on the billing cycle day, clamped to the last day of
// short months; day based periods anchor on the start date itself. The
// effective end is the subscription end when it precedes the target,
// otherwise the target itself, never earlier than the first cycle date
// and always capped by the subscription end. The last billing cycle
// date is the latest grid date at or before the effective end and never
// precedes the first.
func newBillingIntervalDetail(p Params) *BillingIntervalDetail {
	d := &BillingIntervalDetail{
		billCycleDay: p.BillCycleDay,
		period:       p.BillingPeriod,
		unit:         p.PeriodUnit,
	}

	anchor := p.StartDate
	if p.BillingMode == types.BillingModeInArrears {
		anchor = d.shiftPeriods(anchor, 1)
	}
	d.FirstBillingCycleDate = d.cycleDateOnOrAfter(anchor)
	d.EffectiveEndDate = d.calculateEffectiveEndDate(p)
	d.LastBillingCycleDate = d.calculateLastBillingCycleDate()
	return d
}

// FutureBillingDateFor returns the i-th billing cycle date counted from
// the first billing cycle date. Month based periods are computed from
// the anchor in one step and re-aligned on the billing cycle day, so a
// clamp in a short month never shortens later cycles.
func (d *BillingIntervalDetail) FutureBillingDateFor(i int) time.Time {
	return d.shiftPeriods(d.FirstBillingCycleDate, i)
}

// shiftPeriods moves a cycle date by i billing periods, negative i
// moves backwards
func (d *BillingIntervalDetail) shiftPeriods(from time.Time, i int) time.Time {
	if days := d.period.NumberOfDays(); days > 0 {
		return from.AddDate(0, 0, i*days*d.unit)
	}
	months := i * d.period.NumberOfMonths() * d.unit
	shifted := types.AddClampedDate(from, 0, months, 0)
	return d.alignToCycleDay(shifted.Year(), shifted.Month())
}

// plainShift moves any date by i billing periods with month end
// clamping but without re-aligning on the billing cycle day, used for
// proration denominators whose reference date may be off the cycle grid
func (d *BillingIntervalDetail) plainShift(from time.Time, i int) time.Time {
	if days := d.period.NumberOfDays(); days > 0 {
		return from.AddDate(0, 0, i*days*d.unit)
	}
	return types.AddClampedDate(from, 0, i*d.period.NumberOfMonths()*d.unit, 0)
}

// cycleDateOnOrAfter returns the earliest cycle grid date not before
// the given date
func (d *BillingIntervalDetail) cycleDateOnOrAfter(date time.Time) time.Time {
	if d.period.NumberOfDays() > 0 {
		// Day and week based cycles are anchored on the start itself
		return date
	}
	proposed := d.alignToCycleDay(date.Year(), date.Month())
	for proposed.Before(date) {
		shifted := types.AddClampedDate(proposed, 0, d.period.NumberOfMonths()*d.unit, 0)
		proposed = d.alignToCycleDay(shifted.Year(), shifted.Month())
	}
	return proposed
}

func (d *BillingIntervalDetail) calculateEffectiveEndDate(p Params) time.Time {
	if p.EndDate != nil && !p.EndDate.After(p.TargetDate) {
		return *p.EndDate
	}

	candidate := p.TargetDate
	if candidate.Before(d.FirstBillingCycleDate) {
		candidate = d.FirstBillingCycleDate
	}

	if p.EndDate != nil && p.EndDate.Before(candidate) {
		return *p.EndDate
	}
	return candidate
}

func (d *BillingIntervalDetail) calculateLastBillingCycleDate() time.Time {
	proposed := d.FirstBillingCycleDate
	for i := 1; ; i++ {
		next := d.FutureBillingDateFor(i)
		if next.After(d.EffectiveEndDate) {
			break
		}
		proposed = next
	}
	return proposed
}

// numberOfWholePeriods counts the whole billing periods between the
// first and last billing cycle dates
func (d *BillingIntervalDetail) numberOfWholePeriods() int {
	n := 0
	for d.FutureBillingDateFor(n + 1).Compare(d.LastBillingCycleDate) <= 0 {
		n++
	}
	return n
}

// alignToCycleDay builds the cycle date for a given month, clamping the
// billing cycle day to the month's last day when it would overflow
func (d *BillingIntervalDetail) alignToCycleDay(year int, month time.Month) time.Time {
	lastDay := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Day()
	day := int(d.billCycleDay)
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
