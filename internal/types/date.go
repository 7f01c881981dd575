package types

import (
	"fmt"
	"time"
)

// NextBillingDate calculates the next billing date based on the given start time,
// billing period, and billing period unit (the frequency multiplier).
// For example:
// - If billing period is MONTHLY and unit is 2, we add two months.
// - If billing period is ANNUAL and unit is 1, we add one year.
// - If billing period is WEEKLY and unit is 3, we add 21 days (3 weeks).
// This function clamps month boundary overflows, so Jan 31 + 1 month is Feb 28/29.
func NextBillingDate(start time.Time, unit int, period BillingPeriod) (time.Time, error) {
	if unit <= 0 {
		return start, fmt.Errorf("billing period unit must be a positive integer, got %d", unit)
	}

	switch period {
	case BILLING_PERIOD_DAILY:
		return AddClampedDate(start, 0, 0, unit), nil
	case BILLING_PERIOD_WEEKLY:
		return AddClampedDate(start, 0, 0, 7*unit), nil
	case BILLING_PERIOD_MONTHLY:
		return AddClampedDate(start, 0, unit, 0), nil
	case BILLING_PERIOD_QUARTERLY:
		return AddClampedDate(start, 0, 3*unit, 0), nil
	case BILLING_PERIOD_HALF_YEAR:
		return AddClampedDate(start, 0, 6*unit, 0), nil
	case BILLING_PERIOD_ANNUAL:
		return AddClampedDate(start, unit, 0, 0), nil
	default:
		return start, fmt.Errorf("invalid billing period type: %s", period)
	}
}

// AddClampedDate behaves like time.AddDate except that day-of-month
// overflow clamps to the last valid day of the target month instead of
// rolling into the next one.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)

	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the new month
	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.Add(-24 * time.Hour).Day()

	newD := d + days
	if days == 0 && newD > lastDay {
		// Clamp to last valid day
		newD = lastDay
	}

	base := time.Date(newY, newM, 1, h, min, sec, t.Nanosecond(), t.Location())
	return base.AddDate(0, 0, newD-1)
}

// DaysBetween returns the number of whole calendar days from start to
// end in UTC, negative when end precedes start.
func DaysBetween(start, end time.Time) int {
	s := ToDateUTC(start)
	e := ToDateUTC(end)
	return int(e.Sub(s).Hours() / 24)
}

// ToDateUTC truncates a timestamp to midnight UTC.
func ToDateUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
