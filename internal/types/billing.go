package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
)

// BillingPeriod is the length of a recurring billing cycle ex MONTHLY, ANNUAL
type BillingPeriod string

const (
	BILLING_PERIOD_DAILY     BillingPeriod = "DAILY"
	BILLING_PERIOD_WEEKLY    BillingPeriod = "WEEKLY"
	BILLING_PERIOD_MONTHLY   BillingPeriod = "MONTHLY"
	BILLING_PERIOD_QUARTERLY BillingPeriod = "QUARTERLY"
	BILLING_PERIOD_HALF_YEAR BillingPeriod = "HALF_YEARLY"
	BILLING_PERIOD_ANNUAL    BillingPeriod = "ANNUAL"
)

func (p BillingPeriod) String() string {
	return string(p)
}

func (p BillingPeriod) Validate() error {
	allowed := []BillingPeriod{
		BILLING_PERIOD_DAILY,
		BILLING_PERIOD_WEEKLY,
		BILLING_PERIOD_MONTHLY,
		BILLING_PERIOD_QUARTERLY,
		BILLING_PERIOD_HALF_YEAR,
		BILLING_PERIOD_ANNUAL,
	}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid billing period").
			WithHint("Invalid billing period").
			WithReportableDetails(map[string]any{
				"billing_period": p,
				"allowed_values": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// NumberOfMonths returns the month length of the period, zero for the
// day and week based periods.
func (p BillingPeriod) NumberOfMonths() int {
	switch p {
	case BILLING_PERIOD_MONTHLY:
		return 1
	case BILLING_PERIOD_QUARTERLY:
		return 3
	case BILLING_PERIOD_HALF_YEAR:
		return 6
	case BILLING_PERIOD_ANNUAL:
		return 12
	default:
		return 0
	}
}

// NumberOfDays returns the day length of the period, zero for the
// month based periods whose day count varies by calendar month.
func (p BillingPeriod) NumberOfDays() int {
	switch p {
	case BILLING_PERIOD_DAILY:
		return 1
	case BILLING_PERIOD_WEEKLY:
		return 7
	default:
		return 0
	}
}

// BillingMode represents when a billing period is charged relative to
// the service period it covers.
type BillingMode string

const (
	BillingModeInAdvance BillingMode = "in_advance"
	BillingModeInArrears BillingMode = "in_arrears"
)

func (m BillingMode) String() string {
	return string(m)
}

func (m BillingMode) Validate() error {
	allowed := []BillingMode{
		BillingModeInAdvance,
		BillingModeInArrears,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid billing mode").
			WithHint("Billing mode must be in_advance or in_arrears").
			WithReportableDetails(map[string]any{
				"billing_mode":   m,
				"allowed_values": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingCycleDay is the anchor day of month (or week) that aligns
// recurring billing boundaries. For month based periods the valid range
// is 1..31; days beyond the end of a short month clamp to its last day.
type BillingCycleDay int

func (d BillingCycleDay) Validate() error {
	if d < 1 || d > 31 {
		return ierr.NewError("invalid billing cycle day").
			WithHint("Billing cycle day must be between 1 and 31").
			WithReportableDetails(map[string]any{
				"billing_cycle_day": int(d),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
