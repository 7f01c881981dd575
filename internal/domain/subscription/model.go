package subscription

import (
	"time"

	"github.com/billforge/billforge/internal/types"
)

type Subscription struct {
	// ID is the unique identifier for the subscription
	ID string `db:"id" json:"id"`

	// LookupKey is the external key used to look up the subscription in our system
	LookupKey string `db:"lookup_key" json:"lookup_key"`

	// CustomerID is the identifier for the customer in our system
	CustomerID string `db:"customer_id" json:"customer_id"`

	// PlanName is the catalog plan the subscription was created on. The
	// plan effective on any later date is derived by replaying events.
	PlanName string `db:"plan_name" json:"plan_name"`

	// Category is base or addon. An add-on's lifetime is conditioned on
	// the base subscription identified by BaseSubscriptionID.
	Category types.ProductCategory `db:"category" json:"category"`

	// BaseSubscriptionID is set only for add-ons
	BaseSubscriptionID string `db:"base_subscription_id" json:"base_subscription_id,omitempty"`

	// StartDate is the start date of the subscription
	StartDate time.Time `db:"start_date" json:"start_date"`

	// EndDate is the end date of the subscription, nil while open ended
	EndDate *time.Time `db:"end_date" json:"end_date"`

	// BillCycleDay anchors recurring billing boundaries
	BillCycleDay types.BillingCycleDay `db:"bill_cycle_day" json:"bill_cycle_day"`

	// BillingPeriod is the period of the billing cycle
	BillingPeriod types.BillingPeriod `db:"billing_period" json:"billing_period"`

	// BillingPeriodUnit is the frequency multiplier of the billing period
	BillingPeriodUnit int `db:"billing_period_unit" json:"billing_period_unit"`

	// BillingMode is in_advance or in_arrears
	BillingMode types.BillingMode `db:"billing_mode" json:"billing_mode"`

	types.BaseModel
}
