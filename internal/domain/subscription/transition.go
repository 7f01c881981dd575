package subscription

import (
	"time"

	"github.com/billforge/billforge/internal/types"
)

// Transition is one derived state change in a subscription's replayed
// timeline. Transitions are never persisted; they are recomputed from
// the active event set on demand.
type Transition struct {
	SubscriptionID string                      `json:"subscription_id"`
	EventID        string                      `json:"event_id"`
	EventKind      types.SubscriptionEventKind `json:"event_kind"`

	EffectiveAt time.Time `json:"effective_at"`

	// TotalOrdering disambiguates multiple transitions sharing one
	// effective date, e.g. an immediate cancel following a same-day change
	TotalOrdering int64 `json:"total_ordering"`

	PreviousState        types.SubscriptionState `json:"previous_state,omitempty"`
	PreviousPlanName     string                  `json:"previous_plan_name,omitempty"`
	PreviousPhaseName    string                  `json:"previous_phase_name,omitempty"`
	PreviousBillCycleDay types.BillingCycleDay   `json:"previous_bill_cycle_day,omitempty"`

	NextState        types.SubscriptionState `json:"next_state,omitempty"`
	NextPlanName     string                  `json:"next_plan_name,omitempty"`
	NextPhaseName    string                  `json:"next_phase_name,omitempty"`
	NextBillCycleDay types.BillingCycleDay   `json:"next_bill_cycle_day,omitempty"`

	// Pretty names are catalog resolutions; empty when the lookup
	// degraded to unresolved
	NextPlanPrettyName  string `json:"next_plan_pretty_name,omitempty"`
	NextPhasePrettyName string `json:"next_phase_pretty_name,omitempty"`
}

// IsStarting reports whether the transition opens an active segment
func (t *Transition) IsStarting() bool {
	return t.EventKind.IsStarting()
}

// IsCancelling reports whether the transition closes the subscription
func (t *Transition) IsCancelling() bool {
	return t.EventKind == types.SubscriptionEventCancel
}
