package subscription

import (
	"sort"
	"time"

	"github.com/billforge/billforge/internal/types"
)

// Event is one record of the append-only subscription lifecycle log.
// Events are immutable once written except for the Active flag, which
// flips true to false when a later operation supersedes the event.
type Event struct {
	// ID is the unique identifier for the event
	ID string `db:"id" json:"id"`

	// SubscriptionID is the owning subscription
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`

	// Kind is the lifecycle event kind
	Kind types.SubscriptionEventKind `db:"kind" json:"kind"`

	// EffectiveAt is the date the state change takes effect
	EffectiveAt time.Time `db:"effective_at" json:"effective_at"`

	// RecordedAt is when the event was persisted
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`

	// TotalOrdering is the per-subscription monotonically increasing
	// sequence number breaking same-effective-date ties. It is assigned
	// by the event store at append time, never by the caller.
	TotalOrdering int64 `db:"total_ordering" json:"total_ordering"`

	// Active marks whether the event still contributes to replay.
	// Events are never physically removed, only deactivated.
	Active bool `db:"active" json:"active"`

	// PlanName is the target plan for create/transfer/change/recreate events
	PlanName string `db:"plan_name" json:"plan_name,omitempty"`

	// PhaseName is the target phase for phase transitions and the
	// initial phase for the starting kinds
	PhaseName string `db:"phase_name" json:"phase_name,omitempty"`

	// BillCycleDay is the new anchor day for bcd_update events
	BillCycleDay types.BillingCycleDay `db:"bill_cycle_day" json:"bill_cycle_day,omitempty"`

	// TargetEventID is the event superseded by an uncancel/undo_change marker
	TargetEventID string `db:"target_event_id" json:"target_event_id,omitempty"`

	types.BaseModel
}

// Clone returns a copy of the event safe to mutate independently
func (e *Event) Clone() *Event {
	clone := *e
	return &clone
}

// Before orders events by (EffectiveAt, TotalOrdering). Ties on the
// effective date are always broken by the sequence number, never by
// collection position.
func (e *Event) Before(other *Event) bool {
	if !e.EffectiveAt.Equal(other.EffectiveAt) {
		return e.EffectiveAt.Before(other.EffectiveAt)
	}
	return e.TotalOrdering < other.TotalOrdering
}

// SortEvents sorts the slice in place by (EffectiveAt, TotalOrdering)
func SortEvents(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Before(events[j])
	})
}

// CloneEvents returns a deep copy of the slice
func CloneEvents(events []*Event) []*Event {
	out := make([]*Event, 0, len(events))
	for _, e := range events {
		out = append(out, e.Clone())
	}
	return out
}

// MaxTotalOrdering returns the highest sequence number in the slice,
// zero when the slice is empty.
func MaxTotalOrdering(events []*Event) int64 {
	var max int64
	for _, e := range events {
		if e.TotalOrdering > max {
			max = e.TotalOrdering
		}
	}
	return max
}
