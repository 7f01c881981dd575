package timeline

import (
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/types"
)

// MergeDryRunEvents overlays hypothetical, non persisted events onto a
// real event list for what-if computations. For each hypothetical event
// targeting the subscription:
//   - every real event strictly after the hypothetical's effective date
//     is dropped from the merged view
//   - a change landing on the same effective date as an existing create
//     or transfer replaces it and is retagged as a create; a change that
//     coincides with the start date is the start
//   - the hypothetical gets a total ordering one greater than the
//     maximum remaining in the merged set, keeping tie breaks deterministic
//
// Neither input list is mutated; the result is a fresh list of clones.
func MergeDryRunEvents(subscriptionID string, events []*subscription.Event, dryRunEvents []*subscription.Event) []*subscription.Event {
	merged := subscription.CloneEvents(events)
	if len(dryRunEvents) == 0 {
		return merged
	}

	for _, dryRun := range dryRunEvents {
		if dryRun.SubscriptionID != subscriptionID {
			continue
		}

		cur := dryRun.Clone()
		kept := make([]*subscription.Event, 0, len(merged)+1)
		for _, event := range merged {
			if event.EffectiveAt.After(cur.EffectiveAt) {
				continue
			}
			if cur.Kind == types.SubscriptionEventChange &&
				event.Kind.IsStarting() &&
				event.EffectiveAt.Equal(cur.EffectiveAt) {
				cur.Kind = types.SubscriptionEventCreate
				continue
			}
			kept = append(kept, event)
		}

		cur.Active = true
		cur.TotalOrdering = subscription.MaxTotalOrdering(kept) + 1
		merged = append(kept, cur)
		subscription.SortEvents(merged)
	}

	return merged
}
