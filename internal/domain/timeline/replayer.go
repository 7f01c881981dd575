package timeline

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/domain/catalog"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/types"
)

// Replayer reconstructs a subscription's plan, phase and state
// transitions from its active, ordered event list. Replay is
// deterministic: the same active event set yields the same transition
// sequence regardless of the order events were fetched from storage.
type Replayer struct {
	lookup   catalog.Lookup
	resolver *catalog.Resolver
	logger   *logger.Logger
	now      func() time.Time
}

func NewReplayer(lookup catalog.Lookup, resolver *catalog.Resolver, logger *logger.Logger) *Replayer {
	return &Replayer{
		lookup:   lookup,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the wall clock, used by tests and repair simulations
func (r *Replayer) WithClock(now func() time.Time) *Replayer {
	r.now = now
	return r
}

// Replay walks the event list in (EffectiveAt, TotalOrdering) order and
// produces the derived transition list. A cancel is terminal: no
// further transitions are synthesized until a later create or recreate
// opens a new active segment. Inactive events and operation markers
// contribute nothing.
//
// Finding more than one unresolved future phase transition is a fatal
// invariant violation: it indicates corrupted or concurrently written
// state and aborts the replay rather than silently picking one.
func (r *Replayer) Replay(ctx context.Context, events []*subscription.Event) ([]*subscription.Transition, error) {
	sorted := subscription.CloneEvents(events)
	subscription.SortEvents(sorted)

	if err := r.validatePendingPhases(sorted); err != nil {
		return nil, err
	}

	var (
		transitions = make([]*subscription.Transition, 0, len(sorted))

		prevState types.SubscriptionState
		prevPlan  string
		prevPhase string
		prevBCD   types.BillingCycleDay

		cancelled bool
	)

	for _, cur := range sorted {
		if !cur.Active || cur.Kind.IsOperationMarker() {
			continue
		}
		if cancelled && !cur.Kind.IsStarting() {
			continue
		}

		nextState := prevState
		nextPlan := prevPlan
		nextPhase := prevPhase
		nextBCD := prevBCD

		switch cur.Kind {
		case types.SubscriptionEventCreate,
			types.SubscriptionEventTransfer,
			types.SubscriptionEventRecreate:
			// A starting event keeps the superseded state in Previous*,
			// so reopening a cancelled timeline records what it reopened
			nextState = types.SubscriptionStateActive
			nextPlan = cur.PlanName
			nextPhase = cur.PhaseName
			cancelled = false
		case types.SubscriptionEventChange:
			nextPlan = cur.PlanName
			nextPhase = cur.PhaseName
		case types.SubscriptionEventPhaseTransition:
			nextPhase = cur.PhaseName
		case types.SubscriptionEventBcdUpdate:
			nextBCD = cur.BillCycleDay
		case types.SubscriptionEventCancel:
			nextState = types.SubscriptionStateCancelled
			nextPlan = ""
			nextPhase = ""
			cancelled = true
		default:
			return nil, ierr.NewError("unexpected event kind during replay").
				WithHintf("cannot replay event kind %s", cur.Kind).
				WithReportableDetails(map[string]any{
					"event_id":        cur.ID,
					"subscription_id": cur.SubscriptionID,
					"kind":            cur.Kind,
				}).
				Mark(ierr.ErrInternal)
		}

		transition := &subscription.Transition{
			SubscriptionID:       cur.SubscriptionID,
			EventID:              cur.ID,
			EventKind:            cur.Kind,
			EffectiveAt:          cur.EffectiveAt,
			TotalOrdering:        cur.TotalOrdering,
			PreviousState:        prevState,
			PreviousPlanName:     prevPlan,
			PreviousPhaseName:    prevPhase,
			PreviousBillCycleDay: prevBCD,
			NextState:            nextState,
			NextPlanName:         nextPlan,
			NextPhaseName:        nextPhase,
			NextBillCycleDay:     nextBCD,
		}
		r.resolvePrettyNames(ctx, transition)
		transitions = append(transitions, transition)

		prevState = nextState
		prevPlan = nextPlan
		prevPhase = nextPhase
		prevBCD = nextBCD
	}

	return transitions, nil
}

// ReplayAddOn replays an add-on subscription applying the cancellation
// cascade derived from its base subscription's events. Every base
// change whose target plan no longer makes the add-on available, or now
// includes it for free, is a candidate trigger; the explicit base
// cancel, if any, is another. The earliest trigger synthesizes a non
// persisted cancel for the add-on at that date and the timeline is
// replayed with it appended. When no trigger qualifies the add-on's
// lifetime is governed only by its own events.
//
// The synthesized event, if any, is returned alongside the transitions
// so callers can distinguish implicit from explicit cancellations.
func (r *Replayer) ReplayAddOn(ctx context.Context, addOnEvents []*subscription.Event, baseEvents []*subscription.Event) ([]*subscription.Transition, *subscription.Event, error) {
	transitions, err := r.Replay(ctx, addOnEvents)
	if err != nil {
		return nil, nil, err
	}

	addOnPlan, addOnID := currentPlan(transitions)
	if addOnPlan == "" {
		// Already cancelled or never started; nothing to cascade
		return transitions, nil, nil
	}
	if hasActiveCancel(addOnEvents) {
		// An explicit cancel already bounds the add-on's lifetime
		return transitions, nil, nil
	}

	trigger := r.findCascadeTrigger(ctx, addOnPlan, baseEvents)
	if trigger == nil {
		return transitions, nil, nil
	}

	synthesized := &subscription.Event{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
		SubscriptionID: addOnID,
		Kind:           types.SubscriptionEventCancel,
		EffectiveAt:    trigger.EffectiveAt,
		RecordedAt:     trigger.RecordedAt,
		TotalOrdering:  subscription.MaxTotalOrdering(addOnEvents) + 1,
		Active:         true,
	}

	merged := subscription.CloneEvents(addOnEvents)
	merged = append(merged, synthesized)
	subscription.SortEvents(merged)

	transitions, err = r.Replay(ctx, merged)
	if err != nil {
		return nil, nil, err
	}
	return transitions, synthesized, nil
}

// findCascadeTrigger returns the earliest base event whose application
// terminates the add-on, nil when none qualifies
func (r *Replayer) findCascadeTrigger(ctx context.Context, addOnPlan string, baseEvents []*subscription.Event) *subscription.Event {
	sorted := subscription.CloneEvents(baseEvents)
	subscription.SortEvents(sorted)

	var trigger *subscription.Event
	for _, cur := range sorted {
		if !cur.Active {
			continue
		}

		switch cur.Kind {
		case types.SubscriptionEventCancel:
			if trigger == nil || cur.EffectiveAt.Before(trigger.EffectiveAt) {
				trigger = cur
			}
		case types.SubscriptionEventChange:
			available, err := r.lookup.IsAddonAvailable(ctx, cur.PlanName, addOnPlan, cur.EffectiveAt)
			if err != nil {
				r.logger.Warnw("catalog lookup failed during add-on cascade, skipping candidate",
					"base_plan", cur.PlanName,
					"addon_plan", addOnPlan,
					"error", err)
				continue
			}
			included, err := r.lookup.IsAddonIncluded(ctx, cur.PlanName, addOnPlan, cur.EffectiveAt)
			if err != nil {
				r.logger.Warnw("catalog lookup failed during add-on cascade, skipping candidate",
					"base_plan", cur.PlanName,
					"addon_plan", addOnPlan,
					"error", err)
				continue
			}
			if !available || included {
				if trigger == nil || cur.EffectiveAt.Before(trigger.EffectiveAt) {
					trigger = cur
				}
			}
		}
	}
	return trigger
}

// validatePendingPhases enforces the at-most-one unresolved future
// phase transition invariant
func (r *Replayer) validatePendingPhases(events []*subscription.Event) error {
	now := r.now().UTC()
	pending := 0
	for _, cur := range events {
		if cur.Active && cur.Kind == types.SubscriptionEventPhaseTransition && cur.EffectiveAt.After(now) {
			pending++
		}
	}
	if pending > 1 {
		return ierr.NewError("multiple unresolved future phase transitions").
			WithHintf("found %d pending phase transitions, at most one may exist", pending).
			Mark(ierr.ErrInternal)
	}
	return nil
}

func (r *Replayer) resolvePrettyNames(ctx context.Context, t *subscription.Transition) {
	if r.resolver == nil {
		return
	}
	if t.NextPlanName != "" {
		if res := r.resolver.ResolvePlan(ctx, t.NextPlanName, t.EffectiveAt, t.EffectiveAt); res.Resolved {
			t.NextPlanPrettyName = res.PrettyName
		}
	}
	if t.NextPhaseName != "" {
		if res := r.resolver.ResolvePhase(ctx, t.NextPhaseName, t.EffectiveAt); res.Resolved {
			t.NextPhasePrettyName = res.PrettyName
		}
	}
}

// currentPlan returns the plan left active by the final transition and
// the subscription id it belongs to
func currentPlan(transitions []*subscription.Transition) (string, string) {
	if len(transitions) == 0 {
		return "", ""
	}
	last := transitions[len(transitions)-1]
	if last.NextState != types.SubscriptionStateActive {
		return "", last.SubscriptionID
	}
	return last.NextPlanName, last.SubscriptionID
}

func hasActiveCancel(events []*subscription.Event) bool {
	for _, cur := range events {
		if cur.Active && cur.Kind == types.SubscriptionEventCancel {
			return true
		}
	}
	return false
}
