package service

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/catalog"
	"github.com/billforge/billforge/internal/domain/proration"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/domain/timeline"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
)

// SubscriptionService owns the subscription lifecycle. Every mutating
// operation appends to the event log inside a transaction and then
// signals the notifier: transitions already effective are announced
// immediately, future ones request a wakeup at their effective date.
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	ChangePlan(ctx context.Context, req *dto.ChangePlanRequest) error
	CancelSubscription(ctx context.Context, req *dto.CancelSubscriptionRequest) error
	UncancelSubscription(ctx context.Context, subscriptionID string) error
	UndoChangePlan(ctx context.Context, subscriptionID string) error
	UpdateBillingCycleDay(ctx context.Context, req *dto.UpdateBillingCycleDayRequest) error
	SchedulePhaseTransition(ctx context.Context, req *dto.SchedulePhaseTransitionRequest) error
	GetTimeline(ctx context.Context, subscriptionID string) (*dto.TimelineResponse, error)
	PreviewChange(ctx context.Context, req *dto.PreviewChangeRequest) (*dto.TimelineResponse, error)
	PreviewInvoice(ctx context.Context, req *dto.PreviewInvoiceRequest) (*dto.PreviewInvoiceResponse, error)
	ProcessDueEvent(ctx context.Context, subscriptionID string, eventID string) error
}

type subscriptionService struct {
	ServiceParams
	replayer *timeline.Replayer
	now      func() time.Time
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	resolver := catalog.NewResolver(params.CatalogLookup, params.Cache, params.Logger)
	return &subscriptionService{
		ServiceParams: params,
		replayer:      timeline.NewReplayer(params.CatalogLookup, resolver, params.Logger),
		now:           time.Now,
	}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub := req.ToSubscription(ctx)

	if sub.Category == types.ProductCategoryAddOn {
		if err := s.validateAddOnCreation(ctx, sub); err != nil {
			return nil, err
		}
	}

	event := &subscription.Event{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
		SubscriptionID: sub.ID,
		Kind:           types.SubscriptionEventCreate,
		EffectiveAt:    sub.StartDate,
		RecordedAt:     s.now().UTC(),
		Active:         true,
		PlanName:       sub.PlanName,
		PhaseName:      req.PhaseName,
		BillCycleDay:   sub.BillCycleDay,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubRepo.Create(ctx, sub); err != nil {
			return err
		}
		return s.SubEventRepo.Append(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	s.signalEvent(ctx, event)
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) ChangePlan(ctx context.Context, req *dto.ChangePlanRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	sub, err := s.SubRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return err
	}

	effectiveAt := s.effectiveOrNow(req.EffectiveAt)
	if effectiveAt.Before(sub.StartDate) {
		return ierr.NewError("change precedes subscription start").
			WithHintf("Change date %s is before the subscription start %s",
				effectiveAt.Format(time.DateOnly), sub.StartDate.Format(time.DateOnly)).
			Mark(ierr.ErrInvalidDateSequence)
	}

	event := &subscription.Event{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
		SubscriptionID: sub.ID,
		Kind:           types.SubscriptionEventChange,
		EffectiveAt:    effectiveAt,
		RecordedAt:     s.now().UTC(),
		Active:         true,
		PlanName:       req.PlanName,
		PhaseName:      req.PhaseName,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		// A new change supersedes every pending change and phase
		// transition at or after its date
		if err := s.deactivatePending(ctx, sub.ID, effectiveAt, types.SubscriptionEventFilterFutureOrPresent,
			types.SubscriptionEventChange, types.SubscriptionEventPhaseTransition); err != nil {
			return err
		}
		return s.SubEventRepo.Append(ctx, event)
	})
	if err != nil {
		return err
	}

	s.signalEvent(ctx, event)
	return nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, req *dto.CancelSubscriptionRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	sub, err := s.SubRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return err
	}

	effectiveAt := s.effectiveOrNow(req.EffectiveAt)
	if effectiveAt.Before(sub.StartDate) {
		return ierr.NewError("cancel precedes subscription start").
			WithHintf("Cancel date %s is before the subscription start %s",
				effectiveAt.Format(time.DateOnly), sub.StartDate.Format(time.DateOnly)).
			Mark(ierr.ErrInvalidDateSequence)
	}

	if err := s.ensureNotCancelled(ctx, sub.ID); err != nil {
		return err
	}

	event := &subscription.Event{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
		SubscriptionID: sub.ID,
		Kind:           types.SubscriptionEventCancel,
		EffectiveAt:    effectiveAt,
		RecordedAt:     s.now().UTC(),
		Active:         true,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		// Nothing scheduled after the cancel survives it
		if err := s.deactivatePending(ctx, sub.ID, effectiveAt, types.SubscriptionEventFilterFuture); err != nil {
			return err
		}
		if err := s.SubEventRepo.Append(ctx, event); err != nil {
			return err
		}

		sub.EndDate = &effectiveAt
		sub.UpdatedAt = s.now().UTC()
		sub.UpdatedBy = types.GetUserID(ctx)
		return s.SubRepo.Update(ctx, sub)
	})
	if err != nil {
		return err
	}

	s.signalEvent(ctx, event)
	return nil
}

func (s *subscriptionService) UncancelSubscription(ctx context.Context, subscriptionID string) error {
	sub, err := s.SubRepo.Get(ctx, subscriptionID)
	if err != nil {
		return err
	}

	// Only a cancellation that has not taken effect yet can be undone;
	// one already in the past is settled history
	now := s.now().UTC()
	pending, err := s.SubEventRepo.ActiveEvents(ctx, sub.ID, types.SubscriptionEventFilterFuture, now)
	if err != nil {
		return err
	}

	cancels := make([]*subscription.Event, 0, 1)
	for _, event := range pending {
		if event.Kind == types.SubscriptionEventCancel {
			cancels = append(cancels, event)
		}
	}
	if len(cancels) == 0 {
		return ierr.NewError("no pending cancellation").
			WithHintf("Subscription %s has no future cancellation to undo", sub.ID).
			Mark(ierr.ErrInvalidOperation)
	}

	markers := make([]*subscription.Event, 0, len(cancels))
	for _, cancel := range cancels {
		markers = append(markers, &subscription.Event{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
			SubscriptionID: sub.ID,
			Kind:           types.SubscriptionEventUncancel,
			EffectiveAt:    now,
			RecordedAt:     now,
			Active:         true,
			TargetEventID:  cancel.ID,
			BaseModel:      types.GetDefaultBaseModel(ctx),
		})
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		for i, cancel := range cancels {
			if err := s.SubEventRepo.Deactivate(ctx, cancel.ID); err != nil {
				return err
			}
			if err := s.SubEventRepo.Append(ctx, markers[i]); err != nil {
				return err
			}
		}

		sub.EndDate = nil
		sub.UpdatedAt = now
		sub.UpdatedBy = types.GetUserID(ctx)
		return s.SubRepo.Update(ctx, sub)
	})
	if err != nil {
		return err
	}

	s.signalEvent(ctx, markers[0])
	return nil
}

func (s *subscriptionService) UndoChangePlan(ctx context.Context, subscriptionID string) error {
	sub, err := s.SubRepo.Get(ctx, subscriptionID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	pending, err := s.SubEventRepo.ActiveEvents(ctx, sub.ID, types.SubscriptionEventFilterFuture, now)
	if err != nil {
		return err
	}

	changes := make([]*subscription.Event, 0, 1)
	for _, event := range pending {
		if event.Kind == types.SubscriptionEventChange {
			changes = append(changes, event)
		}
	}
	if len(changes) == 0 {
		return ierr.NewError("no pending plan change").
			WithHintf("Subscription %s has no future plan change to undo", sub.ID).
			Mark(ierr.ErrInvalidOperation)
	}

	marker := &subscription.Event{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
		SubscriptionID: sub.ID,
		Kind:           types.SubscriptionEventUndoChange,
		EffectiveAt:    now,
		RecordedAt:     now,
		Active:         true,
		TargetEventID:  changes[0].ID,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		for _, change := range changes {
			if err := s.SubEventRepo.Deactivate(ctx, change.ID); err != nil {
				return err
			}
		}
		return s.SubEventRepo.Append(ctx, marker)
	})
	if err != nil {
		return err
	}

	s.signalEvent(ctx, marker)
	return nil
}

func (s *subscriptionService) UpdateBillingCycleDay(ctx context.Context, req *dto.UpdateBillingCycleDayRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	sub, err := s.SubRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return err
	}

	effectiveAt := s.effectiveOrNow(req.EffectiveAt)
	now := s.now().UTC()

	event := &subscription.Event{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
		SubscriptionID: sub.ID,
		Kind:           types.SubscriptionEventBcdUpdate,
		EffectiveAt:    effectiveAt,
		RecordedAt:     now,
		Active:         true,
		BillCycleDay:   req.BillCycleDay,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubEventRepo.Append(ctx, event); err != nil {
			return err
		}
		if !effectiveAt.After(now) {
			sub.BillCycleDay = req.BillCycleDay
			sub.UpdatedAt = now
			sub.UpdatedBy = types.GetUserID(ctx)
			return s.SubRepo.Update(ctx, sub)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.signalEvent(ctx, event)
	return nil
}

func (s *subscriptionService) SchedulePhaseTransition(ctx context.Context, req *dto.SchedulePhaseTransitionRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	sub, err := s.SubRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	if !req.EffectiveAt.After(now) {
		return ierr.NewError("phase transition must be in the future").
			WithHintf("Phase transition date %s is not after the current time",
				req.EffectiveAt.Format(time.RFC3339)).
			Mark(ierr.ErrInvalidOperation)
	}

	event := &subscription.Event{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
		SubscriptionID: sub.ID,
		Kind:           types.SubscriptionEventPhaseTransition,
		EffectiveAt:    req.EffectiveAt,
		RecordedAt:     now,
		Active:         true,
		PhaseName:      req.PhaseName,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		// At most one unresolved future phase transition may exist, so
		// the previous pending one is superseded before the new one lands
		pending, err := s.SubEventRepo.ActiveEvents(ctx, sub.ID, types.SubscriptionEventFilterFuture, now)
		if err != nil {
			return err
		}
		for _, cur := range pending {
			if cur.Kind == types.SubscriptionEventPhaseTransition {
				if err := s.SubEventRepo.Deactivate(ctx, cur.ID); err != nil {
					return err
				}
			}
		}
		return s.SubEventRepo.Append(ctx, event)
	})
	if err != nil {
		return err
	}

	s.signalEvent(ctx, event)
	return nil
}

func (s *subscriptionService) GetTimeline(ctx context.Context, subscriptionID string) (*dto.TimelineResponse, error) {
	sub, err := s.SubRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	events, err := s.SubEventRepo.ActiveEvents(ctx, sub.ID, types.SubscriptionEventFilterAll, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if sub.Category == types.ProductCategoryAddOn && sub.BaseSubscriptionID != "" {
		baseEvents, err := s.SubEventRepo.ActiveEvents(ctx, sub.BaseSubscriptionID, types.SubscriptionEventFilterAll, s.now().UTC())
		if err != nil {
			return nil, err
		}
		transitions, synthesized, err := s.replayer.ReplayAddOn(ctx, events, baseEvents)
		if err != nil {
			return nil, err
		}
		return &dto.TimelineResponse{
			Subscription:      sub,
			Transitions:       transitions,
			SynthesizedCancel: synthesized,
		}, nil
	}

	transitions, err := s.replayer.Replay(ctx, events)
	if err != nil {
		return nil, err
	}
	return &dto.TimelineResponse{
		Subscription: sub,
		Transitions:  transitions,
	}, nil
}

// PreviewChange replays the subscription with a hypothetical plan
// change overlaid, persisting nothing
func (s *subscriptionService) PreviewChange(ctx context.Context, req *dto.PreviewChangeRequest) (*dto.TimelineResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	events, err := s.SubEventRepo.ActiveEvents(ctx, sub.ID, types.SubscriptionEventFilterAll, s.now().UTC())
	if err != nil {
		return nil, err
	}

	hypothetical := &subscription.Event{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
		SubscriptionID: sub.ID,
		Kind:           types.SubscriptionEventChange,
		EffectiveAt:    s.effectiveOrNow(req.EffectiveAt),
		RecordedAt:     s.now().UTC(),
		Active:         true,
		PlanName:       req.PlanName,
		PhaseName:      req.PhaseName,
	}

	merged := timeline.MergeDryRunEvents(sub.ID, events, []*subscription.Event{hypothetical})
	transitions, err := s.replayer.Replay(ctx, merged)
	if err != nil {
		return nil, err
	}

	return &dto.TimelineResponse{
		Subscription: sub,
		Transitions:  transitions,
	}, nil
}

// PreviewInvoice computes the billable segments of the subscription up
// to the target date and renders them as invoice line previews. Nothing
// is persisted; the returned next billing cycle date tells the caller
// when to evaluate again.
func (s *subscriptionService) PreviewInvoice(ctx context.Context, req *dto.PreviewInvoiceRequest) (*dto.PreviewInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	events, err := s.SubEventRepo.ActiveEvents(ctx, sub.ID, types.SubscriptionEventFilterAll, s.now().UTC())
	if err != nil {
		return nil, err
	}
	transitions, err := s.replayer.Replay(ctx, events)
	if err != nil {
		return nil, err
	}

	result, err := proration.Generate(proration.Params{
		StartDate:     sub.StartDate,
		EndDate:       sub.EndDate,
		TargetDate:    s.effectiveOrNow(req.TargetDate),
		BillCycleDay:  sub.BillCycleDay,
		BillingPeriod: sub.BillingPeriod,
		PeriodUnit:    sub.BillingPeriodUnit,
		BillingMode:   sub.BillingMode,
	})
	if err != nil {
		return nil, err
	}

	items := make([]*dto.InvoiceItemPreview, 0, len(result.Segments))
	for _, segment := range result.Segments {
		payload := types.InvoiceItemPayload{
			PlanName:   sub.PlanName,
			CycleCount: segment.CycleCount,
		}
		if t := transitionAt(transitions, segment.StartDate); t != nil {
			payload.PlanName = t.NextPlanName
			payload.PlanPrettyName = t.NextPlanPrettyName
			payload.PhaseName = t.NextPhaseName
			payload.PhasePrettyName = t.NextPhasePrettyName
		}
		items = append(items, &dto.InvoiceItemPreview{
			Kind:        types.InvoiceItemRecurring,
			Description: types.DescribeInvoiceItem(types.InvoiceItemRecurring, payload),
			StartDate:   segment.StartDate,
			EndDate:     segment.EndDate,
			CycleCount:  segment.CycleCount,
		})
	}

	return &dto.PreviewInvoiceResponse{
		Subscription:         sub,
		Items:                items,
		Detail:               result.Detail,
		NextBillingCycleDate: result.NextBillingCycleDate,
	}, nil
}

// transitionAt returns the last transition effective at or before the
// given date, nil when the timeline has not started yet
func transitionAt(transitions []*subscription.Transition, at time.Time) *subscription.Transition {
	var match *subscription.Transition
	for _, t := range transitions {
		if t.EffectiveAt.After(at) {
			break
		}
		match = t
	}
	return match
}

// ProcessDueEvent announces an event whose effective date has arrived.
// The wakeup scheduler calls this when a requested wakeup fires. A
// deactivated event is skipped silently: a superseding operation may
// legitimately retire a scheduled event between the wakeup request and
// its firing.
func (s *subscriptionService) ProcessDueEvent(ctx context.Context, subscriptionID string, eventID string) error {
	event, err := s.SubEventRepo.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.SubscriptionID != subscriptionID {
		return ierr.NewError("event belongs to a different subscription").
			WithHintf("Event %s does not belong to subscription %s", eventID, subscriptionID).
			Mark(ierr.ErrValidation)
	}

	if !event.Active {
		s.Logger.Debugw("skipping deactivated due event",
			"subscription_id", subscriptionID,
			"event_id", eventID)
		return nil
	}

	if event.EffectiveAt.After(s.now().UTC()) {
		// Woken up early, push the wakeup back to the effective date
		return s.Notifier.RequestWakeup(ctx, subscriptionID, eventID, event.EffectiveAt)
	}

	transition := s.transitionFor(ctx, event)
	return s.Notifier.NotifyEffectiveChange(ctx, transition)
}

// validateAddOnCreation checks the base subscription exists and its
// current plan makes the add-on purchasable
func (s *subscriptionService) validateAddOnCreation(ctx context.Context, sub *subscription.Subscription) error {
	if sub.BaseSubscriptionID == "" {
		return ierr.NewError("add-on requires a base subscription").
			WithHint("Add-on subscriptions must reference a base subscription").
			Mark(ierr.ErrValidation)
	}

	base, err := s.SubRepo.Get(ctx, sub.BaseSubscriptionID)
	if err != nil {
		return err
	}

	baseEvents, err := s.SubEventRepo.ActiveEvents(ctx, base.ID, types.SubscriptionEventFilterAll, s.now().UTC())
	if err != nil {
		return err
	}
	transitions, err := s.replayer.Replay(ctx, baseEvents)
	if err != nil {
		return err
	}
	if len(transitions) == 0 {
		return ierr.NewError("base subscription has no timeline").
			WithHintf("Base subscription %s has no active events", base.ID).
			Mark(ierr.ErrInvalidOperation)
	}

	last := transitions[len(transitions)-1]
	if last.NextState != types.SubscriptionStateActive {
		return ierr.NewError("base subscription is not active").
			WithHintf("Base subscription %s is cancelled", base.ID).
			Mark(ierr.ErrInvalidOperation)
	}

	available, err := s.CatalogLookup.IsAddonAvailable(ctx, last.NextPlanName, sub.PlanName, sub.StartDate)
	if err != nil {
		return err
	}
	if !available {
		return ierr.NewError("add-on not available for base plan").
			WithHintf("Plan %s does not offer add-on %s", last.NextPlanName, sub.PlanName).
			WithReportableDetails(map[string]any{
				"base_plan":  last.NextPlanName,
				"addon_plan": sub.PlanName,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

// deactivatePending deactivates active events matching the filter
// relative to the pivot date, restricted to the given kinds when any
// are named
func (s *subscriptionService) deactivatePending(ctx context.Context, subscriptionID string, pivot time.Time, filter types.SubscriptionEventFilter, kinds ...types.SubscriptionEventKind) error {
	pending, err := s.SubEventRepo.ActiveEvents(ctx, subscriptionID, filter, pivot)
	if err != nil {
		return err
	}

	for _, event := range pending {
		if len(kinds) > 0 && !lo.Contains(kinds, event.Kind) {
			continue
		}
		if err := s.SubEventRepo.Deactivate(ctx, event.ID); err != nil {
			return err
		}
	}
	return nil
}

// ensureNotCancelled rejects operations on an already cancelled timeline
func (s *subscriptionService) ensureNotCancelled(ctx context.Context, subscriptionID string) error {
	events, err := s.SubEventRepo.ActiveEvents(ctx, subscriptionID, types.SubscriptionEventFilterAll, s.now().UTC())
	if err != nil {
		return err
	}
	for _, event := range events {
		if event.Kind == types.SubscriptionEventCancel {
			return ierr.NewError("subscription already cancelled").
				WithHintf("Subscription %s already has an active cancellation", subscriptionID).
				Mark(ierr.ErrInvalidOperation)
		}
	}
	return nil
}

// signalEvent routes the persisted event to the notifier: already
// effective events are announced now, future ones schedule a wakeup.
// Notification failures are logged and swallowed; the event log is the
// source of truth and the wakeup machinery re-derives missed signals.
func (s *subscriptionService) signalEvent(ctx context.Context, event *subscription.Event) {
	if s.Notifier == nil {
		return
	}

	now := s.now().UTC()
	if event.EffectiveAt.After(now) {
		if err := s.Notifier.RequestWakeup(ctx, event.SubscriptionID, event.ID, event.EffectiveAt); err != nil {
			s.Logger.Warnw("failed to request wakeup",
				"subscription_id", event.SubscriptionID,
				"event_id", event.ID,
				"error", err)
		}
		return
	}

	transition := s.transitionFor(ctx, event)
	if err := s.Notifier.NotifyEffectiveChange(ctx, transition); err != nil {
		s.Logger.Warnw("failed to notify effective change",
			"subscription_id", event.SubscriptionID,
			"event_id", event.ID,
			"error", err)
	}
}

// transitionFor finds the replayed transition produced by the event,
// falling back to a bare transition for operation markers which never
// appear in the replay
func (s *subscriptionService) transitionFor(ctx context.Context, event *subscription.Event) *subscription.Transition {
	events, err := s.SubEventRepo.ActiveEvents(ctx, event.SubscriptionID, types.SubscriptionEventFilterAll, s.now().UTC())
	if err == nil {
		if transitions, rerr := s.replayer.Replay(ctx, events); rerr == nil {
			for _, t := range transitions {
				if t.EventID == event.ID {
					return t
				}
			}
		}
	}

	return &subscription.Transition{
		SubscriptionID: event.SubscriptionID,
		EventID:        event.ID,
		EventKind:      event.Kind,
		EffectiveAt:    event.EffectiveAt,
		TotalOrdering:  event.TotalOrdering,
	}
}

func (s *subscriptionService) effectiveOrNow(effectiveAt time.Time) time.Time {
	if effectiveAt.IsZero() {
		return s.now().UTC()
	}
	return effectiveAt.UTC()
}
