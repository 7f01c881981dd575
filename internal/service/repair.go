package service

import (
	"context"
	"sync"
	"time"

	"github.com/billforge/billforge/internal/domain/catalog"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/domain/timeline"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// RepairService builds isolated repair sessions over a subscription's
// event log. A session is seeded with clones of the durable active
// events; appends and deactivations inside the session never touch the
// durable log, and closing the session discards everything. Sessions
// are explicit values handed to the caller, so concurrent repairs of
// different subscriptions never observe each other.
type RepairService interface {
	NewSession(ctx context.Context, subscriptionID string) (*RepairSession, error)
	ReplaySession(ctx context.Context, session *RepairSession) ([]*subscription.Transition, error)
}

type repairService struct {
	ServiceParams
	replayer *timeline.Replayer
	now      func() time.Time
}

func NewRepairService(params ServiceParams) RepairService {
	resolver := catalog.NewResolver(params.CatalogLookup, params.Cache, params.Logger)
	return &repairService{
		ServiceParams: params,
		replayer:      timeline.NewReplayer(params.CatalogLookup, resolver, params.Logger),
		now:           time.Now,
	}
}

func (s *repairService) NewSession(ctx context.Context, subscriptionID string) (*RepairSession, error) {
	if _, err := s.SubRepo.Get(ctx, subscriptionID); err != nil {
		return nil, err
	}

	seed, err := s.SubEventRepo.ActiveEvents(ctx, subscriptionID, types.SubscriptionEventFilterAll, s.now().UTC())
	if err != nil {
		return nil, err
	}

	session := &RepairSession{
		ID:             types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_REPAIR_SESSION),
		SubscriptionID: subscriptionID,
		events:         make(map[string]*subscription.Event, len(seed)),
	}
	for _, event := range seed {
		session.events[event.ID] = event.Clone()
		if event.TotalOrdering > session.sequence {
			session.sequence = event.TotalOrdering
		}
	}

	s.Logger.Debugw("opened repair session",
		"session_id", session.ID,
		"subscription_id", subscriptionID,
		"seeded_events", len(seed))
	return session, nil
}

// ReplaySession replays the session's current overlay
func (s *repairService) ReplaySession(ctx context.Context, session *RepairSession) ([]*subscription.Transition, error) {
	events, err := session.ActiveEvents(ctx, session.SubscriptionID, types.SubscriptionEventFilterAll, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return s.replayer.Replay(ctx, events)
}

// RepairSession is a session-scoped overlay of one subscription's event
// log. It implements subscription.EventRepository so replay and dry run
// code paths read it exactly like the durable store.
type RepairSession struct {
	ID             string
	SubscriptionID string

	mu       sync.Mutex
	events   map[string]*subscription.Event
	sequence int64
	closed   bool
}

var _ subscription.EventRepository = (*RepairSession)(nil)

// Append records the event in the session only, assigning the next
// ordering after the seeded maximum
func (r *RepairSession) Append(ctx context.Context, event *subscription.Event) error {
	if event == nil {
		return ierr.NewError("event cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if event.SubscriptionID != r.SubscriptionID {
		return ierr.NewError("event belongs to a different subscription").
			WithHintf("Repair session %s covers subscription %s", r.ID, r.SubscriptionID).
			Mark(ierr.ErrInvalidOperation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return r.closedError()
	}
	if _, exists := r.events[event.ID]; exists {
		return ierr.NewError("event already exists in repair session").
			WithHintf("An event with id %s is already staged", event.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	r.sequence++
	event.TotalOrdering = r.sequence
	r.events[event.ID] = event.Clone()
	return nil
}

func (r *RepairSession) Deactivate(ctx context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return r.closedError()
	}

	event, exists := r.events[eventID]
	if !exists {
		return ierr.NewError("subscription event not found").
			WithHintf("Event %s is not staged in repair session %s", eventID, r.ID).
			Mark(ierr.ErrNotFound)
	}
	event.Active = false
	return nil
}

func (r *RepairSession) GetEvent(ctx context.Context, eventID string) (*subscription.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, r.closedError()
	}

	event, exists := r.events[eventID]
	if !exists {
		return nil, ierr.NewError("subscription event not found").
			WithHintf("Event %s is not staged in repair session %s", eventID, r.ID).
			Mark(ierr.ErrNotFound)
	}
	return event.Clone(), nil
}

func (r *RepairSession) ActiveEvents(ctx context.Context, subscriptionID string, filter types.SubscriptionEventFilter, asOf time.Time) ([]*subscription.Event, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if subscriptionID != r.SubscriptionID {
		return nil, ierr.NewError("subscription not covered by repair session").
			WithHintf("Repair session %s covers subscription %s", r.ID, r.SubscriptionID).
			Mark(ierr.ErrInvalidOperation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, r.closedError()
	}

	events := make([]*subscription.Event, 0, len(r.events))
	for _, event := range r.events {
		if !event.Active || event.Kind.IsOperationMarker() {
			continue
		}
		switch filter {
		case types.SubscriptionEventFilterFuture:
			if !event.EffectiveAt.After(asOf) {
				continue
			}
		case types.SubscriptionEventFilterFutureOrPresent:
			if event.EffectiveAt.Before(asOf) {
				continue
			}
		}
		events = append(events, event.Clone())
	}

	subscription.SortEvents(events)
	return events, nil
}

// Close discards the session. Every later operation on it fails.
func (r *RepairSession) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.events = nil
}

func (r *RepairSession) closedError() error {
	return ierr.NewError("repair session is closed").
		WithHintf("Repair session %s has been closed", r.ID).
		Mark(ierr.ErrInvalidOperation)
}
