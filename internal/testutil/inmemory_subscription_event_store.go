package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// InMemorySubscriptionEventStore implements subscription.EventRepository
// with the same ordering semantics as the postgres store: appends assign
// a per-subscription monotonically increasing sequence number and reads
// exclude operation markers.
type InMemorySubscriptionEventStore struct {
	mu       sync.RWMutex
	events   map[string]*subscription.Event
	sequence map[string]int64 // map[subscriptionID]last assigned ordering
}

func NewInMemorySubscriptionEventStore() *InMemorySubscriptionEventStore {
	return &InMemorySubscriptionEventStore{
		events:   make(map[string]*subscription.Event),
		sequence: make(map[string]int64),
	}
}

func (s *InMemorySubscriptionEventStore) Append(ctx context.Context, event *subscription.Event) error {
	if event == nil {
		return ierr.NewError("event cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.ID]; exists {
		return ierr.NewError("event already exists").
			WithHintf("An event with id %s already exists", event.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	s.sequence[event.SubscriptionID]++
	event.TotalOrdering = s.sequence[event.SubscriptionID]

	clone := event.Clone()
	s.events[event.ID] = clone
	return nil
}

func (s *InMemorySubscriptionEventStore) Deactivate(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, exists := s.events[eventID]
	if !exists {
		return ierr.NewError("subscription event not found").
			WithHintf("Subscription event %s was not found", eventID).
			Mark(ierr.ErrNotFound)
	}
	event.Active = false
	return nil
}

func (s *InMemorySubscriptionEventStore) GetEvent(ctx context.Context, eventID string) (*subscription.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, exists := s.events[eventID]
	if !exists {
		return nil, ierr.NewError("subscription event not found").
			WithHintf("Subscription event %s was not found", eventID).
			Mark(ierr.ErrNotFound)
	}
	return event.Clone(), nil
}

func (s *InMemorySubscriptionEventStore) ActiveEvents(ctx context.Context, subscriptionID string, filter types.SubscriptionEventFilter, asOf time.Time) ([]*subscription.Event, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*subscription.Event, 0)
	for _, event := range s.events {
		if event.SubscriptionID != subscriptionID || !event.Active {
			continue
		}
		if event.Kind.IsOperationMarker() {
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
