package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription.Subscription
	byLookupKey   map[string]string // map[lookupKey]subscriptionID
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subscriptions: make(map[string]*subscription.Subscription),
		byLookupKey:   make(map[string]string),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[sub.ID]; exists {
		return ierr.NewError("subscription already exists").
			WithHintf("A subscription with id %s already exists", sub.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	if sub.LookupKey != "" {
		if _, exists := s.byLookupKey[sub.LookupKey]; exists {
			return ierr.NewError("subscription already exists").
				WithHintf("A subscription with lookup key %s already exists", sub.LookupKey).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	clone := *sub
	s.subscriptions[sub.ID] = &clone
	if sub.LookupKey != "" {
		s.byLookupKey[sub.LookupKey] = sub.ID
	}
	return nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, exists := s.subscriptions[id]
	if !exists {
		return nil, ierr.NewError("subscription not found").
			WithHintf("Subscription %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	clone := *sub
	return &clone, nil
}

func (s *InMemorySubscriptionStore) GetByLookupKey(ctx context.Context, lookupKey string) (*subscription.Subscription, error) {
	s.mu.RLock()
	id, exists := s.byLookupKey[lookupKey]
	s.mu.RUnlock()

	if !exists {
		return nil, ierr.NewError("subscription not found").
			WithHintf("Subscription with lookup key %s was not found", lookupKey).
			Mark(ierr.ErrNotFound)
	}
	return s.Get(ctx, id)
}

func (s *InMemorySubscriptionStore) ListByCustomer(ctx context.Context, customerID string) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]*subscription.Subscription, 0)
	for _, sub := range s.subscriptions {
		if sub.CustomerID != customerID {
			continue
		}
		clone := *sub
		subs = append(subs, &clone)
	}
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].StartDate.Equal(subs[j].StartDate) {
			return subs[i].StartDate.Before(subs[j].StartDate)
		}
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[sub.ID]; !exists {
		return ierr.NewError("subscription not found").
			WithHintf("Subscription %s was not found", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	clone := *sub
	s.subscriptions[sub.ID] = &clone
	return nil
}
