package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/notifier"
)

// WakeupRequest captures one RequestWakeup call
type WakeupRequest struct {
	SubscriptionID string
	EventID        string
	EffectiveAt    time.Time
}

// InMemoryNotifier implements notifier.Notifier recording every call
// for assertion
type InMemoryNotifier struct {
	mu               sync.RWMutex
	effectiveChanges []*subscription.Transition
	wakeups          []WakeupRequest
}

var _ notifier.Notifier = (*InMemoryNotifier)(nil)

func NewInMemoryNotifier() *InMemoryNotifier {
	return &InMemoryNotifier{
		effectiveChanges: make([]*subscription.Transition, 0),
		wakeups:          make([]WakeupRequest, 0),
	}
}

func (n *InMemoryNotifier) NotifyEffectiveChange(ctx context.Context, transition *subscription.Transition) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.effectiveChanges = append(n.effectiveChanges, transition)
	return nil
}

func (n *InMemoryNotifier) RequestWakeup(ctx context.Context, subscriptionID string, eventID string, effectiveAt time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.wakeups = append(n.wakeups, WakeupRequest{
		SubscriptionID: subscriptionID,
		EventID:        eventID,
		EffectiveAt:    effectiveAt,
	})
	return nil
}

func (n *InMemoryNotifier) Close() error {
	return nil
}

// EffectiveChanges returns the recorded immediate notifications
func (n *InMemoryNotifier) EffectiveChanges() []*subscription.Transition {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*subscription.Transition, len(n.effectiveChanges))
	copy(out, n.effectiveChanges)
	return out
}

// Wakeups returns the recorded wakeup requests
func (n *InMemoryNotifier) Wakeups() []WakeupRequest {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]WakeupRequest, len(n.wakeups))
	copy(out, n.wakeups)
	return out
}

// Reset clears all recorded calls
func (n *InMemoryNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.effectiveChanges = n.effectiveChanges[:0]
	n.wakeups = n.wakeups[:0]
}
