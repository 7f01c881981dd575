package subscription

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/types"
)

// Repository provides access to subscription records
type Repository interface {
	Create(ctx context.Context, subscription *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	GetByLookupKey(ctx context.Context, lookupKey string) (*Subscription, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Subscription, error)
	Update(ctx context.Context, subscription *Subscription) error
}

// EventRepository is the append-only subscription event log.
//
// Append assigns the next per-subscription total ordering sequence
// number; callers never supply one. Deactivate is idempotent:
// deactivating an inactive event is a no-op, not an error.
// ActiveEvents returns active events sorted by
// (EffectiveAt, TotalOrdering) with the uncancel/undo_change operation
// markers excluded; they are structural, not observable state.
type EventRepository interface {
	Append(ctx context.Context, event *Event) error
	Deactivate(ctx context.Context, eventID string) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ActiveEvents(ctx context.Context, subscriptionID string, filter types.SubscriptionEventFilter, asOf time.Time) ([]*Event, error)
}
