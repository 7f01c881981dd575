package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/pubsub"
	"github.com/billforge/billforge/internal/types"
)

// Notifier is the outbound boundary for subscription state changes.
// Transitions already effective are announced immediately; future
// transitions request a wakeup so the caller is re-invoked when the
// transition becomes effective. Both paths are fire and forget from the
// timeline's point of view.
type Notifier interface {
	NotifyEffectiveChange(ctx context.Context, transition *subscription.Transition) error
	RequestWakeup(ctx context.Context, subscriptionID string, eventID string, effectiveAt time.Time) error
	Close() error
}

// EffectiveChangeMessage is the payload published for a transition that
// is already effective
type EffectiveChangeMessage struct {
	SubscriptionID string                     `json:"subscription_id"`
	EventID        string                     `json:"event_id"`
	EventKind      types.SubscriptionEventKind `json:"event_kind"`
	EffectiveAt    time.Time                  `json:"effective_at"`
	PreviousState  types.SubscriptionState    `json:"previous_state"`
	NextState      types.SubscriptionState    `json:"next_state"`
	PreviousPlan   string                     `json:"previous_plan"`
	NextPlan       string                     `json:"next_plan"`
	PublishedAt    time.Time                  `json:"published_at"`
}

// ScheduledWakeupMessage is the payload published to request a wakeup
// at the effective date of a future transition
type ScheduledWakeupMessage struct {
	WakeupID       string    `json:"wakeup_id"`
	SubscriptionID string    `json:"subscription_id"`
	EventID        string    `json:"event_id"`
	EffectiveAt    time.Time `json:"effective_at"`
	RequestedAt    time.Time `json:"requested_at"`
}

type notifier struct {
	publisher pubsub.Publisher
	config    *config.NotifierConfig
	logger    *logger.Logger
	now       func() time.Time
}

func NewNotifier(publisher pubsub.Publisher, cfg *config.Configuration, logger *logger.Logger) Notifier {
	return &notifier{
		publisher: publisher,
		config:    &cfg.Notifier,
		logger:    logger,
		now:       time.Now,
	}
}

func (n *notifier) NotifyEffectiveChange(ctx context.Context, transition *subscription.Transition) error {
	payload := &EffectiveChangeMessage{
		SubscriptionID: transition.SubscriptionID,
		EventID:        transition.EventID,
		EventKind:      transition.EventKind,
		EffectiveAt:    transition.EffectiveAt,
		PreviousState:  transition.PreviousState,
		NextState:      transition.NextState,
		PreviousPlan:   transition.PreviousPlanName,
		NextPlan:       transition.NextPlanName,
		PublishedAt:    n.now().UTC(),
	}

	if err := n.publish(ctx, n.config.EffectiveTopic, payload); err != nil {
		return err
	}

	n.logger.Debugw("published effective change",
		"subscription_id", transition.SubscriptionID,
		"event_id", transition.EventID,
		"event_kind", transition.EventKind)
	return nil
}

func (n *notifier) RequestWakeup(ctx context.Context, subscriptionID string, eventID string, effectiveAt time.Time) error {
	payload := &ScheduledWakeupMessage{
		WakeupID:       types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WAKEUP),
		SubscriptionID: subscriptionID,
		EventID:        eventID,
		EffectiveAt:    effectiveAt,
		RequestedAt:    n.now().UTC(),
	}

	if err := n.publish(ctx, n.config.WakeupTopic, payload); err != nil {
		return err
	}

	n.logger.Debugw("requested wakeup",
		"wakeup_id", payload.WakeupID,
		"subscription_id", subscriptionID,
		"event_id", eventID,
		"effective_at", effectiveAt)
	return nil
}

func (n *notifier) publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to serialize notification payload").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(types.GenerateUUID(), data)
	if err := n.publisher.Publish(ctx, topic, msg); err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to publish to topic %s", topic).
			Mark(ierr.ErrSystem)
	}
	return nil
}

func (n *notifier) Close() error {
	return n.publisher.Close()
}
