package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/pubsub"
	"github.com/billforge/billforge/internal/service"
)

// wakeupRequest mirrors the payload the notifier publishes on the
// wakeup topic
type wakeupRequest struct {
	WakeupID       string    `json:"wakeup_id"`
	SubscriptionID string    `json:"subscription_id"`
	EventID        string    `json:"event_id"`
	EffectiveAt    time.Time `json:"effective_at"`
}

// Scheduler consumes wakeup requests and fires the referenced event
// once its effective date arrives. Events deactivated between the
// request and its due time are skipped by the service, so firing a
// stale wakeup is harmless.
type Scheduler struct {
	subscriber pubsub.Subscriber
	service    service.SubscriptionService
	config     *config.NotifierConfig
	logger     *logger.Logger
	now        func() time.Time
}

func New(subscriber pubsub.Subscriber, svc service.SubscriptionService, cfg *config.Configuration, logger *logger.Logger) *Scheduler {
	return &Scheduler{
		subscriber: subscriber,
		service:    svc,
		config:     &cfg.Notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Run blocks consuming the wakeup topic until the context is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.config.WakeupTopic)
	if err != nil {
		return err
	}

	s.logger.Infow("wakeup scheduler started", "topic", s.config.WakeupTopic)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			s.handle(ctx, msg)
		}
	}
}

func (s *Scheduler) handle(ctx context.Context, msg *message.Message) {
	var req wakeupRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		s.logger.Errorw("dropping malformed wakeup request",
			"message_id", msg.UUID,
			"error", err)
		msg.Ack()
		return
	}
	msg.Ack()

	go s.fireAt(ctx, req)
}

// fireAt waits until the request's effective date then processes the
// event. Requests already due fire immediately.
func (s *Scheduler) fireAt(ctx context.Context, req wakeupRequest) {
	if delay := req.EffectiveAt.Sub(s.now().UTC()); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}

	if err := s.service.ProcessDueEvent(ctx, req.SubscriptionID, req.EventID); err != nil {
		s.logger.Errorw("failed to process due event",
			"wakeup_id", req.WakeupID,
			"subscription_id", req.SubscriptionID,
			"event_id", req.EventID,
			"error", err)
		return
	}

	s.logger.Debugw("processed due event",
		"wakeup_id", req.WakeupID,
		"subscription_id", req.SubscriptionID,
		"event_id", req.EventID)
}
