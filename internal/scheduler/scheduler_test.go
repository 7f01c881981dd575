package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/notifier"
	"github.com/billforge/billforge/internal/pubsub/memory"
	"github.com/billforge/billforge/internal/service"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/stretchr/testify/require"
)

func newTestService(cfg *config.Configuration, notif notifier.Notifier) service.SubscriptionService {
	return service.NewSubscriptionService(service.ServiceParams{
		Logger:        logger.L,
		Config:        cfg,
		DB:            testutil.NewMockPostgresClient(),
		Cache:         cache.NewInMemoryCache(),
		SubRepo:       testutil.NewInMemorySubscriptionStore(),
		SubEventRepo:  testutil.NewInMemorySubscriptionEventStore(),
		CatalogLookup: testutil.NewInMemoryCatalogStore(),
		Notifier:      notif,
	})
}

func TestSchedulerFiresDueWakeup(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.SetupContext())
	defer cancel()

	cfg := config.GetDefaultConfig()
	cfg.Notifier.EffectiveTopic = "subscription.effective.fires"
	cfg.Notifier.WakeupTopic = "subscription.wakeup.fires"
	pubSub := memory.NewPubSub(cfg, logger.L)
	svc := newTestService(cfg, notifier.NewNotifier(pubSub, cfg, logger.L))

	// Listen on the effective topic before anything publishes to it
	effective, err := pubSub.Subscribe(ctx, cfg.Notifier.EffectiveTopic)
	require.NoError(t, err)

	worker := New(pubSub, svc, cfg, logger.L)
	go func() {
		_ = worker.Run(ctx)
	}()

	// A start date slightly in the future makes creation request a
	// wakeup instead of announcing immediately
	startDate := time.Now().UTC().Add(100 * time.Millisecond)
	resp, err := svc.CreateSubscription(ctx, &dto.CreateSubscriptionRequest{
		CustomerID:    "cust_1",
		PlanName:      "gold-monthly",
		LookupKey:     "acme-main",
		StartDate:     startDate,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
	})
	require.NoError(t, err)

	select {
	case msg := <-effective:
		msg.Ack()
		var change notifier.EffectiveChangeMessage
		require.NoError(t, json.Unmarshal(msg.Payload, &change))
		require.Equal(t, resp.Subscription.ID, change.SubscriptionID)
		require.Equal(t, types.SubscriptionEventCreate, change.EventKind)
		require.Equal(t, types.SubscriptionStateActive, change.NextState)
	case <-time.After(5 * time.Second):
		t.Fatal("no effective change published for the due wakeup")
	}
}

func TestSchedulerDropsMalformedWakeup(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.SetupContext())
	defer cancel()

	cfg := config.GetDefaultConfig()
	cfg.Notifier.WakeupTopic = "subscription.wakeup.malformed"
	pubSub := memory.NewPubSub(cfg, logger.L)
	svc := newTestService(cfg, testutil.NewInMemoryNotifier())

	worker := New(pubSub, svc, cfg, logger.L)
	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()

	msg := message.NewMessage(types.GenerateUUID(), []byte("not json"))
	require.NoError(t, pubSub.Publish(ctx, cfg.Notifier.WakeupTopic, msg))

	// The worker keeps running after dropping the bad payload
	select {
	case err := <-done:
		t.Fatalf("worker stopped unexpectedly: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
}
