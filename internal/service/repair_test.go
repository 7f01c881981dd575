package service

import (
	"context"
	"testing"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/stretchr/testify/suite"
)

type RepairServiceSuite struct {
	suite.Suite
	ctx       context.Context
	service   *repairService
	subSvc    *subscriptionService
	eventRepo *testutil.InMemorySubscriptionEventStore
	now       time.Time
	subID     string
}

func TestRepairService(t *testing.T) {
	suite.Run(t, new(RepairServiceSuite))
}

func (s *RepairServiceSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.eventRepo = testutil.NewInMemorySubscriptionEventStore()
	s.now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	catalogStore := testutil.NewInMemoryCatalogStore()
	params := ServiceParams{
		Logger:        logger.L,
		Config:        config.GetDefaultConfig(),
		DB:            testutil.NewMockPostgresClient(),
		Cache:         cache.NewInMemoryCache(),
		SubRepo:       testutil.NewInMemorySubscriptionStore(),
		SubEventRepo:  s.eventRepo,
		CatalogLookup: catalogStore,
		Notifier:      testutil.NewInMemoryNotifier(),
	}

	s.subSvc = NewSubscriptionService(params).(*subscriptionService)
	s.subSvc.now = func() time.Time { return s.now }
	s.subSvc.replayer.WithClock(func() time.Time { return s.now })

	s.service = NewRepairService(params).(*repairService)
	s.service.now = func() time.Time { return s.now }
	s.service.replayer.WithClock(func() time.Time { return s.now })

	resp, err := s.subSvc.CreateSubscription(s.ctx, &dto.CreateSubscriptionRequest{
		CustomerID:    "cust_1",
		PlanName:      "gold-monthly",
		LookupKey:     "acme-main",
		StartDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
	})
	s.Require().NoError(err)
	s.subID = resp.Subscription.ID
}

func (s *RepairServiceSuite) TestSessionIsSeededFromDurableLog() {
	session, err := s.service.NewSession(s.ctx, s.subID)
	s.Require().NoError(err)
	defer session.Close()

	events, err := session.ActiveEvents(s.ctx, s.subID, types.SubscriptionEventFilterAll, s.now)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(types.SubscriptionEventCreate, events[0].Kind)
}

func (s *RepairServiceSuite) TestSessionAppendsStayLocal() {
	session, err := s.service.NewSession(s.ctx, s.subID)
	s.Require().NoError(err)
	defer session.Close()

	repairCancel := &subscription.Event{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
		SubscriptionID: s.subID,
		Kind:           types.SubscriptionEventCancel,
		EffectiveAt:    time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		RecordedAt:     s.now,
		Active:         true,
	}
	s.Require().NoError(session.Append(s.ctx, repairCancel))
	s.Equal(int64(2), repairCancel.TotalOrdering)

	transitions, err := s.service.ReplaySession(s.ctx, session)
	s.Require().NoError(err)
	s.Require().Len(transitions, 2)
	s.Equal(types.SubscriptionStateCancelled, transitions[1].NextState)

	// The durable log never saw the repair event
	durable, err := s.eventRepo.ActiveEvents(s.ctx, s.subID, types.SubscriptionEventFilterAll, s.now)
	s.Require().NoError(err)
	s.Require().Len(durable, 1)
	s.Equal(types.SubscriptionEventCreate, durable[0].Kind)
}

func (s *RepairServiceSuite) TestSessionDeactivateStaysLocal() {
	session, err := s.service.NewSession(s.ctx, s.subID)
	s.Require().NoError(err)
	defer session.Close()

	seeded, err := session.ActiveEvents(s.ctx, s.subID, types.SubscriptionEventFilterAll, s.now)
	s.Require().NoError(err)
	s.Require().NoError(session.Deactivate(s.ctx, seeded[0].ID))

	remaining, err := session.ActiveEvents(s.ctx, s.subID, types.SubscriptionEventFilterAll, s.now)
	s.Require().NoError(err)
	s.Empty(remaining)

	durable, err := s.eventRepo.ActiveEvents(s.ctx, s.subID, types.SubscriptionEventFilterAll, s.now)
	s.Require().NoError(err)
	s.Len(durable, 1)
}

func (s *RepairServiceSuite) TestSessionDeactivateIsIdempotent() {
	session, err := s.service.NewSession(s.ctx, s.subID)
	s.Require().NoError(err)
	defer session.Close()

	seeded, err := session.ActiveEvents(s.ctx, s.subID, types.SubscriptionEventFilterAll, s.now)
	s.Require().NoError(err)
	s.Require().Len(seeded, 1)

	s.Require().NoError(session.Deactivate(s.ctx, seeded[0].ID))
	s.Require().NoError(session.Deactivate(s.ctx, seeded[0].ID))

	remaining, err := session.ActiveEvents(s.ctx, s.subID, types.SubscriptionEventFilterAll, s.now)
	s.Require().NoError(err)
	s.Empty(remaining)
}

func (s *RepairServiceSuite) TestSessionRejectsOtherSubscription() {
	session, err := s.service.NewSession(s.ctx, s.subID)
	s.Require().NoError(err)
	defer session.Close()

	err = session.Append(s.ctx, &subscription.Event{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
		SubscriptionID: "subs_other",
		Kind:           types.SubscriptionEventCancel,
		EffectiveAt:    s.now,
		Active:         true,
	})
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *RepairServiceSuite) TestClosedSessionRejectsEverything() {
	session, err := s.service.NewSession(s.ctx, s.subID)
	s.Require().NoError(err)
	session.Close()

	_, err = session.ActiveEvents(s.ctx, s.subID, types.SubscriptionEventFilterAll, s.now)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))

	err = session.Append(s.ctx, &subscription.Event{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
		SubscriptionID: s.subID,
		Kind:           types.SubscriptionEventCancel,
		EffectiveAt:    s.now,
		Active:         true,
	})
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *RepairServiceSuite) TestConcurrentSessionsAreIsolated() {
	first, err := s.service.NewSession(s.ctx, s.subID)
	s.Require().NoError(err)
	defer first.Close()

	second, err := s.service.NewSession(s.ctx, s.subID)
	s.Require().NoError(err)
	defer second.Close()

	s.Require().NoError(first.Append(s.ctx, &subscription.Event{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT),
		SubscriptionID: s.subID,
		Kind:           types.SubscriptionEventCancel,
		EffectiveAt:    time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
		RecordedAt:     s.now,
		Active:         true,
	}))

	firstEvents, err := first.ActiveEvents(s.ctx, s.subID, types.SubscriptionEventFilterAll, s.now)
	s.Require().NoError(err)
	s.Len(firstEvents, 2)

	secondEvents, err := second.ActiveEvents(s.ctx, s.subID, types.SubscriptionEventFilterAll, s.now)
	s.Require().NoError(err)
	s.Len(secondEvents, 1)
}
