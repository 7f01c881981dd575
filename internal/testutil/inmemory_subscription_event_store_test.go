package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySubscriptionEventStore_DeactivateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemorySubscriptionEventStore()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	create := &subscription.Event{
		ID:             "subev_1",
		SubscriptionID: "subs_1",
		Kind:           types.SubscriptionEventCreate,
		EffectiveAt:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		RecordedAt:     now,
		Active:         true,
	}
	change := &subscription.Event{
		ID:             "subev_2",
		SubscriptionID: "subs_1",
		Kind:           types.SubscriptionEventChange,
		EffectiveAt:    time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		RecordedAt:     now,
		Active:         true,
	}
	require.NoError(t, store.Append(ctx, create))
	require.NoError(t, store.Append(ctx, change))

	require.NoError(t, store.Deactivate(ctx, change.ID))
	afterFirst, err := store.ActiveEvents(ctx, "subs_1", types.SubscriptionEventFilterAll, now)
	require.NoError(t, err)
	require.Len(t, afterFirst, 1)
	assert.Equal(t, create.ID, afterFirst[0].ID)

	// A second deactivation changes nothing observable
	require.NoError(t, store.Deactivate(ctx, change.ID))
	afterSecond, err := store.ActiveEvents(ctx, "subs_1", types.SubscriptionEventFilterAll, now)
	require.NoError(t, err)
	require.Len(t, afterSecond, 1)
	assert.Equal(t, afterFirst[0].ID, afterSecond[0].ID)
	assert.Equal(t, afterFirst[0].TotalOrdering, afterSecond[0].TotalOrdering)

	stored, err := store.GetEvent(ctx, change.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestInMemorySubscriptionEventStore_DeactivateUnknownEvent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemorySubscriptionEventStore()

	err := store.Deactivate(ctx, "subev_missing")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}
