package postgres

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/types"
)

type subscriptionEventRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionEventRepository(db *postgres.DB, logger *logger.Logger) subscription.EventRepository {
	return &subscriptionEventRepository{db: db, logger: logger}
}

// Append inserts the event and assigns the next per-subscription total
// ordering sequence number in the same statement, so concurrent appends
// under serializable or read committed isolation cannot produce
// duplicate sequence numbers within one subscription.
func (r *subscriptionEventRepository) Append(ctx context.Context, event *subscription.Event) error {
	query := `
		INSERT INTO subscription_events (
			id,
			subscription_id,
			kind,
			effective_at,
			recorded_at,
			total_ordering,
			active,
			plan_name,
			phase_name,
			bill_cycle_day,
			target_event_id,
			tenant_id,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:subscription_id,
			:kind,
			:effective_at,
			:recorded_at,
			(
				SELECT COALESCE(MAX(total_ordering), 0) + 1
				FROM subscription_events
				WHERE subscription_id = :subscription_id
			),
			:active,
			:plan_name,
			:phase_name,
			:bill_cycle_day,
			:target_event_id,
			:tenant_id,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
		RETURNING total_ordering
	`

	rows, err := r.db.NamedQueryContext(ctx, query, event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to append subscription event").
			WithReportableDetails(map[string]any{
				"subscription_id": event.SubscriptionID,
				"kind":            event.Kind,
			}).
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&event.TotalOrdering); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to read assigned event ordering").
				Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

// Deactivate flips the active flag off. Deactivating an event that is
// already inactive is a no-op; a missing event is an error.
func (r *subscriptionEventRepository) Deactivate(ctx context.Context, eventID string) error {
	query := `
		UPDATE subscription_events SET
			active = FALSE,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE
			id = :id AND
			tenant_id = :tenant_id
	`

	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":         eventID,
		"tenant_id":  types.GetTenantID(ctx),
		"updated_at": time.Now().UTC(),
		"updated_by": types.GetUserID(ctx),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to deactivate subscription event").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to deactivate subscription event").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("subscription event not found").
			WithHintf("Subscription event %s was not found", eventID).
			WithReportableDetails(map[string]any{
				"event_id": eventID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionEventRepository) GetEvent(ctx context.Context, eventID string) (*subscription.Event, error) {
	query := `
		SELECT * FROM subscription_events
		WHERE
			id = :id AND
			tenant_id = :tenant_id
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":        eventID,
		"tenant_id": types.GetTenantID(ctx),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription event").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("subscription event not found").
			WithHintf("Subscription event %s was not found", eventID).
			WithReportableDetails(map[string]any{
				"event_id": eventID,
			}).
			Mark(ierr.ErrNotFound)
	}

	var event subscription.Event
	if err := rows.StructScan(&event); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan subscription event").
			Mark(ierr.ErrDatabase)
	}
	return &event, nil
}

// ActiveEvents returns the active events of a subscription sorted by
// (effective_at, total_ordering), operation markers excluded
func (r *subscriptionEventRepository) ActiveEvents(ctx context.Context, subscriptionID string, filter types.SubscriptionEventFilter, asOf time.Time) ([]*subscription.Event, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := `
		SELECT * FROM subscription_events
		WHERE
			subscription_id = :subscription_id AND
			tenant_id = :tenant_id AND
			active = TRUE AND
			kind NOT IN (:marker_uncancel, :marker_undo_change)
	`
	switch filter {
	case types.SubscriptionEventFilterFuture:
		query += ` AND effective_at > :as_of`
	case types.SubscriptionEventFilterFutureOrPresent:
		query += ` AND effective_at >= :as_of`
	}
	query += ` ORDER BY effective_at, total_ordering`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"subscription_id":    subscriptionID,
		"tenant_id":          types.GetTenantID(ctx),
		"marker_uncancel":    types.SubscriptionEventUncancel,
		"marker_undo_change": types.SubscriptionEventUndoChange,
		"as_of":              asOf,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscription events").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	events := make([]*subscription.Event, 0)
	for rows.Next() {
		var event subscription.Event
		if err := rows.StructScan(&event); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan subscription event").
				Mark(ierr.ErrDatabase)
		}
		events = append(events, &event)
	}
	return events, nil
}
