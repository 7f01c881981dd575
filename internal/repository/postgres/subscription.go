package postgres

import (
	"context"
	"errors"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/types"
	"github.com/lib/pq"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id,
			lookup_key,
			customer_id,
			plan_name,
			category,
			base_subscription_id,
			start_date,
			end_date,
			bill_cycle_day,
			billing_period,
			billing_period_unit,
			billing_mode,
			tenant_id,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:lookup_key,
			:customer_id,
			:plan_name,
			:category,
			:base_subscription_id,
			:start_date,
			:end_date,
			:bill_cycle_day,
			:billing_period,
			:billing_period_unit,
			:billing_mode,
			:tenant_id,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ierr.WithError(err).
				WithHintf("A subscription with lookup key %s already exists", sub.LookupKey).
				WithReportableDetails(map[string]any{
					"lookup_key": sub.LookupKey,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE
			id = :id AND
			tenant_id = :tenant_id AND
			status = :status
	`
	return r.getOne(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
	}, id)
}

func (r *subscriptionRepository) GetByLookupKey(ctx context.Context, lookupKey string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE
			lookup_key = :lookup_key AND
			tenant_id = :tenant_id AND
			status = :status
	`
	return r.getOne(ctx, query, map[string]interface{}{
		"lookup_key": lookupKey,
		"tenant_id":  types.GetTenantID(ctx),
		"status":     types.StatusPublished,
	}, lookupKey)
}

func (r *subscriptionRepository) getOne(ctx context.Context, query string, args map[string]interface{}, identifier string) (*subscription.Subscription, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("subscription not found").
			WithHintf("Subscription %s was not found", identifier).
			WithReportableDetails(map[string]any{
				"subscription": identifier,
			}).
			Mark(ierr.ErrNotFound)
	}

	var sub subscription.Subscription
	if err := rows.StructScan(&sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListByCustomer(ctx context.Context, customerID string) ([]*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE
			customer_id = :customer_id AND
			tenant_id = :tenant_id AND
			status = :status
		ORDER BY start_date, id
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"customer_id": customerID,
		"tenant_id":   types.GetTenantID(ctx),
		"status":      types.StatusPublished,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	subs := make([]*subscription.Subscription, 0)
	for rows.Next() {
		var sub subscription.Subscription
		if err := rows.StructScan(&sub); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan subscription").
				Mark(ierr.ErrDatabase)
		}
		subs = append(subs, &sub)
	}
	return subs, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			end_date = :end_date,
			bill_cycle_day = :bill_cycle_day,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE
			id = :id AND
			tenant_id = :tenant_id
	`

	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("subscription not found").
			WithHintf("Subscription %s was not found", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
