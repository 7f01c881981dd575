package dto

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/domain/proration"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateSubscriptionRequest struct {
	CustomerID         string                `json:"customer_id" validate:"required"`
	PlanName           string                `json:"plan_name" validate:"required"`
	PhaseName          string                `json:"phase_name,omitempty"`
	LookupKey          string                `json:"lookup_key"`
	Category           types.ProductCategory `json:"category,omitempty"`
	BaseSubscriptionID string                `json:"base_subscription_id,omitempty"`
	StartDate          time.Time             `json:"start_date,omitempty"`
	EndDate            *time.Time            `json:"end_date,omitempty"`
	BillCycleDay       types.BillingCycleDay `json:"bill_cycle_day,omitempty"`
	BillingPeriod      types.BillingPeriod   `json:"billing_period" validate:"required"`
	BillingPeriodUnit  int                   `json:"billing_period_unit,omitempty"`
	BillingMode        types.BillingMode     `json:"billing_mode,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.BillingPeriod.Validate(); err != nil {
		return err
	}
	if r.Category == "" {
		r.Category = types.ProductCategoryBase
	}
	if err := r.Category.Validate(); err != nil {
		return err
	}
	if r.BillingMode == "" {
		r.BillingMode = types.BillingModeInAdvance
	}
	if err := r.BillingMode.Validate(); err != nil {
		return err
	}
	return nil
}

func (r *CreateSubscriptionRequest) ToSubscription(ctx context.Context) *subscription.Subscription {
	now := time.Now().UTC()
	if r.StartDate.IsZero() {
		r.StartDate = now
	}
	if r.BillCycleDay == 0 {
		r.BillCycleDay = types.BillingCycleDay(r.StartDate.Day())
	}
	if r.BillingPeriodUnit == 0 {
		r.BillingPeriodUnit = 1
	}

	return &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		LookupKey:          r.LookupKey,
		CustomerID:         r.CustomerID,
		PlanName:           r.PlanName,
		Category:           r.Category,
		BaseSubscriptionID: r.BaseSubscriptionID,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		BillCycleDay:       r.BillCycleDay,
		BillingPeriod:      r.BillingPeriod,
		BillingPeriodUnit:  r.BillingPeriodUnit,
		BillingMode:        r.BillingMode,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
}

type ChangePlanRequest struct {
	SubscriptionID string    `json:"subscription_id" validate:"required"`
	PlanName       string    `json:"plan_name" validate:"required"`
	PhaseName      string    `json:"phase_name,omitempty"`
	EffectiveAt    time.Time `json:"effective_at,omitempty"`
}

func (r *ChangePlanRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type CancelSubscriptionRequest struct {
	SubscriptionID string    `json:"subscription_id" validate:"required"`
	EffectiveAt    time.Time `json:"effective_at,omitempty"`
}

func (r *CancelSubscriptionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type UpdateBillingCycleDayRequest struct {
	SubscriptionID string                `json:"subscription_id" validate:"required"`
	BillCycleDay   types.BillingCycleDay `json:"bill_cycle_day" validate:"required"`
	EffectiveAt    time.Time             `json:"effective_at,omitempty"`
}

func (r *UpdateBillingCycleDayRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.BillCycleDay.Validate()
}

type SchedulePhaseTransitionRequest struct {
	SubscriptionID string    `json:"subscription_id" validate:"required"`
	PhaseName      string    `json:"phase_name" validate:"required"`
	EffectiveAt    time.Time `json:"effective_at" validate:"required"`
}

func (r *SchedulePhaseTransitionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type PreviewChangeRequest struct {
	SubscriptionID string    `json:"subscription_id" validate:"required"`
	PlanName       string    `json:"plan_name" validate:"required"`
	PhaseName      string    `json:"phase_name,omitempty"`
	EffectiveAt    time.Time `json:"effective_at,omitempty"`
}

func (r *PreviewChangeRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type PreviewInvoiceRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`

	// TargetDate is the evaluation date invoiced up to, now when zero
	TargetDate time.Time `json:"target_date,omitempty"`
}

func (r *PreviewInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// InvoiceItemPreview is one invoice line derived from a billable segment
type InvoiceItemPreview struct {
	Kind        types.InvoiceItemKind `json:"kind"`
	Description string                `json:"description"`
	StartDate   time.Time             `json:"start_date"`
	EndDate     time.Time             `json:"end_date"`
	CycleCount  decimal.Decimal       `json:"cycle_count"`
}

type PreviewInvoiceResponse struct {
	Subscription         *subscription.Subscription      `json:"subscription"`
	Items                []*InvoiceItemPreview           `json:"items"`
	Detail               proration.BillingIntervalDetail `json:"detail"`
	NextBillingCycleDate time.Time                       `json:"next_billing_cycle_date"`
}

type SubscriptionResponse struct {
	*subscription.Subscription
}

type TimelineResponse struct {
	Subscription *subscription.Subscription `json:"subscription"`
	Transitions  []*subscription.Transition `json:"transitions"`

	// SynthesizedCancel is the non persisted cancel injected by the
	// add-on cascade, nil when the timeline is fully explicit
	SynthesizedCancel *subscription.Event `json:"synthesized_cancel,omitempty"`
}
