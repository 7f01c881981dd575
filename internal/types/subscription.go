package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionState is the replayed lifecycle state of a subscription
type SubscriptionState string

const (
	SubscriptionStateActive    SubscriptionState = "active"
	SubscriptionStateCancelled SubscriptionState = "cancelled"
)

func (s SubscriptionState) String() string {
	return string(s)
}

// ProductCategory differentiates standalone base subscriptions from
// add-ons whose lifetime is conditioned on a sibling base subscription.
type ProductCategory string

const (
	ProductCategoryBase  ProductCategory = "base"
	ProductCategoryAddOn ProductCategory = "addon"
)

func (c ProductCategory) String() string {
	return string(c)
}

func (c ProductCategory) Validate() error {
	allowed := []ProductCategory{
		ProductCategoryBase,
		ProductCategoryAddOn,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid product category").
			WithHint("Product category must be base or addon").
			WithReportableDetails(map[string]any{
				"category":       c,
				"allowed_values": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
