package catalog

import (
	"time"
)

// Product groups plans and declares which add-on plans it makes
// available or bundles for free.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PrettyName string `json:"pretty_name,omitempty"`

	// AvailableAddOns are add-on plan names purchasable alongside this product
	AvailableAddOns []string `json:"available_addons,omitempty"`

	// IncludedAddOns are add-on plan names bundled for free with this product
	IncludedAddOns []string `json:"included_addons,omitempty"`
}

// Plan is a catalog plan version effective over a date range
type Plan struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	PrettyName  string     `json:"pretty_name,omitempty"`
	ProductName string     `json:"product_name"`
	EffectiveAt time.Time  `json:"effective_at"`
	RetiredAt   *time.Time `json:"retired_at,omitempty"`
	Phases      []*Phase   `json:"phases,omitempty"`
}

// Phase is one phase of a plan, e.g. trial then evergreen
type Phase struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PrettyName string `json:"pretty_name,omitempty"`
	PlanName   string `json:"plan_name"`
}
