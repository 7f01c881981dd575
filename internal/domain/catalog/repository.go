package catalog

import (
	"context"
	"time"
)

// Lookup is the consumed catalog boundary. Implementations resolve
// versioned catalog entries; all queries are pure reads.
//
// FindPlan resolves the plan version effective on asOf; tieBreak is the
// subscription's alignment start date used to pick between overlapping
// versions. FindPhase resolves a phase by its fully qualified name.
type Lookup interface {
	FindPlan(ctx context.Context, name string, asOf time.Time, tieBreak time.Time) (*Plan, error)
	FindPhase(ctx context.Context, name string, asOf time.Time) (*Phase, error)

	// IsAddonAvailable reports whether the product of the named base plan
	// makes the add-on plan purchasable on the given date
	IsAddonAvailable(ctx context.Context, basePlanName string, addOnPlanName string, asOf time.Time) (bool, error)

	// IsAddonIncluded reports whether the product of the named base plan
	// bundles the add-on plan for free on the given date
	IsAddonIncluded(ctx context.Context, basePlanName string, addOnPlanName string, asOf time.Time) (bool, error)
}
