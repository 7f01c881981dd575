package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/logger"
)

// Resolution is the typed result of a pretty name lookup. A failed
// lookup is an explicit unresolved value rather than a caught error:
// callers render the raw name and move on, the timeline computation is
// never aborted by a catalog fault.
type Resolution struct {
	PrettyName string
	Resolved   bool
}

// Resolver memoizes catalog pretty name lookups. Lookup failures are
// logged at warn and degrade to an unresolved Resolution.
type Resolver struct {
	lookup Lookup
	cache  cache.Cache
	logger *logger.Logger
}

const resolutionTTL = 30 * time.Minute

func NewResolver(lookup Lookup, c cache.Cache, logger *logger.Logger) *Resolver {
	return &Resolver{
		lookup: lookup,
		cache:  c,
		logger: logger,
	}
}

// ResolvePlan resolves the pretty name of a plan version
func (r *Resolver) ResolvePlan(ctx context.Context, name string, asOf time.Time, tieBreak time.Time) Resolution {
	if name == "" {
		return Resolution{}
	}

	cacheKey := fmt.Sprintf("catalog:plan:%s:%d", name, asOf.Unix())
	if cached, ok := r.cache.Get(ctx, cacheKey); ok {
		if res, ok := cached.(Resolution); ok {
			return res
		}
	}

	plan, err := r.lookup.FindPlan(ctx, name, asOf, tieBreak)
	if err != nil {
		r.logger.Warnw("failed to resolve plan from catalog",
			"plan_name", name,
			"as_of", asOf,
			"error", err)
		return Resolution{}
	}

	res := Resolution{PrettyName: plan.PrettyName, Resolved: true}
	r.cache.Set(ctx, cacheKey, res, resolutionTTL)
	return res
}

// ResolvePhase resolves the pretty name of a plan phase
func (r *Resolver) ResolvePhase(ctx context.Context, name string, asOf time.Time) Resolution {
	if name == "" {
		return Resolution{}
	}

	cacheKey := fmt.Sprintf("catalog:phase:%s:%d", name, asOf.Unix())
	if cached, ok := r.cache.Get(ctx, cacheKey); ok {
		if res, ok := cached.(Resolution); ok {
			return res
		}
	}

	phase, err := r.lookup.FindPhase(ctx, name, asOf)
	if err != nil {
		r.logger.Warnw("failed to resolve phase from catalog",
			"phase_name", name,
			"as_of", asOf,
			"error", err)
		return Resolution{}
	}

	res := Resolution{PrettyName: phase.PrettyName, Resolved: true}
	r.cache.Set(ctx, cacheKey, res, resolutionTTL)
	return res
}
