package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/billforge/billforge/internal/domain/catalog"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
)

// InMemoryCatalogStore implements catalog.Lookup over plan versions and
// products registered by the test
type InMemoryCatalogStore struct {
	mu       sync.RWMutex
	plans    map[string][]*catalog.Plan // map[planName]versions ordered by registration
	phases   map[string]*catalog.Phase  // map[phaseName]phase
	products map[string]*catalog.Product

	// FailLookups makes every lookup return an error, used to exercise
	// catalog degradation paths
	FailLookups bool
}

func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		plans:    make(map[string][]*catalog.Plan),
		phases:   make(map[string]*catalog.Phase),
		products: make(map[string]*catalog.Product),
	}
}

// AddPlan registers a plan version and its phases
func (s *InMemoryCatalogStore) AddPlan(plan *catalog.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans[plan.Name] = append(s.plans[plan.Name], plan)
	for _, phase := range plan.Phases {
		s.phases[phase.Name] = phase
	}
}

// AddProduct registers a product and its add-on relationships
func (s *InMemoryCatalogStore) AddProduct(product *catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.Name] = product
}

func (s *InMemoryCatalogStore) FindPlan(ctx context.Context, name string, asOf time.Time, tieBreak time.Time) (*catalog.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailLookups {
		return nil, ierr.NewError("catalog unavailable").
			Mark(ierr.ErrSystem)
	}

	var match *catalog.Plan
	for _, plan := range s.plans[name] {
		if plan.EffectiveAt.After(asOf) {
			continue
		}
		if plan.RetiredAt != nil && !plan.RetiredAt.After(asOf) {
			continue
		}
		// Later effective version wins among the candidates
		if match == nil || plan.EffectiveAt.After(match.EffectiveAt) {
			match = plan
		}
	}
	if match == nil {
		return nil, ierr.NewError("plan not found").
			WithHintf("No version of plan %s is effective on %s", name, asOf.Format(time.DateOnly)).
			Mark(ierr.ErrNotFound)
	}
	return match, nil
}

func (s *InMemoryCatalogStore) FindPhase(ctx context.Context, name string, asOf time.Time) (*catalog.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailLookups {
		return nil, ierr.NewError("catalog unavailable").
			Mark(ierr.ErrSystem)
	}

	phase, exists := s.phases[name]
	if !exists {
		return nil, ierr.NewError("phase not found").
			WithHintf("Phase %s was not found", name).
			Mark(ierr.ErrNotFound)
	}
	return phase, nil
}

func (s *InMemoryCatalogStore) IsAddonAvailable(ctx context.Context, basePlanName string, addOnPlanName string, asOf time.Time) (bool, error) {
	product, err := s.productOf(ctx, basePlanName, asOf)
	if err != nil {
		return false, err
	}
	return lo.Contains(product.AvailableAddOns, addOnPlanName), nil
}

func (s *InMemoryCatalogStore) IsAddonIncluded(ctx context.Context, basePlanName string, addOnPlanName string, asOf time.Time) (bool, error) {
	product, err := s.productOf(ctx, basePlanName, asOf)
	if err != nil {
		return false, err
	}
	return lo.Contains(product.IncludedAddOns, addOnPlanName), nil
}

func (s *InMemoryCatalogStore) productOf(ctx context.Context, planName string, asOf time.Time) (*catalog.Product, error) {
	plan, err := s.FindPlan(ctx, planName, asOf, asOf)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[plan.ProductName]
	if !exists {
		return nil, ierr.NewError("product not found").
			WithHintf("Product %s was not found", plan.ProductName).
			Mark(ierr.ErrNotFound)
	}
	return product, nil
}
