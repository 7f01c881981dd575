package catalog

import (
	"context"
	"time"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// StaticCatalog is a full catalog definition loaded from a file. Plan
// versions sharing a name are distinguished by their effective dates.
type StaticCatalog struct {
	Products []*Product `json:"products"`
	Plans    []*Plan    `json:"plans"`
}

// LoadCatalog reads a yaml catalog definition from disk
func LoadCatalog(path string) (*StaticCatalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Failed to read catalog file %s", path).
			Mark(ierr.ErrSystem)
	}

	var catalog StaticCatalog
	decodeAsJSON := func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
		dc.DecodeHook = mapstructure.StringToTimeHookFunc(time.RFC3339)
	}
	if err := v.Unmarshal(&catalog, decodeAsJSON); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Failed to parse catalog file %s", path).
			Mark(ierr.ErrValidation)
	}
	return &catalog, nil
}

// StaticLookup implements Lookup over an immutable catalog definition
type StaticLookup struct {
	plans    map[string][]*Plan
	phases   map[string]*Phase
	products map[string]*Product
}

var _ Lookup = (*StaticLookup)(nil)

func NewStaticLookup(catalog *StaticCatalog) *StaticLookup {
	l := &StaticLookup{
		plans:    make(map[string][]*Plan),
		phases:   make(map[string]*Phase),
		products: make(map[string]*Product),
	}
	for _, product := range catalog.Products {
		l.products[product.Name] = product
	}
	for _, plan := range catalog.Plans {
		l.plans[plan.Name] = append(l.plans[plan.Name], plan)
		for _, phase := range plan.Phases {
			l.phases[phase.Name] = phase
		}
	}
	return l
}

// FindPlan picks the latest plan version effective on asOf and not yet
// retired
func (l *StaticLookup) FindPlan(ctx context.Context, name string, asOf time.Time, tieBreak time.Time) (*Plan, error) {
	var match *Plan
	for _, plan := range l.plans[name] {
		if plan.EffectiveAt.After(asOf) {
			continue
		}
		if plan.RetiredAt != nil && !plan.RetiredAt.After(asOf) {
			continue
		}
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

func (l *StaticLookup) FindPhase(ctx context.Context, name string, asOf time.Time) (*Phase, error) {
	phase, exists := l.phases[name]
	if !exists {
		return nil, ierr.NewError("phase not found").
			WithHintf("Phase %s was not found", name).
			Mark(ierr.ErrNotFound)
	}
	return phase, nil
}

func (l *StaticLookup) IsAddonAvailable(ctx context.Context, basePlanName string, addOnPlanName string, asOf time.Time) (bool, error) {
	product, err := l.productOf(ctx, basePlanName, asOf)
	if err != nil {
		return false, err
	}
	return lo.Contains(product.AvailableAddOns, addOnPlanName), nil
}

func (l *StaticLookup) IsAddonIncluded(ctx context.Context, basePlanName string, addOnPlanName string, asOf time.Time) (bool, error) {
	product, err := l.productOf(ctx, basePlanName, asOf)
	if err != nil {
		return false, err
	}
	return lo.Contains(product.IncludedAddOns, addOnPlanName), nil
}

func (l *StaticLookup) productOf(ctx context.Context, planName string, asOf time.Time) (*Product, error) {
	plan, err := l.FindPlan(ctx, planName, asOf, asOf)
	if err != nil {
		return nil, err
	}
	product, exists := l.products[plan.ProductName]
	if !exists {
		return nil, ierr.NewError("product not found").
			WithHintf("Product %s referenced by plan %s was not found", plan.ProductName, planName).
			Mark(ierr.ErrNotFound)
	}
	return product, nil
}
