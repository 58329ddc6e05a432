package application

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ahrav/go-rolecall/infrastructure/units"
	"github.com/ahrav/go-rolecall/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.UnitRegistry = (*DefaultUnitRegistry)(nil)

// DefaultUnitRegistry maps unit type names to factories. It comes with
// every built-in analysis unit registered and injects the respondent
// scorer into units that need one.
type DefaultUnitRegistry struct {
	factories map[string]ports.UnitFactory
	mu        sync.RWMutex

	// scorer is injected into score_members units.
	scorer units.RespondentScorer
}

// NewDefaultUnitRegistry creates a registry with the built-in unit types.
// A nil scorer selects ScoreRespondents.
func NewDefaultUnitRegistry(scorer units.RespondentScorer) *DefaultUnitRegistry {
	if scorer == nil {
		scorer = ScoreRespondents
	}
	registry := &DefaultUnitRegistry{
		factories: make(map[string]ports.UnitFactory),
		scorer:    scorer,
	}
	registry.registerBuiltinFactories()
	return registry
}

// adapt lifts a typed unit constructor to a ports.UnitFactory.
func adapt[U ports.Unit](create func(string, map[string]any) (U, error)) ports.UnitFactory {
	return func(id string, config map[string]any) (ports.Unit, error) {
		unit, err := create(id, config)
		if err != nil {
			return nil, err
		}
		return unit, nil
	}
}

func (r *DefaultUnitRegistry) registerBuiltinFactories() {
	scorer := r.scorer

	r.factories["accumulate"] = adapt(units.CreateAccumulateUnit)
	r.factories["classify"] = adapt(units.CreateClassifyUnit)
	r.factories["aggregate"] = adapt(units.CreateAggregateUnit)
	r.factories["balance"] = adapt(units.CreateBalanceUnit)
	r.factories["gap_analysis"] = adapt(units.CreateGapAnalysisUnit)
	r.factories["complementary_match"] = adapt(units.CreateComplementaryMatchUnit)
	r.factories["composition"] = adapt(units.CreateCompositionUnit)

	r.factories["score_members"] = func(id string, config map[string]any) (ports.Unit, error) {
		config["scorer"] = scorer
		return adapt(units.CreateScoreMembersUnit)(id, config)
	}
}

// CreateUnit builds a unit of unitType. The config map may be extended
// with injected dependencies.
func (r *DefaultUnitRegistry) CreateUnit(unitType string, id string, config map[string]any) (ports.Unit, error) {
	r.mu.RLock()
	factory, exists := r.factories[unitType]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported unit type: %s", unitType)
	}
	if id == "" {
		return nil, fmt.Errorf("unit ID cannot be empty")
	}
	if config == nil {
		config = make(map[string]any)
	}

	unit, err := factory(id, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create unit %s of type %s: %w", id, unitType, err)
	}
	return unit, nil
}

// RegisterUnitFactory adds or replaces the factory for unitType.
func (r *DefaultUnitRegistry) RegisterUnitFactory(unitType string, factory ports.UnitFactory) error {
	if unitType == "" {
		return fmt.Errorf("unit type cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[unitType] = factory
	return nil
}

// GetSupportedTypes returns the registered unit types in sorted order.
func (r *DefaultUnitRegistry) GetSupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for unitType := range r.factories {
		types = append(types, unitType)
	}
	slices.Sort(types)
	return types
}

// Scorer returns the scorer injected into score_members units.
func (r *DefaultUnitRegistry) Scorer() units.RespondentScorer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.scorer
}
