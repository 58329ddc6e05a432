package middleware

import (
	"github.com/ahrav/go-rolecall/internal/ports"
)

// GuardedRegistry decorates a unit registry so every unit it creates runs
// behind a GroupGuard observed through OpenTelemetry and metrics.
type GuardedRegistry struct {
	ports.UnitRegistry
	metrics ports.MetricsCollector
}

var _ ports.UnitRegistry = (*GuardedRegistry)(nil)

// NewGuardedRegistry wraps inner. metrics may be nil.
func NewGuardedRegistry(inner ports.UnitRegistry, metrics ports.MetricsCollector) *GuardedRegistry {
	return &GuardedRegistry{UnitRegistry: inner, metrics: metrics}
}

// CreateUnit builds the unit through the wrapped registry and guards it
// with the limit found under the max_members key.
func (r *GuardedRegistry) CreateUnit(unitType string, id string, config map[string]any) (ports.Unit, error) {
	unit, err := r.UnitRegistry.CreateUnit(unitType, id, config)
	if err != nil {
		return nil, err
	}
	return NewGroupGuard(LimitFromParams(config), unit, NewOTelGroupObserver(r.metrics, id)), nil
}
