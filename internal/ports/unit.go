// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// Unit represents the fundamental building block of an analysis graph.
// Each Unit performs a specific transformation on the analysis State, such
// as accumulating answers into role scores or computing a balance score.
// Units should be stateless and thread-safe for concurrent execution.
type Unit interface {
	// Name returns a unique identifier for this unit.
	// The name is used for logging, tracing, and configuration.
	Name() string

	// Execute performs the unit's transformation on the provided State.
	// It returns a new State containing the results of the transformation.
	// The original State must not be modified.
	//
	// The context parameter allows for cancellation and deadline propagation.
	// Units should respect context cancellation and return promptly.
	//
	// Example:
	//
	//	newState, err := unit.Execute(ctx, state)
	//	if err != nil {
	//	    return domain.State{}, fmt.Errorf("unit %s failed: %w", unit.Name(), err)
	//	}
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// Validate checks if the unit is properly configured and ready for execution.
	// It is typically called during graph construction or before execution.
	// Return nil if validation passes, or an error describing what is invalid.
	Validate() error
}

// UnitFactory creates a configured Unit from an identifier and a raw
// configuration map, usually decoded from a graph definition.
type UnitFactory func(id string, config map[string]any) (Unit, error)

// UnitRegistry creates units by type name. Graph loaders use it to turn
// declarative unit definitions into executable units.
type UnitRegistry interface {
	// CreateUnit builds a unit of the given registered type.
	CreateUnit(unitType, id string, config map[string]any) (Unit, error)

	// RegisterUnitFactory adds or replaces the factory for a unit type.
	RegisterUnitFactory(unitType string, factory UnitFactory) error

	// GetSupportedTypes lists every registered unit type in sorted order.
	GetSupportedTypes() []string
}
