package ports

import (
	"context"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// MergeStrategy combines the states produced by the members of a layer
// into a single output state.
type MergeStrategy interface {
	// Merge folds states into baseState, the layer's input. It must be
	// deterministic for a given input order and must not modify its inputs.
	Merge(baseState domain.State, states []domain.State) (domain.State, error)
}

// Executable is anything that can run as a node of an analysis graph:
// a unit, a pipeline of units, or a layer of parallel units.
type Executable interface {
	// Execute transforms state and returns the result. The input state is
	// shared with sibling executables in a layer and must be treated as
	// read-only; use domain.With or State.WithMultiple to derive a new one.
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// ID returns the identifier of the node, unique within its graph.
	ID() string
}

// Pipeline runs executables in sequence, feeding each one the output of
// the previous one.
type Pipeline interface {
	Executable

	// Add appends exec to the end of the sequence.
	Add(exec Executable) error

	// Executables returns the sequence in execution order. Callers must not
	// modify the returned slice.
	Executables() []Executable
}

// Layer runs independent executables concurrently on the same input state
// and merges their outputs.
type Layer interface {
	Executable

	// Add includes exec in the parallel group.
	Add(exec Executable) error

	// Executables returns the members of the layer. Callers must not
	// modify the returned slice.
	Executables() []Executable

	// SetMergeStrategy configures how member outputs are combined. Without
	// one, later members overwrite earlier members' keys.
	SetMergeStrategy(strategy MergeStrategy)
}

// Graph is a directed acyclic graph of executables.
type Graph interface {
	// AddNode registers exec. IDs must be unique within the graph.
	AddNode(exec Executable) error

	// AddEdge declares that targetID runs after sourceID. It fails when
	// either node is unknown or the edge would introduce a cycle.
	AddEdge(sourceID, targetID string) error

	// TopologicalSort returns the nodes in an order that respects every
	// edge.
	TopologicalSort() ([]Executable, error)

	// HasCycle reports whether the graph contains a cycle.
	HasCycle() bool

	// GetNode looks up a node by ID. The returned executable is the live
	// instance held by the graph and must be treated as read-only.
	GetNode(id string) (Executable, bool)
}
