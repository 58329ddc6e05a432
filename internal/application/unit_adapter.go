package application

import (
	"context"
	"fmt"
	"time"

	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/ports"
)

// UnitAdapter wraps a ports.Unit so it can be placed in pipelines, layers
// and graphs as a ports.Executable.
type UnitAdapter struct {
	unit ports.Unit
	id   string

	// timeout bounds a single Execute call; zero means no bound.
	timeout time.Duration
}

// NewUnitAdapter creates an adapter for unit under the graph node ID id.
func NewUnitAdapter(unit ports.Unit, id string) *UnitAdapter {
	return &UnitAdapter{
		unit: unit,
		id:   id,
	}
}

// WithTimeout returns a copy of the adapter whose executions are cancelled
// after d.
func (ua *UnitAdapter) WithTimeout(d time.Duration) *UnitAdapter {
	cp := *ua
	cp.timeout = d
	return &cp
}

// Execute runs the wrapped unit, applying the configured timeout.
func (ua *UnitAdapter) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	if ua.timeout <= 0 {
		return ua.unit.Execute(ctx, state)
	}

	ctx, cancel := context.WithTimeout(ctx, ua.timeout)
	defer cancel()

	out, err := ua.unit.Execute(ctx, state)
	if err != nil {
		return state, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return state, fmt.Errorf("unit %s exceeded %s: %w", ua.id, ua.timeout, ctxErr)
	}
	return out, nil
}

// ID returns the graph node ID of the adapter.
func (ua *UnitAdapter) ID() string { return ua.id }

// Unit returns the wrapped unit.
func (ua *UnitAdapter) Unit() ports.Unit { return ua.unit }
