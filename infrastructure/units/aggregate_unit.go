package units

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/ports"
	"github.com/ahrav/go-rolecall/internal/scoring"
)

var _ ports.Unit = (*AggregateUnit)(nil)

// AggregateUnit sums domain.KeyMemberScores into domain.KeyDistribution.
// An empty group yields the all-zero distribution unless MinMembers is set.
type AggregateUnit struct {
	name       string
	config     AggregateConfig
	aggregator domain.Aggregator
	tracer     trace.Tracer
}

// AggregateConfig defines the configuration parameters for AggregateUnit.
type AggregateConfig struct {
	// MinMembers fails the unit for smaller groups. 0 disables the check.
	MinMembers int `yaml:"min_members" json:"min_members" validate:"min=0"`
}

// NewAggregateUnit creates a new AggregateUnit using the summing aggregator.
func NewAggregateUnit(name string, config AggregateConfig) (*AggregateUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &AggregateUnit{
		name:       name,
		config:     config,
		aggregator: scoring.SumAggregator,
		tracer:     otel.Tracer("aggregate-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *AggregateUnit) Name() string { return u.name }

// Execute computes the group distribution.
func (u *AggregateUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "AggregateUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "aggregate"),
			attribute.String("unit.id", u.name),
		),
	)
	defer span.End()

	members, err := domain.Require(state, domain.KeyMemberScores)
	if err != nil {
		return fail(span, state, err)
	}
	if len(members) < u.config.MinMembers {
		return fail(span, state, fmt.Errorf("%w: %d < %d", ErrTooFewMembers, len(members), u.config.MinMembers))
	}

	vectors := make([]domain.RoleScores, len(members))
	for i, m := range members {
		vectors[i] = m.Scores
	}
	dist := u.aggregator.Aggregate(vectors)

	span.SetAttributes(
		attribute.Int("group.members", len(members)),
		attribute.Float64("distribution.total", dist.Total()),
	)

	return domain.With(state, domain.KeyDistribution, dist), nil
}

// Validate checks if the unit is properly configured and ready for execution.
func (u *AggregateUnit) Validate() error {
	if u.aggregator == nil {
		return fmt.Errorf("aggregator is not configured")
	}
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreateAggregateUnit is a factory function that creates an AggregateUnit
// from a configuration map, for use with the UnitRegistry.
func CreateAggregateUnit(id string, config map[string]any) (*AggregateUnit, error) {
	var cfg AggregateConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	return NewAggregateUnit(id, cfg)
}
