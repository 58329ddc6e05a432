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

var _ ports.Unit = (*CompositionUnit)(nil)

// CompositionUnit classifies every member in domain.KeyMemberScores and
// counts primary and secondary roles into domain.KeyComposition.
type CompositionUnit struct {
	name   string
	config ClassifyConfig
	tracer trace.Tracer
}

// NewCompositionUnit creates a new CompositionUnit. It shares the
// classifier thresholds with ClassifyUnit.
func NewCompositionUnit(name string, config ClassifyConfig) (*CompositionUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &CompositionUnit{
		name:   name,
		config: config,
		tracer: otel.Tracer("composition-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *CompositionUnit) Name() string { return u.name }

// Execute counts the role composition of the group in state.
func (u *CompositionUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "CompositionUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "composition"),
			attribute.String("unit.id", u.name),
		),
	)
	defer span.End()

	members, err := domain.Require(state, domain.KeyMemberScores)
	if err != nil {
		return fail(span, state, err)
	}

	profiles := make([]domain.Profile, len(members))
	for i, m := range members {
		profiles[i] = scoring.Classify(m.Scores, u.config.Thresholds)
	}
	comp := scoring.Composition(profiles, u.config.Thresholds)

	span.SetAttributes(
		attribute.Int("group.members", len(members)),
		attribute.Int("composition.unclassified", comp.Unclassified),
	)

	return domain.With(state, domain.KeyComposition, comp), nil
}

// Validate checks if the unit is properly configured and ready for execution.
func (u *CompositionUnit) Validate() error {
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreateCompositionUnit is a factory function that creates a
// CompositionUnit from a configuration map.
func CreateCompositionUnit(id string, config map[string]any) (*CompositionUnit, error) {
	cfg := DefaultClassifyConfig()
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	return NewCompositionUnit(id, cfg)
}
