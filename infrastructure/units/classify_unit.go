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

var _ ports.Unit = (*ClassifyUnit)(nil)

// ClassifyUnit derives a profile from domain.KeyRoleScores and writes it
// to domain.KeyProfile.
type ClassifyUnit struct {
	name   string
	config ClassifyConfig
	tracer trace.Tracer
}

// ClassifyConfig holds the classifier thresholds. Omitted fields keep the
// reference defaults when built through CreateClassifyUnit.
type ClassifyConfig struct {
	Thresholds scoring.ClassifierThresholds `yaml:",inline" json:"thresholds"`
}

// DefaultClassifyConfig returns the reference thresholds.
func DefaultClassifyConfig() ClassifyConfig {
	return ClassifyConfig{Thresholds: scoring.DefaultClassifierThresholds()}
}

// NewClassifyUnit creates a new ClassifyUnit.
func NewClassifyUnit(name string, config ClassifyConfig) (*ClassifyUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &ClassifyUnit{
		name:   name,
		config: config,
		tracer: otel.Tracer("classify-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *ClassifyUnit) Name() string { return u.name }

// Execute classifies the role scores held in state.
func (u *ClassifyUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "ClassifyUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "classify"),
			attribute.String("unit.id", u.name),
			attribute.Float64("config.tie", u.config.Thresholds.Tie),
		),
	)
	defer span.End()

	scores, err := domain.Require(state, domain.KeyRoleScores)
	if err != nil {
		return fail(span, state, err)
	}

	profile := scoring.Classify(scores, u.config.Thresholds)

	span.SetAttributes(
		attribute.String("profile.type", string(profile.ProfileType)),
		attribute.Float64("profile.dominance_ratio", profile.DominanceRatio),
		attribute.Bool("profile.tied", u.config.Thresholds.Tied(profile)),
	)
	if profile.PrimaryRole != nil {
		span.SetAttributes(attribute.String("profile.primary", profile.PrimaryRole.String()))
	}

	return domain.With(state, domain.KeyProfile, profile), nil
}

// Validate checks if the unit is properly configured and ready for execution.
func (u *ClassifyUnit) Validate() error {
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreateClassifyUnit is a factory function that creates a ClassifyUnit
// from a configuration map, for use with the UnitRegistry.
func CreateClassifyUnit(id string, config map[string]any) (*ClassifyUnit, error) {
	cfg := DefaultClassifyConfig()
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	return NewClassifyUnit(id, cfg)
}
