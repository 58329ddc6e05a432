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

var _ ports.Unit = (*ComplementaryMatchUnit)(nil)

// ComplementaryMatchUnit recommends pairings of members whose profiles
// differ the most. It reads domain.KeyMemberScores and writes
// domain.KeyPairings, most complementary first.
type ComplementaryMatchUnit struct {
	name   string
	config ComplementaryMatchConfig
	tracer trace.Tracer
}

// ComplementaryMatchConfig defines the configuration parameters for
// ComplementaryMatchUnit.
type ComplementaryMatchConfig struct {
	// Threshold is the exclusive lower bound on the normalized distance.
	Threshold float64 `yaml:"threshold" json:"threshold" validate:"gte=0,lt=1"`

	// MaxPairings truncates the recommendation list. 0 keeps every pair.
	MaxPairings int `yaml:"max_pairings" json:"max_pairings" validate:"min=0"`
}

// DefaultComplementaryMatchConfig returns the reference threshold with no
// truncation.
func DefaultComplementaryMatchConfig() ComplementaryMatchConfig {
	return ComplementaryMatchConfig{Threshold: scoring.ComplementaryThreshold}
}

// NewComplementaryMatchUnit creates a new ComplementaryMatchUnit.
func NewComplementaryMatchUnit(name string, config ComplementaryMatchConfig) (*ComplementaryMatchUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &ComplementaryMatchUnit{
		name:   name,
		config: config,
		tracer: otel.Tracer("complementary-match-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *ComplementaryMatchUnit) Name() string { return u.name }

// Execute computes pairing recommendations for the group in state.
func (u *ComplementaryMatchUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "ComplementaryMatchUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "complementary_match"),
			attribute.String("unit.id", u.name),
			attribute.Float64("config.threshold", u.config.Threshold),
		),
	)
	defer span.End()

	members, err := domain.Require(state, domain.KeyMemberScores)
	if err != nil {
		return fail(span, state, err)
	}

	pairings := scoring.RecommendPairings(members, u.config.Threshold)
	if u.config.MaxPairings > 0 && len(pairings) > u.config.MaxPairings {
		pairings = pairings[:u.config.MaxPairings]
	}

	span.SetAttributes(
		attribute.Int("group.members", len(members)),
		attribute.Int("pairings.count", len(pairings)),
	)

	return domain.With(state, domain.KeyPairings, pairings), nil
}

// Validate checks if the unit is properly configured and ready for execution.
func (u *ComplementaryMatchUnit) Validate() error {
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreateComplementaryMatchUnit is a factory function that creates a
// ComplementaryMatchUnit from a configuration map.
func CreateComplementaryMatchUnit(id string, config map[string]any) (*ComplementaryMatchUnit, error) {
	cfg := DefaultComplementaryMatchConfig()
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	return NewComplementaryMatchUnit(id, cfg)
}
