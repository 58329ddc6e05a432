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

var _ ports.Unit = (*BalanceUnit)(nil)

// BalanceUnit scores how evenly domain.KeyDistribution covers the five
// roles and writes the 0-100 result to domain.KeyBalanceScore.
type BalanceUnit struct {
	name   string
	config BalanceConfig
	tracer trace.Tracer
}

// BalanceConfig defines the configuration parameters for BalanceUnit.
type BalanceConfig struct {
	// WarnBelow adds a "balance.low" span event when the score falls
	// below it. 0 disables the event.
	WarnBelow int `yaml:"warn_below" json:"warn_below" validate:"min=0,max=100"`
}

// NewBalanceUnit creates a new BalanceUnit.
func NewBalanceUnit(name string, config BalanceConfig) (*BalanceUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &BalanceUnit{
		name:   name,
		config: config,
		tracer: otel.Tracer("balance-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *BalanceUnit) Name() string { return u.name }

// Execute computes the balance score of the distribution in state.
func (u *BalanceUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "BalanceUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "balance"),
			attribute.String("unit.id", u.name),
		),
	)
	defer span.End()

	dist, err := domain.Require(state, domain.KeyDistribution)
	if err != nil {
		return fail(span, state, err)
	}

	score := scoring.BalanceScore(dist)
	span.SetAttributes(attribute.Int("balance.score", score))
	if score < u.config.WarnBelow {
		span.AddEvent("balance.low", trace.WithAttributes(
			attribute.Int("balance.score", score),
			attribute.Int("balance.warn_below", u.config.WarnBelow),
		))
	}

	return domain.With(state, domain.KeyBalanceScore, score), nil
}

// Validate checks if the unit is properly configured and ready for execution.
func (u *BalanceUnit) Validate() error {
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreateBalanceUnit is a factory function that creates a BalanceUnit from
// a configuration map, for use with the UnitRegistry.
func CreateBalanceUnit(id string, config map[string]any) (*BalanceUnit, error) {
	var cfg BalanceConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	return NewBalanceUnit(id, cfg)
}
