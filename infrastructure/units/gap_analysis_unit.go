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

var _ ports.Unit = (*GapAnalysisUnit)(nil)

// GapAnalysisUnit compares domain.KeyDistribution with the ideal even
// share and writes the per-role entries to domain.KeyGaps.
type GapAnalysisUnit struct {
	name   string
	config GapAnalysisConfig
	tracer trace.Tracer
}

// GapAnalysisConfig defines the configuration parameters for GapAnalysisUnit.
type GapAnalysisConfig struct {
	// OnlyDeficits drops balanced entries, keeping moderate and severe
	// gaps only.
	OnlyDeficits bool `yaml:"only_deficits" json:"only_deficits"`
}

// NewGapAnalysisUnit creates a new GapAnalysisUnit.
func NewGapAnalysisUnit(name string, config GapAnalysisConfig) (*GapAnalysisUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &GapAnalysisUnit{
		name:   name,
		config: config,
		tracer: otel.Tracer("gap-analysis-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *GapAnalysisUnit) Name() string { return u.name }

// Execute analyzes the gaps of the distribution in state.
func (u *GapAnalysisUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "GapAnalysisUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "gap_analysis"),
			attribute.String("unit.id", u.name),
			attribute.Bool("config.only_deficits", u.config.OnlyDeficits),
		),
	)
	defer span.End()

	dist, err := domain.Require(state, domain.KeyDistribution)
	if err != nil {
		return fail(span, state, err)
	}

	gaps := scoring.AnalyzeGaps(dist)
	severe := 0
	kept := gaps[:0]
	for _, g := range gaps {
		if g.Status == domain.GapSevere {
			severe++
		}
		if u.config.OnlyDeficits && g.Status == domain.GapBalanced {
			continue
		}
		kept = append(kept, g)
	}

	span.SetAttributes(
		attribute.Int("gaps.severe", severe),
		attribute.Int("gaps.reported", len(kept)),
	)

	return domain.With(state, domain.KeyGaps, kept), nil
}

// Validate checks if the unit is properly configured and ready for execution.
func (u *GapAnalysisUnit) Validate() error {
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreateGapAnalysisUnit is a factory function that creates a
// GapAnalysisUnit from a configuration map, for use with the UnitRegistry.
func CreateGapAnalysisUnit(id string, config map[string]any) (*GapAnalysisUnit, error) {
	var cfg GapAnalysisConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	return NewGapAnalysisUnit(id, cfg)
}
