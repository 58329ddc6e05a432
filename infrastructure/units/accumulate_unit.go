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

var _ ports.Unit = (*AccumulateUnit)(nil)

// AccumulateUnit turns one respondent's answer set into a role-score
// vector.
//
// State requirements:
//   - domain.KeyQuestionBank: the bank the answers refer to
//   - domain.KeyAnswers: the respondent's answers
//
// It writes domain.KeyRoleScores. The unit is stateless and safe for
// concurrent use.
type AccumulateUnit struct {
	name   string
	config AccumulateConfig
	tracer trace.Tracer
}

// AccumulateConfig defines the configuration parameters for AccumulateUnit.
type AccumulateConfig struct {
	// RequireComplete rejects answer sets that leave any question of the
	// bank unanswered. Partial sets are scored by default.
	RequireComplete bool `yaml:"require_complete" json:"require_complete"`
}

// NewAccumulateUnit creates a new AccumulateUnit.
func NewAccumulateUnit(name string, config AccumulateConfig) (*AccumulateUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &AccumulateUnit{
		name:   name,
		config: config,
		tracer: otel.Tracer("accumulate-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *AccumulateUnit) Name() string { return u.name }

// Execute accumulates the answers in state into domain.KeyRoleScores.
func (u *AccumulateUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "AccumulateUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "accumulate"),
			attribute.String("unit.id", u.name),
			attribute.Bool("config.require_complete", u.config.RequireComplete),
		),
	)
	defer span.End()

	bank, err := domain.Require(state, domain.KeyQuestionBank)
	if err != nil {
		return fail(span, state, err)
	}
	answers, err := domain.Require(state, domain.KeyAnswers)
	if err != nil {
		return fail(span, state, err)
	}

	progress := scoring.Completeness(answers, bank)
	if u.config.RequireComplete && !progress.Complete() {
		return fail(span, state, fmt.Errorf("%w: answered %d of %d",
			ErrIncompleteAnswers, progress.Answered, progress.Total))
	}

	scores, err := scoring.Accumulate(answers, bank)
	if err != nil {
		return fail(span, state, fmt.Errorf("unit %s: %w", u.name, err))
	}

	span.SetAttributes(
		attribute.Int("answers.count", len(answers)),
		attribute.Int("answers.distinct", progress.Answered),
		attribute.Float64("scores.total", scores.Total()),
	)

	return domain.With(state, domain.KeyRoleScores, scores), nil
}

// Validate checks if the unit is properly configured and ready for execution.
func (u *AccumulateUnit) Validate() error {
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreateAccumulateUnit is a factory function that creates an AccumulateUnit
// from a configuration map, for use with the UnitRegistry.
func CreateAccumulateUnit(id string, config map[string]any) (*AccumulateUnit, error) {
	var cfg AccumulateConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	return NewAccumulateUnit(id, cfg)
}
