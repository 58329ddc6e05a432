package units

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/ports"
)

var _ ports.Unit = (*ScoreMembersUnit)(nil)

// DefaultMaxConcurrency is the default number of respondents scored in
// parallel.
const DefaultMaxConcurrency = 8

// RespondentScorer scores many answer sets against one bank, at most limit
// at a time, and returns the vectors in input order.
type RespondentScorer func(
	ctx context.Context,
	bank *domain.QuestionBank,
	sets []domain.MemberAnswers,
	limit int,
) ([]domain.MemberScores, error)

// ScoreMembersUnit scores every member of a group.
//
// State requirements:
//   - domain.KeyQuestionBank
//   - domain.KeyMembers: one answer set per member
//
// It writes domain.KeyMemberScores. The actual fan-out is delegated to an
// injected RespondentScorer so the unit stays free of scheduling policy.
type ScoreMembersUnit struct {
	name   string
	config ScoreMembersConfig
	scorer RespondentScorer
	tracer trace.Tracer
}

// ScoreMembersConfig defines the configuration parameters for ScoreMembersUnit.
type ScoreMembersConfig struct {
	// MaxConcurrency bounds how many members are scored at once.
	MaxConcurrency int `yaml:"max_concurrency" json:"max_concurrency" validate:"min=1,max=64"`
}

// NewScoreMembersUnit creates a new ScoreMembersUnit.
func NewScoreMembersUnit(name string, scorer RespondentScorer, config ScoreMembersConfig) (*ScoreMembersUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if scorer == nil {
		return nil, ErrScorerNil
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &ScoreMembersUnit{
		name:   name,
		config: config,
		scorer: scorer,
		tracer: otel.Tracer("score-members-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *ScoreMembersUnit) Name() string { return u.name }

// Execute scores every member answer set in state. The first invalid
// answer set fails the whole unit.
func (u *ScoreMembersUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	ctx, span := u.tracer.Start(ctx, "ScoreMembersUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "score_members"),
			attribute.String("unit.id", u.name),
			attribute.Int("config.max_concurrency", u.config.MaxConcurrency),
		),
	)
	defer span.End()

	bank, err := domain.Require(state, domain.KeyQuestionBank)
	if err != nil {
		return fail(span, state, err)
	}
	members, err := domain.Require(state, domain.KeyMembers)
	if err != nil {
		return fail(span, state, err)
	}

	scores, err := u.scorer(ctx, bank, members, u.config.MaxConcurrency)
	if err != nil {
		return fail(span, state, fmt.Errorf("unit %s: %w", u.name, err))
	}

	span.SetAttributes(attribute.Int("group.members", len(scores)))

	return domain.With(state, domain.KeyMemberScores, scores), nil
}

// Validate checks if the unit is properly configured and ready for execution.
func (u *ScoreMembersUnit) Validate() error {
	if u.scorer == nil {
		return ErrScorerNil
	}
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// CreateScoreMembersUnit is a factory function that creates a
// ScoreMembersUnit from a configuration map. The registry injects the
// scorer under the "scorer" key.
func CreateScoreMembersUnit(id string, config map[string]any) (*ScoreMembersUnit, error) {
	scorer, ok := config["scorer"].(RespondentScorer)
	if !ok {
		return nil, fmt.Errorf("scorer is required and must be a units.RespondentScorer")
	}

	cfg := ScoreMembersConfig{MaxConcurrency: DefaultMaxConcurrency}
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	return NewScoreMembersUnit(id, scorer, cfg)
}
