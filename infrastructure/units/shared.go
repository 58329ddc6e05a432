// Package units provides analysis units that implement the ports.Unit
// interface for the role profile engine. Each unit wraps one scoring
// operation and moves its inputs and outputs through domain.State.
package units

import (
	"errors"
	"fmt"
	"maps"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// Common errors returned by analysis units.
var (
	// ErrEmptyUnitName is returned when attempting to create a unit with an empty name.
	ErrEmptyUnitName = errors.New("unit name cannot be empty")

	// ErrScorerNil is returned when a member scoring unit has no scorer.
	ErrScorerNil = errors.New("respondent scorer cannot be nil")

	// ErrIncompleteAnswers is returned when a unit requires every question
	// of the bank to be answered.
	ErrIncompleteAnswers = errors.New("answer set does not cover the question bank")

	// ErrTooFewMembers is returned when a group is smaller than a unit's
	// configured minimum.
	ErrTooFewMembers = errors.New("group has too few members")
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// injectedKeys are factory config entries supplied by the registry rather
// than by graph parameters; they are never YAML-decoded.
var injectedKeys = []string{"scorer", "max_members"}

// decodeConfig overlays a factory configuration map onto out, matching
// entries by their YAML field names. Unknown keys are ignored here; the
// graph loader rejects them before factories run. Values of the wrong
// type wrap domain.ErrInvalidConfiguration.
func decodeConfig(config map[string]any, out any) error {
	params := maps.Clone(config)
	for _, k := range injectedKeys {
		delete(params, k)
	}
	if len(params) == 0 {
		return nil
	}

	data, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("%w: marshal config: %w", domain.ErrInvalidConfiguration, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: parse config: %w", domain.ErrInvalidConfiguration, err)
	}
	return nil
}

// fail records err on the span and returns the input state unchanged.
func fail(span trace.Span, state domain.State, err error) (domain.State, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return state, err
}
