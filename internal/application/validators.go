package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-rolecall/infrastructure/units"
)

// paramValidator checks decoded unit parameters against their struct tags.
var paramValidator = validator.New()

// nodeIDPattern matches graph node identifiers: a letter followed by
// letters, digits, underscores or hyphens.
var nodeIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidateUnitParameters decodes params strictly into the configuration
// struct of unitType and validates it. Unknown keys, wrong value types and
// out-of-range values are all reported here so that a graph never reaches
// unit construction with a misspelled parameter.
func ValidateUnitParameters(unitType string, params yaml.Node) error {
	var target any
	switch unitType {
	case "accumulate":
		target = &units.AccumulateConfig{}
	case "classify", "composition":
		cfg := units.DefaultClassifyConfig()
		target = &cfg
	case "score_members":
		target = &units.ScoreMembersConfig{MaxConcurrency: units.DefaultMaxConcurrency}
	case "aggregate":
		target = &units.AggregateConfig{}
	case "balance":
		target = &units.BalanceConfig{}
	case "gap_analysis":
		target = &units.GapAnalysisConfig{}
	case "complementary_match":
		cfg := units.DefaultComplementaryMatchConfig()
		target = &cfg
	case "custom":
		// Custom units validate their own parameters at construction.
		return nil
	default:
		return fmt.Errorf("unknown unit type: %s", unitType)
	}

	if err := decodeStrict(params, target); err != nil {
		return fmt.Errorf("%s parameters: %w", unitType, err)
	}
	if err := paramValidator.Struct(target); err != nil {
		return fmt.Errorf("%s parameters: %w", unitType, err)
	}
	return nil
}

// decodeStrict decodes node into out, failing on keys out does not
// declare. An absent parameters block leaves out untouched.
func decodeStrict(node yaml.Node, out any) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("parameters must be a mapping")
	}

	data, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to re-encode parameters: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// RegisterGraphValidators registers the custom tags used by GraphConfig.
func RegisterGraphValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("nodeid", validateNodeID); err != nil {
		return fmt.Errorf("failed to register nodeid validator: %w", err)
	}
	return nil
}

// validateNodeID reports whether a unit, pipeline or layer ID is well formed.
func validateNodeID(fl validator.FieldLevel) bool {
	return nodeIDPattern.MatchString(fl.Field().String())
}
