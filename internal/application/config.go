package application

import (
	"gopkg.in/yaml.v3"
)

// GraphConfig is the declarative form of an analysis graph and the root of
// the YAML files accepted by GraphLoader.
type GraphConfig struct {
	// Version is the configuration schema version in X.Y.Z form.
	Version string `yaml:"version" validate:"required,semver"`
	// Metadata names and describes the graph.
	Metadata Metadata `yaml:"metadata" validate:"required"`
	// Units declares every analysis unit the graph may run.
	Units []UnitConfig `yaml:"units" validate:"required,min=1,dive"`
	// Graph arranges the declared units into pipelines, layers and edges.
	Graph GraphTopology `yaml:"graph" validate:"required"`
}

// Metadata provides descriptive information about an analysis graph.
type Metadata struct {
	// Name identifies the graph in logs and reports.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description explains what the graph computes.
	Description string `yaml:"description" validate:"max=1000"`
	// Tags are free-form labels for grouping graphs.
	Tags []string `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
	// Labels are arbitrary key-value pairs for external tooling.
	Labels map[string]string `yaml:"labels" validate:"max=50"`
}

// UnitConfig declares one analysis unit of a graph.
type UnitConfig struct {
	// ID is unique across units, pipelines and layers.
	ID string `yaml:"id" validate:"required,nodeid,min=1,max=100"`
	// Type selects the unit implementation and the schema of Parameters.
	Type string `yaml:"type" validate:"required,oneof=accumulate classify score_members aggregate balance gap_analysis complementary_match composition custom"`
	// Limits bounds the group size the unit accepts.
	Limits LimitsConfig `yaml:"limits"`
	// Parameters holds the type-specific configuration. It is decoded
	// strictly against the unit's config struct during validation.
	Parameters yaml.Node `yaml:"parameters"`
	// Timeout bounds the unit's execution time.
	Timeout TimeoutConfig `yaml:"timeout"`
}

// LimitsConfig restricts the groups a unit will process.
type LimitsConfig struct {
	// MaxMembers is the largest member count the unit accepts. Zero means
	// unlimited.
	MaxMembers int `yaml:"max_members" validate:"omitempty,min=1,max=100000"`
}

// TimeoutConfig controls execution time limits for a unit.
type TimeoutConfig struct {
	// ExecutionTimeout is the maximum run time in seconds. Zero disables
	// the limit.
	ExecutionTimeout int `yaml:"execution_timeout_seconds" validate:"omitempty,min=1,max=3600"`
}

// GraphTopology specifies how units are arranged and ordered.
type GraphTopology struct {
	// Pipelines are sequential chains; each unit sees the previous unit's
	// output.
	Pipelines []PipelineConfig `yaml:"pipelines" validate:"dive"`
	// Layers are parallel groups whose outputs are merged.
	Layers []LayerConfig `yaml:"layers" validate:"dive"`
	// Edges order nodes (units, pipelines or layers) relative to each other.
	Edges []EdgeConfig `yaml:"edges" validate:"dive"`
}

// PipelineConfig defines a sequential execution chain.
type PipelineConfig struct {
	ID string `yaml:"id" validate:"required,nodeid,min=1,max=100"`
	// Units lists unit IDs in execution order.
	Units []string `yaml:"units" validate:"required,min=1,dive,nodeid"`
}

// LayerConfig defines a group of units run concurrently on the same input.
type LayerConfig struct {
	ID string `yaml:"id" validate:"required,nodeid,min=1,max=100"`
	// Units lists the unit IDs of the layer; a layer needs at least two.
	Units []string `yaml:"units" validate:"required,min=2,dive,nodeid"`
	// Merge selects how member outputs are combined: "union" rejects two
	// members writing different values to the same key, "last_write"
	// lets later members win.
	Merge string `yaml:"merge" validate:"omitempty,oneof=union last_write"`
	// MaxConcurrency bounds the number of members running at once.
	MaxConcurrency int `yaml:"max_concurrency" validate:"omitempty,min=1,max=256"`
}

// EdgeConfig declares that To runs after From.
type EdgeConfig struct {
	From string `yaml:"from" validate:"required,nodeid"`
	To   string `yaml:"to" validate:"required,nodeid"`
}
