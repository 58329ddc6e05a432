package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-rolecall/internal/ports"
)

// GraphLoader parses, validates and compiles analysis graph YAML into
// executable Graphs. Compiled graphs are cached by the SHA256 of their
// normalized configuration.
type GraphLoader struct {
	validator    *validator.Validate
	unitRegistry ports.UnitRegistry

	// cache maps config hashes to compiled graphs. Cached graphs are shared
	// and MUST NOT be mutated with AddNode or AddEdge.
	cache   map[string]*Graph
	cacheMu sync.RWMutex

	// sf collapses concurrent compilations of the same configuration.
	sf singleflight.Group
}

// NewGraphLoader creates a loader that builds units through unitRegistry.
func NewGraphLoader(unitRegistry ports.UnitRegistry) (*GraphLoader, error) {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &GraphLoader{
		validator:    v,
		unitRegistry: unitRegistry,
		cache:        make(map[string]*Graph),
	}, nil
}

// load parses data, then compiles it at most once per distinct
// configuration.
func (gl *GraphLoader) load(ctx context.Context, data []byte) (*Graph, error) {
	config, err := gl.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Hash the normalized config so formatting differences share a cache
	// entry.
	hash, err := gl.calculateConfigHash(config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := gl.sf.Do(hash, func() (any, error) {
		if graph, ok := gl.getCachedGraph(hash); ok {
			return graph, nil
		}

		if err := gl.validateConfig(config); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		graph, err := gl.buildGraph(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to build graph: %w", err)
		}

		gl.cacheGraph(hash, graph)
		return graph, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Graph), nil
}

// LoadFromFile loads a graph from a YAML file.
// The returned graph may be a shared cached instance and must not be
// mutated.
func (gl *GraphLoader) LoadFromFile(ctx context.Context, path string) (*Graph, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return gl.load(ctx, data)
}

// LoadFromReader loads a graph from r with the same caching and validation
// as LoadFromFile.
func (gl *GraphLoader) LoadFromReader(ctx context.Context, r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return gl.load(ctx, data)
}

// parseYAML decodes data strictly; unknown fields are errors.
func (gl *GraphLoader) parseYAML(data []byte) (*GraphConfig, error) {
	var config GraphConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

func (gl *GraphLoader) validateConfig(config *GraphConfig) error {
	if err := gl.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	if err := gl.validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}
	return nil
}

// validateSemantics checks what struct tags cannot: node IDs are unique
// across units, pipelines and layers, every reference resolves, a unit is
// placed at most once, and unit parameters match their type.
func (gl *GraphLoader) validateSemantics(config *GraphConfig) error {
	allNodeIDs := make(map[string]string) // ID -> node kind
	unitIDs := make(map[string]struct{})

	for _, unit := range config.Units {
		if kind, exists := allNodeIDs[unit.ID]; exists {
			return fmt.Errorf("duplicate ID %q: already used by %s", unit.ID, kind)
		}
		allNodeIDs[unit.ID] = "unit"
		unitIDs[unit.ID] = struct{}{}

		if err := ValidateUnitParameters(unit.Type, unit.Parameters); err != nil {
			return fmt.Errorf("unit %s parameter validation failed: %w", unit.ID, err)
		}
	}

	placed := make(map[string]string) // unit ID -> container ID
	place := func(container, unitID string) error {
		if _, exists := unitIDs[unitID]; !exists {
			return fmt.Errorf("%s references non-existent unit: %s", container, unitID)
		}
		if prev, dup := placed[unitID]; dup {
			return fmt.Errorf("unit %s placed in both %s and %s", unitID, prev, container)
		}
		placed[unitID] = container
		return nil
	}

	for _, pipeline := range config.Graph.Pipelines {
		if kind, exists := allNodeIDs[pipeline.ID]; exists {
			return fmt.Errorf("duplicate ID %q: already used by %s", pipeline.ID, kind)
		}
		allNodeIDs[pipeline.ID] = "pipeline"
		for _, unitID := range pipeline.Units {
			if err := place("pipeline "+pipeline.ID, unitID); err != nil {
				return err
			}
		}
	}

	for _, layer := range config.Graph.Layers {
		if kind, exists := allNodeIDs[layer.ID]; exists {
			return fmt.Errorf("duplicate ID %q: already used by %s", layer.ID, kind)
		}
		allNodeIDs[layer.ID] = "layer"
		for _, unitID := range layer.Units {
			if err := place("layer "+layer.ID, unitID); err != nil {
				return err
			}
		}
	}

	for _, edge := range config.Graph.Edges {
		if _, exists := allNodeIDs[edge.From]; !exists {
			return fmt.Errorf("edge references non-existent source node: %s", edge.From)
		}
		if _, exists := allNodeIDs[edge.To]; !exists {
			return fmt.Errorf("edge references non-existent target node: %s", edge.To)
		}
		if _, inside := placed[edge.From]; inside {
			return fmt.Errorf("edge source %s is inside %s; connect the container instead", edge.From, placed[edge.From])
		}
		if _, inside := placed[edge.To]; inside {
			return fmt.Errorf("edge target %s is inside %s; connect the container instead", edge.To, placed[edge.To])
		}
	}

	return nil
}

// buildGraph instantiates units and assembles pipelines, layers,
// standalone units and edges into a Graph.
func (gl *GraphLoader) buildGraph(_ context.Context, config *GraphConfig) (*Graph, error) {
	graph := NewGraph()
	graph.name = config.Metadata.Name

	executables := make(map[string]ports.Executable, len(config.Units))
	for _, unitConfig := range config.Units {
		unit, err := gl.createUnit(unitConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create unit %s: %w", unitConfig.ID, err)
		}
		adapter := NewUnitAdapter(unit, unitConfig.ID)
		if secs := unitConfig.Timeout.ExecutionTimeout; secs > 0 {
			adapter = adapter.WithTimeout(time.Duration(secs) * time.Second)
		}
		executables[unitConfig.ID] = adapter
	}

	placed := make(map[string]struct{})

	for _, pipelineConfig := range config.Graph.Pipelines {
		pipeline := NewPipeline(pipelineConfig.ID)
		for _, unitID := range pipelineConfig.Units {
			if err := pipeline.Add(executables[unitID]); err != nil {
				return nil, fmt.Errorf("failed to add unit to pipeline: %w", err)
			}
			placed[unitID] = struct{}{}
		}
		if err := graph.AddNode(pipeline); err != nil {
			return nil, fmt.Errorf("failed to add pipeline to graph: %w", err)
		}
	}

	for _, layerConfig := range config.Graph.Layers {
		layer := NewLayer(layerConfig.ID)
		for _, unitID := range layerConfig.Units {
			if err := layer.Add(executables[unitID]); err != nil {
				return nil, fmt.Errorf("failed to add unit to layer: %w", err)
			}
			placed[unitID] = struct{}{}
		}
		if layerConfig.Merge == "last_write" {
			layer.SetMergeStrategy(LastWriteWinsMerge{})
		}
		if layerConfig.MaxConcurrency > 0 {
			layer.SetConcurrencyLimit(layerConfig.MaxConcurrency)
		}
		if err := graph.AddNode(layer); err != nil {
			return nil, fmt.Errorf("failed to add layer to graph: %w", err)
		}
	}

	// Units outside any pipeline or layer become nodes themselves, in
	// declaration order.
	for _, unitConfig := range config.Units {
		if _, ok := placed[unitConfig.ID]; ok {
			continue
		}
		if err := graph.AddNode(executables[unitConfig.ID]); err != nil {
			return nil, fmt.Errorf("failed to add unit to graph: %w", err)
		}
	}

	for _, edge := range config.Graph.Edges {
		if err := graph.AddEdge(edge.From, edge.To); err != nil {
			return nil, fmt.Errorf("failed to add edge: %w", err)
		}
	}

	return graph, nil
}

// createUnit decodes a unit's parameters and hands them, plus its group
// limit, to the registry.
func (gl *GraphLoader) createUnit(config UnitConfig) (ports.Unit, error) {
	params := make(map[string]any)
	if config.Parameters.Kind != 0 {
		if err := config.Parameters.Decode(&params); err != nil {
			return nil, fmt.Errorf("failed to decode parameters: %w", err)
		}
	}

	if config.Limits.MaxMembers > 0 {
		params["max_members"] = config.Limits.MaxMembers
	}

	unit, err := gl.unitRegistry.CreateUnit(config.Type, config.ID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}
	return unit, nil
}

// calculateConfigHash returns the hex SHA256 of config re-encoded with
// fixed formatting.
func (gl *GraphLoader) calculateConfigHash(config *GraphConfig) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (gl *GraphLoader) getCachedGraph(hash string) (*Graph, bool) {
	gl.cacheMu.RLock()
	defer gl.cacheMu.RUnlock()

	graph, ok := gl.cache[hash]
	return graph, ok
}

func (gl *GraphLoader) cacheGraph(hash string, graph *Graph) {
	gl.cacheMu.Lock()
	defer gl.cacheMu.Unlock()

	gl.cache[hash] = graph
}

// ClearCache drops every compiled graph so later loads recompile.
func (gl *GraphLoader) ClearCache() {
	gl.cacheMu.Lock()
	defer gl.cacheMu.Unlock()

	gl.cache = make(map[string]*Graph)
}

func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	if err := RegisterGraphValidators(v); err != nil {
		return fmt.Errorf("failed to register graph validators: %w", err)
	}
	return nil
}

// validateSemver accepts X.Y.Z where each part is a non-negative integer.
func validateSemver(fl validator.FieldLevel) bool {
	var major, minor, patch int
	var rest string
	n, _ := fmt.Sscanf(fl.Field().String(), "%d.%d.%d%s", &major, &minor, &patch, &rest)
	return n == 3 && major >= 0 && minor >= 0 && patch >= 0
}
