package application

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/ports"
)

// Verify interface compliance at compile time.
var (
	_ ports.Pipeline      = (*Pipeline)(nil)
	_ ports.Layer         = (*Layer)(nil)
	_ ports.Graph         = (*Graph)(nil)
	_ ports.MergeStrategy = KeyUnionMerge{}
	_ ports.MergeStrategy = LastWriteWinsMerge{}
)

// Pipeline runs executables in order, feeding each the previous output.
type Pipeline struct {
	id          string
	executables []ports.Executable
	idSet       map[string]struct{}
	mu          sync.RWMutex
}

// NewPipeline creates an empty pipeline.
func NewPipeline(id string) *Pipeline {
	return &Pipeline{
		id:          id,
		executables: make([]ports.Executable, 0),
		idSet:       make(map[string]struct{}),
	}
}

// Execute runs the pipeline. It stops at the first failure or when ctx is
// cancelled between steps, returning the last successful state.
func (p *Pipeline) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	executables := p.Executables()

	current := state
	for _, exec := range executables {
		if err := ctx.Err(); err != nil {
			return current, err
		}
		next, err := exec.Execute(ctx, current)
		if err != nil {
			return current, fmt.Errorf("pipeline %s: execution failed at %s: %w", p.id, exec.ID(), err)
		}
		current = next
	}
	return current, nil
}

// ID returns the pipeline's node ID.
func (p *Pipeline) ID() string { return p.id }

// Add appends exec. IDs must be unique within the pipeline.
func (p *Pipeline) Add(exec ports.Executable) error {
	if exec == nil {
		return fmt.Errorf("cannot add nil executable to pipeline")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	execID := exec.ID()
	if _, exists := p.idSet[execID]; exists {
		return fmt.Errorf("executable with ID %s already exists in pipeline", execID)
	}
	p.executables = append(p.executables, exec)
	p.idSet[execID] = struct{}{}
	return nil
}

// Executables returns a copy of the steps in execution order.
func (p *Pipeline) Executables() []ports.Executable {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]ports.Executable, len(p.executables))
	copy(result, p.executables)
	return result
}

// Layer runs independent executables concurrently on the same input state
// and merges their outputs in declaration order.
type Layer struct {
	id          string
	executables []ports.Executable
	idSet       map[string]struct{}

	// mergeStrategy combines member outputs; KeyUnionMerge when nil.
	mergeStrategy ports.MergeStrategy

	// concurrencyLimit bounds concurrently running members. Defaults to
	// runtime.NumCPU() * 2.
	concurrencyLimit int

	mu sync.RWMutex
}

// NewLayer creates an empty layer.
func NewLayer(id string) *Layer {
	return &Layer{
		id:               id,
		executables:      make([]ports.Executable, 0),
		idSet:            make(map[string]struct{}),
		concurrencyLimit: runtime.NumCPU() * 2,
	}
}

// Execute runs every member on state. The first failure cancels the
// remaining members and is returned with the input state. Outputs are
// merged in the order members were added, independent of completion
// order.
func (l *Layer) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	l.mu.RLock()
	executables := make([]ports.Executable, len(l.executables))
	copy(executables, l.executables)
	limit := l.concurrencyLimit
	strategy := l.mergeStrategy
	l.mu.RUnlock()

	if len(executables) == 0 {
		return state, nil
	}
	if limit <= 0 {
		limit = runtime.NumCPU() * 2
	}
	if strategy == nil {
		strategy = KeyUnionMerge{}
	}

	states := make([]domain.State, len(executables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, exec := range executables {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := exec.Execute(gctx, state)
			if err != nil {
				return fmt.Errorf("executable %s: %w", exec.ID(), err)
			}
			states[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return state, fmt.Errorf("layer %s: %w", l.id, err)
	}

	merged, err := strategy.Merge(state, states)
	if err != nil {
		return state, fmt.Errorf("layer %s: merge failed: %w", l.id, err)
	}
	return merged, nil
}

// ID returns the layer's node ID.
func (l *Layer) ID() string { return l.id }

// Add includes exec in the layer. IDs must be unique within the layer.
func (l *Layer) Add(exec ports.Executable) error {
	if exec == nil {
		return fmt.Errorf("cannot add nil executable to layer")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	execID := exec.ID()
	if _, exists := l.idSet[execID]; exists {
		return fmt.Errorf("executable with ID %s already exists in layer", execID)
	}
	l.executables = append(l.executables, exec)
	l.idSet[execID] = struct{}{}
	return nil
}

// Executables returns a copy of the layer's members in declaration order.
func (l *Layer) Executables() []ports.Executable {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]ports.Executable, len(l.executables))
	copy(result, l.executables)
	return result
}

// SetMergeStrategy replaces the merge strategy. Call before Execute.
func (l *Layer) SetMergeStrategy(strategy ports.MergeStrategy) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.mergeStrategy = strategy
}

// SetConcurrencyLimit bounds concurrently running members; values <= 0
// restore the default. Call before Execute.
func (l *Layer) SetConcurrencyLimit(limit int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.concurrencyLimit = limit
}

// Graph is a DAG of executables. Execution order is deterministic: ready
// nodes run in the order they were added.
type Graph struct {
	name string

	nodes map[string]ports.Executable
	// order records node IDs in insertion order.
	order []string
	// edges is the adjacency list: node ID -> targets in insertion order.
	edges    map[string][]string
	edgeSet  map[string]struct{} // "source->target"
	inDegree map[string]int

	mu sync.RWMutex
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]ports.Executable),
		order:    make([]string, 0),
		edges:    make(map[string][]string),
		edgeSet:  make(map[string]struct{}),
		inDegree: make(map[string]int),
	}
}

// Name returns the graph name taken from its configuration metadata.
func (g *Graph) Name() string { return g.name }

// AddNode registers exec. IDs must be unique within the graph.
func (g *Graph) AddNode(exec ports.Executable) error {
	if exec == nil {
		return fmt.Errorf("cannot add nil executable to graph")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id := exec.ID()
	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("node with ID %s already exists in graph", id)
	}

	g.nodes[id] = exec
	g.order = append(g.order, id)
	g.edges[id] = make([]string, 0)
	g.inDegree[id] = 0
	return nil
}

// AddEdge makes targetID depend on sourceID. An edge that would close a
// cycle is rolled back and reported.
func (g *Graph) AddEdge(sourceID, targetID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[sourceID]; !exists {
		return fmt.Errorf("source node %s does not exist", sourceID)
	}
	if _, exists := g.nodes[targetID]; !exists {
		return fmt.Errorf("target node %s does not exist", targetID)
	}

	edgeKey := sourceID + "->" + targetID
	if _, exists := g.edgeSet[edgeKey]; exists {
		return fmt.Errorf("edge from %s to %s already exists", sourceID, targetID)
	}

	g.edges[sourceID] = append(g.edges[sourceID], targetID)
	g.edgeSet[edgeKey] = struct{}{}
	g.inDegree[targetID]++

	if g.hasCycleUnsafe() {
		g.edges[sourceID] = g.edges[sourceID][:len(g.edges[sourceID])-1]
		delete(g.edgeSet, edgeKey)
		g.inDegree[targetID]--
		return fmt.Errorf("adding edge from %s to %s would create a cycle", sourceID, targetID)
	}
	return nil
}

// TopologicalSort returns the nodes so that every edge's source precedes
// its target, using Kahn's algorithm seeded in insertion order.
func (g *Graph) TopologicalSort() ([]ports.Executable, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	inDegree := make(map[string]int, len(g.inDegree))
	for k, v := range g.inDegree {
		inDegree[k] = v
	}

	queue := make([]string, 0, len(g.order))
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	result := make([]ports.Executable, 0, len(g.nodes))
	for len(queue) > 0 {
		nodeID := queue[0]
		queue = queue[1:]
		result = append(result, g.nodes[nodeID])

		for _, next := range g.edges[nodeID] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, fmt.Errorf("graph contains a cycle")
	}
	return result, nil
}

// HasCycle reports whether the graph contains a cycle.
func (g *Graph) HasCycle() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.hasCycleUnsafe()
}

// hasCycleUnsafe runs a three-color DFS. Callers hold g.mu.
func (g *Graph) hasCycleUnsafe() bool {
	const (
		white = iota
		gray
		black
	)
	colors := make(map[string]int, len(g.nodes))

	var dfs func(nodeID string) bool
	dfs = func(nodeID string) bool {
		colors[nodeID] = gray
		for _, next := range g.edges[nodeID] {
			switch colors[next] {
			case gray:
				return true
			case white:
				if dfs(next) {
					return true
				}
			}
		}
		colors[nodeID] = black
		return false
	}

	for _, id := range g.order {
		if colors[id] == white && dfs(id) {
			return true
		}
	}
	return false
}

// GetNode looks up a node by ID.
func (g *Graph) GetNode(id string) (ports.Executable, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	exec, exists := g.nodes[id]
	return exec, exists
}

// Execute runs every node in topological order, threading state through
// them, and returns the final state. It stops at the first failure.
func (g *Graph) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return state, err
	}

	logger := slog.Default().With("graph", g.name)
	if ec, ok := state.GetExecutionContext(); ok {
		logger = logger.With("execution_id", ec.ExecutionID, "group", ec.GroupName)
	}

	current := state
	for _, node := range order {
		if err := ctx.Err(); err != nil {
			return current, err
		}

		start := time.Now()
		next, err := node.Execute(ctx, current)
		if err != nil {
			logger.ErrorContext(ctx, "graph node failed", "node", node.ID(), "error", err)
			return current, fmt.Errorf("graph %s: node %s: %w", g.name, node.ID(), err)
		}
		logger.DebugContext(ctx, "graph node completed", "node", node.ID(), "duration", time.Since(start))
		current = next
	}
	return current, nil
}

// KeyUnionMerge unions the keys each layer member added or changed. Two
// members writing different values to the same key is a conflict and
// fails with ports.ErrMergeConflict; identical writes are accepted.
type KeyUnionMerge struct{}

// Merge implements ports.MergeStrategy.
func (KeyUnionMerge) Merge(baseState domain.State, states []domain.State) (domain.State, error) {
	updates := make(map[string]any)
	for _, s := range states {
		for _, key := range s.Keys() {
			value, _ := s.GetRaw(key)
			if prev, ok := baseState.GetRaw(key); ok && reflect.DeepEqual(prev, value) {
				continue
			}
			if written, ok := updates[key]; ok {
				if !reflect.DeepEqual(written, value) {
					return baseState, fmt.Errorf("%w: key %q", ports.ErrMergeConflict, key)
				}
				continue
			}
			updates[key] = value
		}
	}
	if len(updates) == 0 {
		return baseState, nil
	}
	return baseState.WithMultiple(updates), nil
}

// LastWriteWinsMerge applies each member's changes in declaration order,
// so a later member overwrites an earlier member's value for the same key.
type LastWriteWinsMerge struct{}

// Merge implements ports.MergeStrategy.
func (LastWriteWinsMerge) Merge(baseState domain.State, states []domain.State) (domain.State, error) {
	updates := make(map[string]any)
	for _, s := range states {
		for _, key := range s.Keys() {
			value, _ := s.GetRaw(key)
			if prev, ok := baseState.GetRaw(key); ok && reflect.DeepEqual(prev, value) {
				continue
			}
			updates[key] = value
		}
	}
	if len(updates) == 0 {
		return baseState, nil
	}
	return baseState.WithMultiple(updates), nil
}
