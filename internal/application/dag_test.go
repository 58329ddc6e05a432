package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/ports"
)

func TestPipeline_Execute(t *testing.T) {
	t.Run("runs steps in order", func(t *testing.T) {
		pipeline := NewPipeline("p")
		for i := range 3 {
			step := &mockExecutable{
				id: fmt.Sprintf("step%d", i),
				executeFunc: func(_ context.Context, state domain.State) (domain.State, error) {
					trail, _ := state.GetRaw("trail")
					s, _ := trail.(string)
					return state.WithRaw("trail", s+fmt.Sprint(i)), nil
				},
			}
			require.NoError(t, pipeline.Add(step))
		}

		out, err := pipeline.Execute(context.Background(), domain.NewState())
		require.NoError(t, err)
		trail, _ := out.GetRaw("trail")
		assert.Equal(t, "012", trail)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		boom := errors.New("boom")
		pipeline := NewPipeline("p")
		first := writer("first", "a", 1)
		failing := &mockExecutable{id: "fail", executeFunc: func(context.Context, domain.State) (domain.State, error) {
			return domain.State{}, boom
		}}
		last := writer("last", "b", 2)
		for _, e := range []ports.Executable{first, failing, last} {
			require.NoError(t, pipeline.Add(e))
		}

		out, err := pipeline.Execute(context.Background(), domain.NewState())
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "execution failed at fail")
		assert.False(t, last.wasExecuted())
		a, ok := out.GetRaw("a")
		require.True(t, ok)
		assert.Equal(t, 1, a)
	})

	t.Run("honors cancellation", func(t *testing.T) {
		pipeline := NewPipeline("p")
		step := writer("s", "a", 1)
		require.NoError(t, pipeline.Add(step))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := pipeline.Execute(ctx, domain.NewState())
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, step.wasExecuted())
	})
}

func TestPipeline_Add(t *testing.T) {
	pipeline := NewPipeline("p")
	assert.Error(t, pipeline.Add(nil))
	require.NoError(t, pipeline.Add(writer("a", "k", 1)))
	assert.Error(t, pipeline.Add(writer("a", "k", 2)))
	assert.Len(t, pipeline.Executables(), 1)
}

func TestLayer_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("unions disjoint writes", func(t *testing.T) {
		layer := NewLayer("l")
		require.NoError(t, layer.Add(writer("a", "x", 1)))
		require.NoError(t, layer.Add(writer("b", "y", 2)))

		out, err := layer.Execute(ctx, domain.NewState().WithRaw("base", true))
		require.NoError(t, err)
		assert.Equal(t, []string{"base", "x", "y"}, out.Keys())
	})

	t.Run("conflicting writes fail", func(t *testing.T) {
		layer := NewLayer("l")
		require.NoError(t, layer.Add(writer("a", "x", 1)))
		require.NoError(t, layer.Add(writer("b", "x", 2)))

		_, err := layer.Execute(ctx, domain.NewState())
		assert.ErrorIs(t, err, ports.ErrMergeConflict)
	})

	t.Run("last write wins when configured", func(t *testing.T) {
		layer := NewLayer("l")
		layer.SetMergeStrategy(LastWriteWinsMerge{})
		slow := &mockExecutable{id: "a", executeFunc: func(_ context.Context, s domain.State) (domain.State, error) {
			time.Sleep(20 * time.Millisecond)
			return s.WithRaw("x", 1), nil
		}}
		require.NoError(t, layer.Add(slow))
		require.NoError(t, layer.Add(writer("b", "x", 2)))

		out, err := layer.Execute(ctx, domain.NewState())
		require.NoError(t, err)
		x, _ := out.GetRaw("x")
		assert.Equal(t, 2, x, "declaration order decides, not completion order")
	})

	t.Run("failure cancels siblings", func(t *testing.T) {
		boom := errors.New("boom")
		layer := NewLayer("l")
		require.NoError(t, layer.Add(&mockExecutable{id: "wait", executeFunc: func(ctx context.Context, s domain.State) (domain.State, error) {
			select {
			case <-ctx.Done():
				return s, ctx.Err()
			case <-time.After(5 * time.Second):
				return s, nil
			}
		}}))
		require.NoError(t, layer.Add(&mockExecutable{id: "fail", executeFunc: func(context.Context, domain.State) (domain.State, error) {
			return domain.State{}, boom
		}}))

		base := domain.NewState().WithRaw("k", "v")
		start := time.Now()
		out, err := layer.Execute(ctx, base)
		require.ErrorIs(t, err, boom)
		assert.Less(t, time.Since(start), 2*time.Second)
		assert.Equal(t, base.Keys(), out.Keys())
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		layer := NewLayer("l")
		layer.SetConcurrencyLimit(2)
		var running, peak atomic.Int32
		for i := range 6 {
			require.NoError(t, layer.Add(&mockExecutable{
				id: fmt.Sprintf("u%d", i),
				executeFunc: func(_ context.Context, s domain.State) (domain.State, error) {
					n := running.Add(1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					time.Sleep(10 * time.Millisecond)
					running.Add(-1)
					return s, nil
				},
			}))
		}

		_, err := layer.Execute(ctx, domain.NewState())
		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("empty layer is identity", func(t *testing.T) {
		base := domain.NewState().WithRaw("k", 1)
		out, err := NewLayer("l").Execute(ctx, base)
		require.NoError(t, err)
		assert.Equal(t, base.Keys(), out.Keys())
	})
}

func TestKeyUnionMerge(t *testing.T) {
	base := domain.NewState().WithRaw("shared", 1)

	t.Run("identical writes are not conflicts", func(t *testing.T) {
		out, err := KeyUnionMerge{}.Merge(base, []domain.State{
			base.WithRaw("x", []int{1, 2}),
			base.WithRaw("x", []int{1, 2}),
		})
		require.NoError(t, err)
		x, _ := out.GetRaw("x")
		assert.Equal(t, []int{1, 2}, x)
	})

	t.Run("untouched base keys are ignored", func(t *testing.T) {
		out, err := KeyUnionMerge{}.Merge(base, []domain.State{base, base.WithRaw("shared", 5)})
		require.NoError(t, err)
		v, _ := out.GetRaw("shared")
		assert.Equal(t, 5, v)
	})

	t.Run("no states returns base", func(t *testing.T) {
		out, err := KeyUnionMerge{}.Merge(base, nil)
		require.NoError(t, err)
		assert.Equal(t, base.Keys(), out.Keys())
	})
}

func TestGraph_AddEdge(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, g.AddNode(writer(id, id, true)))
	}

	assert.Error(t, g.AddNode(writer("a", "a", true)))
	assert.Error(t, g.AddNode(nil))

	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))
	assert.Error(t, g.AddEdge("a", "b"), "duplicate edge")
	assert.Error(t, g.AddEdge("a", "missing"))

	err := g.AddEdge("c", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
	assert.False(t, g.HasCycle(), "rejected edge is rolled back")
}

func TestGraph_TopologicalSort(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"report", "score", "load", "extra"} {
		require.NoError(t, g.AddNode(writer(id, id, true)))
	}
	require.NoError(t, g.AddEdge("load", "score"))
	require.NoError(t, g.AddEdge("score", "report"))

	for range 5 {
		order, err := g.TopologicalSort()
		require.NoError(t, err)

		ids := make([]string, len(order))
		for i, e := range order {
			ids[i] = e.ID()
		}
		assert.Equal(t, []string{"load", "extra", "score", "report"}, ids)
	}
}

func TestGraph_Execute(t *testing.T) {
	g := NewGraph()
	g.name = "test"

	load := writer("load", "loaded", true)
	check := &mockExecutable{id: "check", executeFunc: func(_ context.Context, s domain.State) (domain.State, error) {
		if _, ok := s.GetRaw("loaded"); !ok {
			return s, errors.New("load did not run first")
		}
		return s.WithRaw("checked", true), nil
	}}
	require.NoError(t, g.AddNode(check))
	require.NoError(t, g.AddNode(load))
	require.NoError(t, g.AddEdge("load", "check"))

	out, err := g.Execute(context.Background(), domain.NewState())
	require.NoError(t, err)
	assert.Equal(t, []string{"checked", "loaded"}, out.Keys())

	boom := errors.New("boom")
	g2 := NewGraph()
	require.NoError(t, g2.AddNode(&mockExecutable{id: "bad", executeFunc: func(context.Context, domain.State) (domain.State, error) {
		return domain.State{}, boom
	}}))
	_, err = g2.Execute(context.Background(), domain.NewState())
	assert.ErrorIs(t, err, boom)
}

func TestUnitAdapter(t *testing.T) {
	slow := &mockUnit{name: "slow", run: func(ctx context.Context, s domain.State) (domain.State, error) {
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		case <-time.After(time.Second):
			return s.WithRaw("done", true), nil
		}
	}}

	adapter := NewUnitAdapter(slow, "slow")
	assert.Equal(t, "slow", adapter.ID())
	assert.Same(t, slow, adapter.Unit())

	timed := adapter.WithTimeout(10 * time.Millisecond)
	_, err := timed.Execute(context.Background(), domain.NewState())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, adapter.timeout, "WithTimeout does not modify the receiver")
}
