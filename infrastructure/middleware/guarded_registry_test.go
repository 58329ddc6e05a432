package middleware

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-rolecall/internal/application"
	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/ports"
)

func TestGuardedRegistry_CreateUnit(t *testing.T) {
	metrics := newRecordingMetrics()
	registry := NewGuardedRegistry(application.NewDefaultUnitRegistry(nil), metrics)

	unit, err := registry.CreateUnit("aggregate", "agg", map[string]any{"max_members": 2})
	require.NoError(t, err)
	guard, ok := unit.(*GroupGuard)
	require.True(t, ok)
	assert.Equal(t, 2, guard.limit.MaxMembers)
	assert.Equal(t, "agg", guard.Name())

	state := domain.With(domain.NewState(), domain.KeyMemberScores, make([]domain.MemberScores, 3))
	_, err = unit.Execute(context.Background(), state)
	assert.ErrorIs(t, err, ports.ErrGroupTooLarge)
	assert.Equal(t, 1.0, metrics.counters["group_limit_exceeded_total"])

	_, err = registry.CreateUnit("nope", "x", nil)
	assert.Error(t, err)
	assert.Contains(t, registry.GetSupportedTypes(), "score_members")
}

func TestGuardedRegistry_GraphLimits(t *testing.T) {
	const graphYAML = `
version: "1.0.0"
metadata: {name: guarded}
units:
  - id: agg
    type: aggregate
    limits: {max_members: 1}
graph: {}
`
	loader, err := application.NewGraphLoader(NewGuardedRegistry(application.NewDefaultUnitRegistry(nil), nil))
	require.NoError(t, err)
	graph, err := loader.LoadFromReader(context.Background(), strings.NewReader(graphYAML))
	require.NoError(t, err)

	ok := domain.With(domain.NewState(), domain.KeyMemberScores, []domain.MemberScores{{ID: "a"}})
	_, err = graph.Execute(context.Background(), ok)
	require.NoError(t, err)

	tooMany := domain.With(domain.NewState(), domain.KeyMemberScores, []domain.MemberScores{{ID: "a"}, {ID: "b"}})
	_, err = graph.Execute(context.Background(), tooMany)
	assert.ErrorIs(t, err, ports.ErrGroupTooLarge)
}
