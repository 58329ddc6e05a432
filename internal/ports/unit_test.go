package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// mockUnit is a test implementation of the Unit interface.
type mockUnit struct {
	name        string
	executeFunc func(context.Context, domain.State) (domain.State, error)
	validateErr error
}

func (m *mockUnit) Name() string { return m.name }

func (m *mockUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, state)
	}
	return state, nil
}

func (m *mockUnit) Validate() error { return m.validateErr }

// mockRegistry is a map-backed UnitRegistry.
type mockRegistry struct{ factories map[string]UnitFactory }

func (r *mockRegistry) CreateUnit(unitType, id string, config map[string]any) (Unit, error) {
	f, ok := r.factories[unitType]
	if !ok {
		return nil, errors.New("unsupported unit type")
	}
	return f(id, config)
}

func (r *mockRegistry) RegisterUnitFactory(unitType string, factory UnitFactory) error {
	r.factories[unitType] = factory
	return nil
}

func (r *mockRegistry) GetSupportedTypes() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}

func TestUnit_Interface(t *testing.T) {
	var _ Unit = (*mockUnit)(nil)

	unit := &mockUnit{
		name: "score",
		executeFunc: func(ctx context.Context, state domain.State) (domain.State, error) {
			return domain.With(state, domain.KeyRoleScores, domain.RoleScores{5}), nil
		},
	}

	assert.Equal(t, "score", unit.Name())
	assert.NoError(t, unit.Validate())

	initial := domain.NewState()
	next, err := unit.Execute(context.Background(), initial)
	require.NoError(t, err)

	scores, ok := domain.Get(next, domain.KeyRoleScores)
	require.True(t, ok)
	assert.Equal(t, domain.RoleScores{5}, scores)

	_, ok = domain.Get(initial, domain.KeyRoleScores)
	assert.False(t, ok, "Execute must not modify the input state")
}

func TestUnit_Failures(t *testing.T) {
	validationErr := errors.New("invalid configuration")
	execErr := errors.New("execution failed")
	unit := &mockUnit{
		name:        "failing-unit",
		validateErr: validationErr,
		executeFunc: func(ctx context.Context, state domain.State) (domain.State, error) {
			return domain.State{}, execErr
		},
	}

	assert.Equal(t, validationErr, unit.Validate())
	_, err := unit.Execute(context.Background(), domain.NewState())
	assert.Equal(t, execErr, err)
}

func TestUnit_ContextCancellation(t *testing.T) {
	unit := &mockUnit{
		name: "context-aware-unit",
		executeFunc: func(ctx context.Context, state domain.State) (domain.State, error) {
			if err := ctx.Err(); err != nil {
				return domain.State{}, err
			}
			return state, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := unit.Execute(ctx, domain.NewState())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnitRegistry_Interface(t *testing.T) {
	var reg UnitRegistry = &mockRegistry{factories: map[string]UnitFactory{}}

	require.NoError(t, reg.RegisterUnitFactory("noop", func(id string, _ map[string]any) (Unit, error) {
		return &mockUnit{name: id}, nil
	}))

	unit, err := reg.CreateUnit("noop", "n1", nil)
	require.NoError(t, err)
	assert.Equal(t, "n1", unit.Name())
	assert.Equal(t, []string{"noop"}, reg.GetSupportedTypes())

	_, err = reg.CreateUnit("missing", "n2", nil)
	assert.Error(t, err)
}
