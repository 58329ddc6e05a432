package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// mockExecutable is a test implementation of ports.Executable.
type mockExecutable struct {
	id          string
	executeFunc func(ctx context.Context, state domain.State) (domain.State, error)

	mu       sync.Mutex
	executed bool
}

func (m *mockExecutable) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	m.mu.Lock()
	m.executed = true
	m.mu.Unlock()

	if m.executeFunc != nil {
		return m.executeFunc(ctx, state)
	}
	return state, nil
}

func (m *mockExecutable) ID() string { return m.id }

func (m *mockExecutable) wasExecuted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executed
}

// writer returns an executable that sets key to value.
func writer(id, key string, value any) *mockExecutable {
	return &mockExecutable{
		id: id,
		executeFunc: func(_ context.Context, state domain.State) (domain.State, error) {
			return state.WithRaw(key, value), nil
		},
	}
}

// mockUnit is a ports.Unit backed by a function.
type mockUnit struct {
	name string
	run  func(ctx context.Context, state domain.State) (domain.State, error)
}

func (m *mockUnit) Name() string { return m.name }

func (m *mockUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	if m.run == nil {
		return state, nil
	}
	return m.run(ctx, state)
}

func (m *mockUnit) Validate() error { return nil }

// testBank builds a four-question bank covering every role.
func testBank(t testing.TB) *domain.QuestionBank {
	t.Helper()
	stmt := func(text string, r domain.Role) domain.Statement {
		return domain.Statement{Text: text, Role: r}
	}
	bank, err := domain.NewQuestionBank([]domain.Question{
		{ID: 1, StatementA: stmt("I pioneer new work", domain.RoleApostle), StatementB: stmt("I teach what I know", domain.RoleTeacher)},
		{ID: 2, StatementA: stmt("I call out injustice", domain.RoleProphet), StatementB: stmt("I share my faith", domain.RoleEvangelist)},
		{ID: 3, StatementA: stmt("I care for people", domain.RoleHerder), StatementB: stmt("I start new ventures", domain.RoleApostle)},
		{ID: 4, StatementA: stmt("I explain ideas", domain.RoleTeacher), StatementB: stmt("I listen for direction", domain.RoleProphet)},
	})
	require.NoError(t, err)
	return bank
}

// answers builds an answer set from positions for questions 1..n.
func answers(positions ...int) []domain.Answer {
	out := make([]domain.Answer, len(positions))
	for i, p := range positions {
		out[i] = domain.Answer{QuestionID: i + 1, Position: p}
	}
	return out
}

// yamlNode parses src and returns its root node, or the zero node for an
// empty document.
func yamlNode(t *testing.T, src string) yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return *doc.Content[0]
	}
	return doc
}
