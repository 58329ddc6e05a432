package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-rolecall/internal/domain"
)

func question(id int, a, b domain.Role) domain.Question {
	return domain.Question{
		ID:         id,
		StatementA: domain.Statement{Text: "statement a", Role: a},
		StatementB: domain.Statement{Text: "statement b", Role: b},
	}
}

func newBank(t *testing.T, qs ...domain.Question) *domain.QuestionBank {
	t.Helper()
	bank, err := domain.NewQuestionBank(qs)
	require.NoError(t, err)
	return bank
}

func member(id string, scores domain.RoleScores) domain.MemberScores {
	return domain.MemberScores{ID: id, Scores: scores}
}
