package units

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/scoring"
)

// testBank returns a two-question bank: apostle/teacher and
// prophet/evangelist.
func testBank(t *testing.T) *domain.QuestionBank {
	t.Helper()
	bank, err := domain.NewQuestionBank([]domain.Question{
		{
			ID:         1,
			StatementA: domain.Statement{Text: "I start new ministries", Role: domain.RoleApostle},
			StatementB: domain.Statement{Text: "I explain scripture", Role: domain.RoleTeacher},
		},
		{
			ID:         2,
			StatementA: domain.Statement{Text: "I name what is wrong", Role: domain.RoleProphet},
			StatementB: domain.Statement{Text: "I invite outsiders", Role: domain.RoleEvangelist},
		},
	})
	require.NoError(t, err)
	return bank
}

// sequentialScorer is a RespondentScorer without concurrency.
func sequentialScorer(
	_ context.Context,
	bank *domain.QuestionBank,
	sets []domain.MemberAnswers,
	_ int,
) ([]domain.MemberScores, error) {
	out := make([]domain.MemberScores, len(sets))
	for i, s := range sets {
		scores, err := scoring.Accumulate(s.Answers, bank)
		if err != nil {
			return nil, err
		}
		out[i] = domain.MemberScores{ID: s.ID, Scores: scores}
	}
	return out, nil
}

func twoSpecialists() []domain.MemberScores {
	return []domain.MemberScores{
		{ID: "a", Scores: domain.RoleScores{domain.RoleApostle: 70}},
		{ID: "b", Scores: domain.RoleScores{domain.RoleProphet: 70}},
	}
}
