package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/scoring"
)

func TestScoreRespondents(t *testing.T) {
	bank := testBank(t)
	ctx := context.Background()

	t.Run("matches sequential accumulation in input order", func(t *testing.T) {
		sets := make([]domain.MemberAnswers, 40)
		for i := range sets {
			sets[i] = domain.MemberAnswers{
				ID:      fmt.Sprintf("m%02d", i),
				Answers: answers(i%7, (i+2)%7, (i+4)%7, (i+6)%7),
			}
		}

		for _, limit := range []int{0, 1, 3, 64} {
			got, err := ScoreRespondents(ctx, bank, sets, limit)
			require.NoError(t, err)
			require.Len(t, got, len(sets))
			for i, s := range sets {
				want, err := scoring.Accumulate(s.Answers, bank)
				require.NoError(t, err)
				assert.Equal(t, s.ID, got[i].ID)
				assert.Equal(t, want, got[i].Scores)
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := ScoreRespondents(ctx, bank, nil, 4)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid answer fails with member id", func(t *testing.T) {
		sets := []domain.MemberAnswers{
			{ID: "ok", Answers: answers(0)},
			{ID: "bad", Answers: []domain.Answer{{QuestionID: 99, Position: 1}}},
		}
		_, err := ScoreRespondents(ctx, bank, sets, 2)
		require.ErrorIs(t, err, domain.ErrUnknownQuestion)
		assert.Contains(t, err.Error(), "member bad")
	})

	t.Run("nil bank", func(t *testing.T) {
		_, err := ScoreRespondents(ctx, nil, nil, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidQuestionBank)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := ScoreRespondents(cctx, bank, []domain.MemberAnswers{{ID: "a", Answers: answers(0)}}, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func BenchmarkScoreRespondents(b *testing.B) {
	bank := testBank(b)
	sets := make([]domain.MemberAnswers, 500)
	for i := range sets {
		sets[i] = domain.MemberAnswers{ID: fmt.Sprint(i), Answers: answers(i%7, 6-i%7, 3, i%5)}
	}
	ctx := context.Background()

	b.ResetTimer()
	for range b.N {
		if _, err := ScoreRespondents(ctx, bank, sets, 8); err != nil {
			b.Fatal(err)
		}
	}
}
