package application

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-rolecall/infrastructure/units"
	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/scoring"
)

// DefaultScoringConcurrency bounds ScoreRespondents when no limit is given.
const DefaultScoringConcurrency = 8

var _ units.RespondentScorer = ScoreRespondents

// ScoreRespondents accumulates the role-score vector of every answer set
// concurrently, with at most limit sets in flight. Results are returned in
// input order. The first failing set cancels the remaining work and its
// error is returned wrapped with the member ID.
func ScoreRespondents(
	ctx context.Context,
	bank *domain.QuestionBank,
	sets []domain.MemberAnswers,
	limit int,
) ([]domain.MemberScores, error) {
	if bank == nil {
		return nil, fmt.Errorf("%w: question bank is nil", domain.ErrInvalidQuestionBank)
	}
	if limit <= 0 {
		limit = DefaultScoringConcurrency
	}

	results := make([]domain.MemberScores, len(sets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, set := range sets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores, err := scoring.Accumulate(set.Answers, bank)
			if err != nil {
				return fmt.Errorf("member %s: %w", set.ID, err)
			}
			results[i] = domain.MemberScores{ID: set.ID, Scores: scores}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "scored respondents", "count", len(results), "limit", limit)
	return results, nil
}
