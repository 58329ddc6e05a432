// Package scoring implements the role profile engine: answer
// normalization, per-respondent accumulation and classification, and the
// group statistics (distribution, balance, gaps, complementary pairings).
//
// Every function in this package is pure and synchronous. Inputs are never
// mutated and no package-level state is written, so all functions are safe
// for concurrent use and repeated calls with equal inputs return equal
// results.
package scoring

import (
	"fmt"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// weightByDistance maps the distance from the neutral position to the
// weight credited. The progression is deliberately non-linear and must stay
// a literal table to keep historical scores comparable.
var weightByDistance = [...]float64{
	0: 0,
	1: 1,
	2: 3,
	3: 5,
}

// Contribution is the weight one answer credits to one role.
type Contribution struct {
	Role   domain.Role `json:"role"`
	Weight float64     `json:"weight"`
}

// Weight returns the weight credited for a slider position, or an error
// wrapping domain.ErrInvalidPosition when the position is out of range.
func Weight(position int) (float64, error) {
	if position < domain.MinPosition || position > domain.MaxPosition {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidPosition, position)
	}
	d := position - domain.NeutralPosition
	if d < 0 {
		d = -d
	}
	return weightByDistance[d], nil
}

// Normalize converts one answer into the role and weight it credits.
// The boolean is false for the neutral position, which credits nothing.
//
// Errors wrap domain.ErrMismatchedQuestion when the answer references a
// different question and domain.ErrInvalidPosition when the position is
// outside [0,6]; both are returned as *domain.AnswerError.
func Normalize(answer domain.Answer, question domain.Question) (Contribution, bool, error) {
	if answer.QuestionID != question.ID {
		return Contribution{}, false, domain.NewAnswerError(answer,
			fmt.Errorf("%w: answer=%d, question=%d", domain.ErrMismatchedQuestion, answer.QuestionID, question.ID))
	}

	weight, err := Weight(answer.Position)
	if err != nil {
		return Contribution{}, false, domain.NewAnswerError(answer, err)
	}

	switch {
	case answer.Position < domain.NeutralPosition:
		return Contribution{Role: question.StatementA.Role, Weight: weight}, true, nil
	case answer.Position > domain.NeutralPosition:
		return Contribution{Role: question.StatementB.Role, Weight: weight}, true, nil
	default:
		return Contribution{}, false, nil
	}
}
