package scoring

import (
	"fmt"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// Accumulate sums the contributions of a respondent's answers into a
// role-score vector.
//
// Every answer is validated, including ones later superseded. When the
// same question is answered more than once, the last answer wins. Partial
// answer sets are valid and yield a partial vector; use Completeness to
// track how much of the bank was answered.
//
// Errors wrap domain.ErrUnknownQuestion or domain.ErrInvalidPosition, or
// domain.ErrInvalidQuestionBank when bank is nil.
func Accumulate(answers []domain.Answer, bank *domain.QuestionBank) (domain.RoleScores, error) {
	var scores domain.RoleScores
	if bank == nil {
		return scores, fmt.Errorf("%w: question bank is nil", domain.ErrInvalidQuestionBank)
	}

	// Keep first-seen order so the summation order is stable.
	latest := make(map[int]int, len(answers))
	order := make([]int, 0, len(answers))
	for _, a := range answers {
		if _, ok := bank.Question(a.QuestionID); !ok {
			return domain.RoleScores{}, domain.NewAnswerError(a,
				fmt.Errorf("%w: %d", domain.ErrUnknownQuestion, a.QuestionID))
		}
		if !a.ValidPosition() {
			return domain.RoleScores{}, domain.NewAnswerError(a,
				fmt.Errorf("%w: %d", domain.ErrInvalidPosition, a.Position))
		}
		if _, seen := latest[a.QuestionID]; !seen {
			order = append(order, a.QuestionID)
		}
		latest[a.QuestionID] = a.Position
	}

	for _, id := range order {
		q, _ := bank.Question(id)
		c, ok, err := Normalize(domain.Answer{QuestionID: id, Position: latest[id]}, q)
		if err != nil {
			return domain.RoleScores{}, err
		}
		if ok {
			scores.Add(c.Role, c.Weight)
		}
	}

	return scores, nil
}

// Progress reports how much of a question bank an answer set covers.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// Complete reports whether every question in the bank has an answer.
func (p Progress) Complete() bool { return p.Total > 0 && p.Answered >= p.Total }

// Completeness counts the distinct bank questions answered. Answers to
// unknown questions are ignored here; Accumulate rejects them.
func Completeness(answers []domain.Answer, bank *domain.QuestionBank) Progress {
	if bank == nil {
		return Progress{}
	}
	seen := make(map[int]struct{}, len(answers))
	for _, a := range answers {
		if _, ok := bank.Question(a.QuestionID); ok {
			seen[a.QuestionID] = struct{}{}
		}
	}
	return Progress{Answered: len(seen), Total: bank.Len()}
}
