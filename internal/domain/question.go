package domain

import (
	"fmt"
	"strings"
)

// Answer position bounds. Positions below NeutralPosition lean toward
// statement A and positions above it lean toward statement B.
const (
	MinPosition     = 0
	NeutralPosition = 3
	MaxPosition     = 6
)

// Statement is one side of a paired question, tagged with the role it
// measures.
type Statement struct {
	// Text is the statement shown to the respondent.
	Text string `json:"text" yaml:"text"`

	// Role is the role credited when the respondent leans toward this side.
	Role Role `json:"role" yaml:"role"`
}

// Question pairs two statements the respondent weighs against each other
// on a seven-point slider.
type Question struct {
	// ID uniquely identifies the question within a bank.
	ID int `json:"id" yaml:"id"`

	// StatementA is credited by positions 0-2.
	StatementA Statement `json:"statement_a" yaml:"statement_a"`

	// StatementB is credited by positions 4-6.
	StatementB Statement `json:"statement_b" yaml:"statement_b"`
}

// Answer is a respondent's slider position for one question.
type Answer struct {
	// QuestionID references Question.ID.
	QuestionID int `json:"question_id" yaml:"question_id"`

	// Position is the slider position in [MinPosition, MaxPosition].
	Position int `json:"position" yaml:"position"`
}

// ValidPosition reports whether the answer's position lies in the closed
// slider range. Out-of-range positions are never clamped by the engine.
func (a Answer) ValidPosition() bool {
	return a.Position >= MinPosition && a.Position <= MaxPosition
}

// QuestionBank is an immutable, indexed catalog of questions. It is built
// once and passed explicitly to every operation that needs it; there is no
// package-level bank.
type QuestionBank struct {
	questions []Question
	index     map[int]int
	ceiling   RoleScores
}

// NewQuestionBank validates the questions and returns an immutable bank
// preserving their order. It rejects duplicate IDs, blank statement texts
// and undefined roles. An empty slice is accepted.
func NewQuestionBank(questions []Question) (*QuestionBank, error) {
	verr := NewValidationError("QuestionBank")
	bank := &QuestionBank{
		questions: make([]Question, 0, len(questions)),
		index:     make(map[int]int, len(questions)),
	}

	for _, q := range questions {
		if _, dup := bank.index[q.ID]; dup {
			verr.AddError(fmt.Sprintf("question %d: duplicate id", q.ID))
			continue
		}
		sides := [2]struct {
			name string
			st   Statement
		}{{"a", q.StatementA}, {"b", q.StatementB}}
		for _, side := range sides {
			if strings.TrimSpace(side.st.Text) == "" {
				verr.AddError(fmt.Sprintf("question %d: statement %s has empty text", q.ID, side.name))
			}
			if !side.st.Role.Valid() {
				verr.AddError(fmt.Sprintf("question %d: statement %s has undefined role %d", q.ID, side.name, uint8(side.st.Role)))
			}
		}
		bank.index[q.ID] = len(bank.questions)
		bank.questions = append(bank.questions, q)
	}

	if verr.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuestionBank, verr)
	}

	for _, q := range bank.questions {
		bank.ceiling.Add(q.StatementA.Role, MaxWeight)
		bank.ceiling.Add(q.StatementB.Role, MaxWeight)
	}

	return bank, nil
}

// Question returns the question with the given ID.
func (b *QuestionBank) Question(id int) (Question, bool) {
	i, ok := b.index[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

// Questions returns the questions in bank order. The slice is a copy.
func (b *QuestionBank) Questions() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Len returns the number of questions in the bank.
func (b *QuestionBank) Len() int { return len(b.questions) }

// Ceiling returns the highest score each role can reach with this bank:
// MaxWeight for every statement tagged with the role, on either side.
func (b *QuestionBank) Ceiling() RoleScores { return b.ceiling }

// immutable marks the bank as safe to share by reference inside State.
func (b *QuestionBank) immutable() {}
