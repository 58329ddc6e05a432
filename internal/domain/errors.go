package domain

import (
	"errors"
	"fmt"
)

// Common domain errors. Validation errors are caller-correctable and are
// never retried or coerced by the engine.
var (
	// ErrInvalidPosition indicates an answer position outside [0,6].
	ErrInvalidPosition = errors.New("answer position out of range")

	// ErrUnknownQuestion indicates an answer referencing a question id that
	// is not in the question bank.
	ErrUnknownQuestion = errors.New("unknown question")

	// ErrMismatchedQuestion indicates an answer paired with a question
	// whose id differs from the answer's question id.
	ErrMismatchedQuestion = errors.New("answer does not belong to question")

	// ErrUnknownRole indicates a role name or value outside the closed set.
	ErrUnknownRole = errors.New("unknown role")

	// ErrInvalidQuestionBank indicates a question bank that failed validation.
	ErrInvalidQuestionBank = errors.New("invalid question bank")

	// ErrInvalidState indicates that a State operation received invalid input.
	ErrInvalidState = errors.New("invalid state")

	// ErrKeyNotFound indicates that a requested state key does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// AnswerError reports a failure tied to a specific answer.
type AnswerError struct {
	// QuestionID is the question the failing answer referenced.
	QuestionID int

	// Position is the slider position that was submitted.
	Position int

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface for AnswerError.
func (e *AnswerError) Error() string {
	return fmt.Sprintf("answer error: question=%d, position=%d, err=%v", e.QuestionID, e.Position, e.Err)
}

// Unwrap returns the underlying error.
func (e *AnswerError) Unwrap() error { return e.Err }

// NewAnswerError creates a new AnswerError for the given answer.
func NewAnswerError(a Answer, err error) *AnswerError {
	return &AnswerError{
		QuestionID: a.QuestionID,
		Position:   a.Position,
		Err:        err,
	}
}

// StateError represents an error that occurred during State operations.
type StateError struct {
	// Key is the name of the state key involved in the failed operation.
	Key string

	// Operation describes what operation was being performed.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for StateError.
func (e *StateError) Error() string {
	return fmt.Sprintf("state error: operation=%s, key=%s, err=%v", e.Operation, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StateError) Unwrap() error { return e.Err }

// NewStateError creates a new StateError with the given details.
func NewStateError(key, operation string, err error) *StateError {
	return &StateError{
		Key:       key,
		Operation: operation,
		Err:       err,
	}
}

// ValidationError collects multiple validation failures for one entity.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
