package domain

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"time"
)

// Key represents a type-safe generic key for accessing values in State.
// The type parameter T ensures compile-time type safety when getting and
// setting values, eliminating the need for runtime type assertions.
type Key[T any] struct{ name string }

// NewKey creates a new Key with the specified name and type.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the key's string name.
func (k Key[T]) Name() string { return k.name }

// Predefined state keys used by the analysis units.
var (
	// KeyQuestionBank stores the read-only question bank.
	KeyQuestionBank = Key[*QuestionBank]{"question_bank"}

	// KeyAnswers stores a single respondent's answer set.
	KeyAnswers = Key[[]Answer]{"answers"}

	// KeyRoleScores stores a single respondent's role-score vector.
	KeyRoleScores = Key[RoleScores]{"role_scores"}

	// KeyProfile stores the classification of KeyRoleScores.
	KeyProfile = Key[Profile]{"profile"}

	// KeyMembers stores the answer sets of every member of a group.
	KeyMembers = Key[[]MemberAnswers]{"members"}

	// KeyMemberScores stores the role-score vectors of every group member.
	KeyMemberScores = Key[[]MemberScores]{"member_scores"}

	// KeyDistribution stores the group role distribution.
	KeyDistribution = Key[RoleScores]{"distribution"}

	// KeyBalanceScore stores the 0-100 balance score of KeyDistribution.
	KeyBalanceScore = Key[int]{"balance_score"}

	// KeyGaps stores the per-role gap analysis of KeyDistribution.
	KeyGaps = Key[[]GapEntry]{"gaps"}

	// KeyPairings stores complementary pairing recommendations.
	KeyPairings = Key[[]Pairing]{"pairings"}

	// KeyComposition stores primary and secondary role counts.
	KeyComposition = Key[RoleComposition]{"composition"}

	// Execution context keys for tracking metadata across graph traversal.

	// KeyGraphID stores the identifier of the analysis graph being executed.
	KeyGraphID = Key[string]{"execution.graph_id"}

	// KeyGroupName stores the team or organization being analyzed.
	KeyGroupName = Key[string]{"execution.group_name"}

	// KeyExecutionID stores a unique identifier for this execution.
	KeyExecutionID = Key[string]{"execution.execution_id"}
)

// immutableValue is implemented by types that are safe to share by
// reference and must not be reflect-copied.
type immutableValue interface{ immutable() }

// deepCopyValue creates a deep copy of a value to ensure true immutability.
// It handles slices, maps, and other reference types that would otherwise
// allow external modification of State data.
func deepCopyValue(value any) any {
	if value == nil {
		return nil
	}

	// time.Time is immutable and can be returned directly.
	if val, ok := value.(time.Time); ok {
		return val
	}
	if _, ok := value.(immutableValue); ok {
		return value
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return value
		}
		newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Cap())
		for i := 0; i < v.Len(); i++ {
			newSlice.Index(i).Set(copyInto(v.Index(i)))
		}
		return newSlice.Interface()

	case reflect.Map:
		if v.IsNil() {
			return value
		}
		newMap := reflect.MakeMap(v.Type())
		for _, key := range v.MapKeys() {
			newMap.SetMapIndex(copyInto(key), copyInto(v.MapIndex(key)))
		}
		return newMap.Interface()

	case reflect.Ptr:
		if v.IsNil() {
			return v.Interface()
		}
		newPtr := reflect.New(v.Elem().Type())
		newPtr.Elem().Set(copyInto(v.Elem()))
		return newPtr.Interface()

	case reflect.Struct:
		// Unexported fields are copied shallowly with the struct value;
		// exported fields are deep copied.
		newStruct := reflect.New(v.Type()).Elem()
		newStruct.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if newStruct.Field(i).CanSet() {
				newStruct.Field(i).Set(copyInto(v.Field(i)))
			}
		}
		return newStruct.Interface()

	default:
		// Primitives and arrays of primitives are copied by value.
		return value
	}
}

// copyInto deep copies v and returns a reflect.Value assignable to v's type,
// preserving nil interfaces and typed nils.
func copyInto(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	if v.Kind() == reflect.Interface && v.IsNil() {
		return reflect.Zero(v.Type())
	}
	copied := deepCopyValue(v.Interface())
	if copied == nil {
		return reflect.Zero(v.Type())
	}
	return reflect.ValueOf(copied).Convert(v.Type())
}

// State represents an immutable collection of analysis data that flows
// through the graph. It uses copy-on-write semantics to ensure
// thread-safety and prevent unintended mutations.
type State struct {
	// data holds the key-value pairs that make up the state.
	data map[string]any
}

// NewState creates a new empty State.
func NewState() State {
	return State{
		data: make(map[string]any),
	}
}

// Get retrieves a value from the State with compile-time type safety.
// It returns the value and a boolean indicating whether the key exists
// and contains a value of the correct type. The returned value is a deep
// copy to maintain immutability.
//
// Example:
//
//	scores, ok := Get(state, KeyRoleScores)
//	if !ok {
//	    // handle missing value
//	}
func Get[T any](s State, key Key[T]) (T, bool) {
	var zero T
	value, exists := s.data[key.name]
	if !exists {
		return zero, false
	}

	copied := deepCopyValue(value)
	val, ok := copied.(T)
	return val, ok
}

// Require is Get with a StateError when the key is missing or has the
// wrong type.
func Require[T any](s State, key Key[T]) (T, error) {
	v, ok := Get(s, key)
	if !ok {
		return v, NewStateError(key.name, "Get", ErrKeyNotFound)
	}
	return v, nil
}

// GetRaw is a method version of Get that uses a string key.
// For type safety, use the generic Get function instead.
func (s State) GetRaw(keyName string) (any, bool) {
	value, exists := s.data[keyName]
	if !exists {
		return nil, false
	}
	return deepCopyValue(value), true
}

// With creates a new State with the specified key-value pair added or
// updated, leaving the original unchanged.
//
// Example:
//
//	newState := With(state, KeyAnswers, answers)
func With[T any](s State, key Key[T], value T) State {
	newData := maps.Clone(s.data)
	if newData == nil {
		newData = make(map[string]any)
	}
	newData[key.name] = deepCopyValue(value)
	return State{data: newData}
}

// WithRaw is a method version of With that uses a string key and allows
// chaining. For type safety, use the generic With function instead.
func (s State) WithRaw(keyName string, value any) State {
	return s.WithMultiple(map[string]any{keyName: value})
}

// WithMultiple creates a new State with multiple key-value pairs added
// or updated in a single clone.
func (s State) WithMultiple(updates map[string]any) State {
	newData := maps.Clone(s.data)
	if newData == nil {
		newData = make(map[string]any, len(updates))
	}
	for k, v := range updates {
		newData[k] = deepCopyValue(v)
	}
	return State{data: newData}
}

// Keys returns all keys present in the State in sorted order.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// String returns a string representation of the State for debugging purposes.
func (s State) String() string {
	return fmt.Sprintf("State%v", s.data)
}

// ExecutionContext contains metadata about the current analysis execution
// that flows through the State during graph traversal.
type ExecutionContext struct {
	// GraphID is the identifier of the analysis graph being executed.
	GraphID string

	// GroupName is the team or organization being analyzed.
	GroupName string

	// ExecutionID is a unique identifier for this execution instance.
	ExecutionID string
}

// WithExecutionContext creates a new State carrying execution metadata.
func (s State) WithExecutionContext(ctx ExecutionContext) State {
	return s.WithMultiple(map[string]any{
		KeyGraphID.name:     ctx.GraphID,
		KeyGroupName.name:   ctx.GroupName,
		KeyExecutionID.name: ctx.ExecutionID,
	})
}

// GetExecutionContext extracts execution context metadata from the State.
// It reports false unless all fields are present.
func (s State) GetExecutionContext() (ExecutionContext, bool) {
	graphID, ok1 := Get(s, KeyGraphID)
	groupName, ok2 := Get(s, KeyGroupName)
	executionID, ok3 := Get(s, KeyExecutionID)

	if !ok1 || !ok2 || !ok3 {
		return ExecutionContext{}, false
	}

	return ExecutionContext{
		GraphID:     graphID,
		GroupName:   groupName,
		ExecutionID: executionID,
	}, true
}

// MemberCount returns the size of the group carried by the State: the
// number of member answer sets, or failing that, member score vectors.
func (s State) MemberCount() int {
	if members, ok := Get(s, KeyMembers); ok {
		return len(members)
	}
	if scores, ok := Get(s, KeyMemberScores); ok {
		return len(scores)
	}
	return 0
}
