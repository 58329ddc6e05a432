package domain

import (
	"encoding/json"
	"fmt"
)

// MaxWeight is the largest weight a single answer can credit to a role.
const MaxWeight = 5

// RoleScores holds one non-negative score per role, indexed by Role. It is
// the per-respondent role-score vector and, when summed over members, the
// team role distribution. The array form keeps the role set closed and
// makes copies cheap.
type RoleScores [RoleCount]float64

// Get returns the score for role r.
func (s RoleScores) Get(r Role) float64 { return s[r] }

// Add increases the score for role r by delta.
func (s *RoleScores) Add(r Role, delta float64) { s[r] += delta }

// Total returns the sum of all role scores.
func (s RoleScores) Total() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// IsZero reports whether every role score is zero.
func (s RoleScores) IsZero() bool { return s == RoleScores{} }

// Plus returns the elementwise sum of s and o.
func (s RoleScores) Plus(o RoleScores) RoleScores {
	for i := range s {
		s[i] += o[i]
	}
	return s
}

// Map returns the scores keyed by role.
func (s RoleScores) Map() map[Role]float64 {
	m := make(map[Role]float64, RoleCount)
	for _, r := range AllRoles() {
		m[r] = s[r]
	}
	return m
}

// NewRoleScores builds a vector from a role-keyed map; missing roles are 0.
func NewRoleScores(m map[Role]float64) RoleScores {
	var s RoleScores
	for r, v := range m {
		if r.Valid() {
			s[r] = v
		}
	}
	return s
}

// MarshalJSON encodes the vector as an object keyed by role name.
func (s RoleScores) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.byName())
}

// UnmarshalJSON decodes an object keyed by role name. Unknown role names
// and negative scores are rejected.
func (s *RoleScores) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	return s.fromNames(m)
}

// MarshalYAML encodes the vector as a mapping keyed by role name.
func (s RoleScores) MarshalYAML() (any, error) { return s.byName(), nil }

// UnmarshalYAML decodes a mapping keyed by role name with the same rules
// as UnmarshalJSON.
func (s *RoleScores) UnmarshalYAML(unmarshal func(any) error) error {
	var m map[string]float64
	if err := unmarshal(&m); err != nil {
		return err
	}
	return s.fromNames(m)
}

func (s RoleScores) byName() map[string]float64 {
	m := make(map[string]float64, RoleCount)
	for i, v := range s {
		m[roleNames[i]] = v
	}
	return m
}

func (s *RoleScores) fromNames(m map[string]float64) error {
	var out RoleScores
	for name, v := range m {
		r, ok := lookupRole(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownRole, name)
		}
		if v < 0 {
			return fmt.Errorf("negative score %v for role %s", v, r)
		}
		out[r] = v
	}
	*s = out
	return nil
}

// MemberAnswers is one respondent's answer set, identified by an opaque ID
// supplied by the surrounding system.
type MemberAnswers struct {
	ID      string   `json:"id" yaml:"id"`
	Answers []Answer `json:"answers" yaml:"answers"`
}

// MemberScores is one respondent's accumulated role-score vector.
type MemberScores struct {
	ID     string     `json:"id" yaml:"id"`
	Scores RoleScores `json:"scores" yaml:"scores"`
}
