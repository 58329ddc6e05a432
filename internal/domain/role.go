// Package domain contains pure, dependency-free domain models and types
// for the role profile engine.
package domain

import (
	"fmt"
	"strings"
)

// Role identifies one of the five ministry roles measured by the
// questionnaire. The set is closed: thresholds such as the ideal 20% share
// assume exactly RoleCount values, so adding a role is a compile-time change.
type Role uint8

// The declaration order is the tie-breaking priority order used when two
// roles hold equal scores.
const (
	RoleApostle Role = iota
	RoleProphet
	RoleEvangelist
	RoleHerder
	RoleTeacher
)

// RoleCount is the number of roles in the closed set.
const RoleCount = 5

var roleNames = [RoleCount]string{
	RoleApostle:    "apostle",
	RoleProphet:    "prophet",
	RoleEvangelist: "evangelist",
	RoleHerder:     "herder",
	RoleTeacher:    "teacher",
}

// AllRoles returns every role in priority order. The returned slice is a
// fresh copy and may be modified by the caller.
func AllRoles() []Role {
	return []Role{RoleApostle, RoleProphet, RoleEvangelist, RoleHerder, RoleTeacher}
}

// Valid reports whether r is one of the five defined roles.
func (r Role) Valid() bool { return r < RoleCount }

// String returns the lowercase role name.
func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("role(%d)", uint8(r))
	}
	return roleNames[r]
}

// MarshalText implements encoding.TextMarshaler so roles serialize by name
// and can be used as JSON object keys.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, uint8(r))
	}
	return []byte(roleNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is exact on
// the lowercase name; use ParseRole for lenient input.
func (r *Role) UnmarshalText(text []byte) error {
	role, ok := lookupRole(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRole, string(text))
	}
	*r = role
	return nil
}

// ParseRole resolves a role name after trimming surrounding whitespace.
// Callers that need case-insensitive matching should fold the input first.
func ParseRole(name string) (Role, error) {
	role, ok := lookupRole(strings.TrimSpace(name))
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
	return role, nil
}

// RoleNames returns the canonical names of all roles in priority order.
func RoleNames() []string {
	names := make([]string, RoleCount)
	copy(names, roleNames[:])
	return names
}

func lookupRole(name string) (Role, bool) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), true
		}
	}
	return 0, false
}
