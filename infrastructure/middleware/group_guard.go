// Package middleware provides cross-cutting concerns for the role profile
// engine. It wraps analysis units to enforce group size limits and report
// tracing and metrics without touching the units themselves.
package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/ahrav/go-rolecall/internal/application"
	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/ports"
)

// GroupLimit bounds the size of the group a unit may process.
type GroupLimit struct {
	// MaxMembers is the largest accepted member count. Zero means
	// unlimited.
	MaxMembers int
}

// Unlimited reports whether the limit never rejects a group.
func (l GroupLimit) Unlimited() bool { return l.MaxMembers <= 0 }

// GroupObserver provides observability hooks around guarded execution.
type GroupObserver interface {
	// PreCheck is called before the limit is checked. The returned context
	// is passed to the wrapped unit and to PostCheck.
	PreCheck(ctx context.Context, members int, limit GroupLimit) context.Context

	// PostCheck is called once the unit has run or has been rejected.
	PostCheck(ctx context.Context, members int, limit GroupLimit, elapsed time.Duration, err error)
}

// GroupGuard rejects states whose group is larger than its limit before
// and after the wrapped unit runs. It keeps no mutable state and is safe
// for concurrent use.
type GroupGuard struct {
	limit    GroupLimit
	next     ports.Unit
	observer GroupObserver
}

var _ ports.Unit = (*GroupGuard)(nil)

// NewGroupGuard wraps next. observer may be nil.
func NewGroupGuard(limit GroupLimit, next ports.Unit, observer GroupObserver) *GroupGuard {
	if next == nil {
		panic("group guard: next unit is required")
	}
	return &GroupGuard{
		limit:    limit,
		next:     next,
		observer: observer,
	}
}

// Name returns the wrapped unit's name so graph errors keep pointing at the
// unit the user declared.
func (g *GroupGuard) Name() string { return g.next.Name() }

// Unwrap returns the guarded unit.
func (g *GroupGuard) Unwrap() ports.Unit { return g.next }

// Execute enforces the limit around the wrapped unit.
func (g *GroupGuard) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	members := state.MemberCount()
	if g.observer != nil {
		ctx = g.observer.PreCheck(ctx, members, g.limit)
	}

	start := time.Now()
	if err := g.check(state, members); err != nil {
		g.post(ctx, members, time.Since(start), err)
		return state, err
	}

	newState, err := g.next.Execute(ctx, state)
	if err == nil {
		// Units may expand the group, e.g. scoring answer sets into vectors.
		members = newState.MemberCount()
		err = g.check(newState, members)
	}
	g.post(ctx, members, time.Since(start), err)
	if err != nil {
		return state, err
	}
	return newState, nil
}

// Validate checks the limit and the wrapped unit.
func (g *GroupGuard) Validate() error {
	if g.limit.MaxMembers < 0 {
		return fmt.Errorf("group guard: max_members cannot be negative, got %d", g.limit.MaxMembers)
	}
	return g.next.Validate()
}

func (g *GroupGuard) check(state domain.State, members int) error {
	if g.limit.Unlimited() || members <= g.limit.MaxMembers {
		return nil
	}
	group, _ := domain.Get(state, domain.KeyGroupName)
	return &ports.GroupLimitError{
		Group:   group,
		Members: members,
		Limit:   g.limit.MaxMembers,
	}
}

func (g *GroupGuard) post(ctx context.Context, members int, elapsed time.Duration, err error) {
	if g.observer != nil {
		g.observer.PostCheck(ctx, members, g.limit, elapsed, err)
	}
}

// LimitFromConfig converts a unit's limits block to a GroupLimit.
func LimitFromConfig(config application.LimitsConfig) GroupLimit {
	return GroupLimit{MaxMembers: config.MaxMembers}
}

// LimitFromParams reads the max_members entry the graph loader adds to a
// unit's factory configuration.
func LimitFromParams(config map[string]any) GroupLimit {
	switch v := config["max_members"].(type) {
	case int:
		return GroupLimit{MaxMembers: v}
	case int64:
		return GroupLimit{MaxMembers: int(v)}
	case float64:
		return GroupLimit{MaxMembers: int(v)}
	default:
		return GroupLimit{}
	}
}
