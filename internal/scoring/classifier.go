package scoring

import (
	"slices"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// Reference thresholds. TieThreshold comes from observed behavior; the
// profile type cutoffs are chosen values documented in DESIGN.md.
const (
	TieThreshold = 0.10

	DefaultSpecializedDominance = 0.25
	DefaultSpecializedSpread    = 0.40
	DefaultBalancedSpread       = 0.15
)

// ClassifierThresholds controls how Classify labels profile types and how
// ties between primary and secondary roles are detected. Spread values are
// measured as (primary - third) / primary.
type ClassifierThresholds struct {
	// Tie marks primary and secondary as effectively tied when the
	// dominance ratio is below it.
	Tie float64 `yaml:"tie" json:"tie" validate:"gte=0,lte=1"`

	// SpecializedDominance is the minimum dominance ratio for a
	// specialized profile.
	SpecializedDominance float64 `yaml:"specialized_dominance" json:"specialized_dominance" validate:"gte=0,lte=1"`

	// SpecializedSpread is the minimum primary-to-third spread for a
	// specialized profile.
	SpecializedSpread float64 `yaml:"specialized_spread" json:"specialized_spread" validate:"gte=0,lte=1,gtefield=SpecializedDominance"`

	// BalancedSpread is the spread below which the top three roles count
	// as balanced.
	BalancedSpread float64 `yaml:"balanced_spread" json:"balanced_spread" validate:"gte=0,lte=1,ltefield=SpecializedSpread"`
}

// DefaultClassifierThresholds returns the reference thresholds.
func DefaultClassifierThresholds() ClassifierThresholds {
	return ClassifierThresholds{
		Tie:                  TieThreshold,
		SpecializedDominance: DefaultSpecializedDominance,
		SpecializedSpread:    DefaultSpecializedSpread,
		BalancedSpread:       DefaultBalancedSpread,
	}
}

// Tied reports whether a classified profile's primary and secondary roles
// are too close to credit the secondary with confidence.
func (t ClassifierThresholds) Tied(p domain.Profile) bool {
	return p.PrimaryRole != nil && p.DominanceRatio < t.Tie
}

// Rank orders all roles by descending score. Equal scores keep role
// priority order (apostle, prophet, evangelist, herder, teacher).
func Rank(scores domain.RoleScores) []domain.Role {
	ranking := domain.AllRoles()
	slices.SortStableFunc(ranking, func(a, b domain.Role) int {
		switch sa, sb := scores.Get(a), scores.Get(b); {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})
	return ranking
}

// Classify derives the profile of a role-score vector.
//
// A vector with zero total has no primary or secondary role, a dominance
// ratio of 0 and is labeled balanced.
func Classify(scores domain.RoleScores, th ClassifierThresholds) domain.Profile {
	ranking := Rank(scores)
	profile := domain.Profile{Ranking: ranking}

	if scores.Total() == 0 {
		profile.ProfileType = domain.ProfileBalanced
		return profile
	}

	primary, secondary := ranking[0], ranking[1]
	profile.PrimaryRole = &primary
	profile.SecondaryRole = &secondary

	top := scores.Get(primary)
	profile.DominanceRatio = (top - scores.Get(secondary)) / top
	spread := (top - scores.Get(ranking[2])) / top

	switch {
	case profile.DominanceRatio >= th.SpecializedDominance && spread >= th.SpecializedSpread:
		profile.ProfileType = domain.ProfileSpecialized
	case spread < th.BalancedSpread:
		profile.ProfileType = domain.ProfileBalanced
	default:
		profile.ProfileType = domain.ProfileModerate
	}

	return profile
}
