package domain

// ProfileType is the qualitative shape of a respondent's role scores.
type ProfileType string

// Supported profile types.
const (
	// ProfileSpecialized means one role clearly dominates the rest.
	ProfileSpecialized ProfileType = "specialized"

	// ProfileModerate means a clear lead without full specialization.
	ProfileModerate ProfileType = "moderate"

	// ProfileBalanced means the top roles are close together.
	ProfileBalanced ProfileType = "balanced"
)

// Profile is the classification of a single role-score vector.
type Profile struct {
	// PrimaryRole is the highest-scoring role, nil when no answer
	// contributed any weight.
	PrimaryRole *Role `json:"primary_role"`

	// SecondaryRole is the runner-up role, nil under the same condition.
	SecondaryRole *Role `json:"secondary_role"`

	// DominanceRatio is (primary - secondary) / primary, or 0 when the
	// primary score is 0.
	DominanceRatio float64 `json:"dominance_ratio"`

	// ProfileType summarizes how concentrated the scores are.
	ProfileType ProfileType `json:"profile_type"`

	// Ranking lists every role from highest to lowest score with ties
	// broken by role priority.
	Ranking []Role `json:"ranking"`
}

// GapStatus classifies how far a role falls short of its ideal share.
type GapStatus string

// Supported gap statuses.
const (
	GapBalanced GapStatus = "balanced"
	GapModerate GapStatus = "moderate"
	GapSevere   GapStatus = "severe"
)

// GapEntry reports one role's shortfall against the ideal share.
type GapEntry struct {
	Role Role `json:"role"`

	// PercentageGap is ideal minus actual percentage. Negative values mean
	// the role is over-represented.
	PercentageGap float64 `json:"percentage_gap"`

	Status GapStatus `json:"status"`
}

// Pairing is a recommended complementary pairing of two respondents.
type Pairing struct {
	First    string  `json:"first"`
	Second   string  `json:"second"`
	Distance float64 `json:"distance"`
}

// RoleComposition counts how many members hold each role as primary or
// secondary.
type RoleComposition struct {
	Primary   [RoleCount]int `json:"primary"`
	Secondary [RoleCount]int `json:"secondary"`

	// Unclassified counts members whose vectors are all zero.
	Unclassified int `json:"unclassified"`
}

// GroupReport bundles the statistics computed for a team or organization.
type GroupReport struct {
	Name         string          `json:"name"`
	Members      int             `json:"members"`
	Distribution RoleScores      `json:"distribution"`
	Percentages  RoleScores      `json:"percentages"`
	Balance      int             `json:"balance"`
	Gaps         []GapEntry      `json:"gaps"`
	Composition  RoleComposition `json:"composition"`
}
