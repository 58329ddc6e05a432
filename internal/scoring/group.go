package scoring

import "github.com/ahrav/go-rolecall/internal/domain"

// Composition counts primary and secondary roles across profiles. When a
// profile is tied (see ClassifierThresholds.Tied) its secondary role is
// credited as a co-primary rather than as a confident secondary.
func Composition(profiles []domain.Profile, th ClassifierThresholds) domain.RoleComposition {
	var comp domain.RoleComposition
	for _, p := range profiles {
		if p.PrimaryRole == nil {
			comp.Unclassified++
			continue
		}
		comp.Primary[*p.PrimaryRole]++
		if p.SecondaryRole == nil {
			continue
		}
		if th.Tied(p) {
			comp.Primary[*p.SecondaryRole]++
		} else {
			comp.Secondary[*p.SecondaryRole]++
		}
	}
	return comp
}

// AnalyzeGroup computes the full statistics for one team or organization
// from a snapshot of its members' vectors.
func AnalyzeGroup(name string, members []domain.MemberScores, th ClassifierThresholds) domain.GroupReport {
	dist := AggregateMembers(members)

	profiles := make([]domain.Profile, len(members))
	for i, m := range members {
		profiles[i] = Classify(m.Scores, th)
	}

	return domain.GroupReport{
		Name:         name,
		Members:      len(members),
		Distribution: dist,
		Percentages:  Percentages(dist),
		Balance:      BalanceScore(dist),
		Gaps:         AnalyzeGaps(dist),
		Composition:  Composition(profiles, th),
	}
}

// MergeGroups flattens several teams into one member list for
// organization-level analysis. A member that belongs to more than one team
// is counted once, using its first occurrence.
func MergeGroups(teams ...[]domain.MemberScores) []domain.MemberScores {
	seen := make(map[string]struct{})
	merged := make([]domain.MemberScores, 0)
	for _, team := range teams {
		for _, m := range team {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			merged = append(merged, m)
		}
	}
	return merged
}
