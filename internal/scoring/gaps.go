package scoring

import "github.com/ahrav/go-rolecall/internal/domain"

// Gap severity thresholds in percentage points below the ideal share.
const (
	SevereGap   = 10.0
	ModerateGap = 5.0
)

// AnalyzeGaps compares each role's share of the distribution with the
// ideal even share. Entries follow role priority order. Gaps are not
// clamped: over-represented roles get negative gaps and are reported as
// balanced. A zero total yields the full ideal gap for every role.
func AnalyzeGaps(dist domain.RoleScores) []domain.GapEntry {
	pct := Percentages(dist)
	gaps := make([]domain.GapEntry, 0, domain.RoleCount)
	for _, r := range domain.AllRoles() {
		gap := IdealPercentage - pct.Get(r)
		gaps = append(gaps, domain.GapEntry{
			Role:          r,
			PercentageGap: gap,
			Status:        GapStatusFor(gap),
		})
	}
	return gaps
}

// GapStatusFor classifies a percentage gap.
func GapStatusFor(gap float64) domain.GapStatus {
	switch {
	case gap > SevereGap:
		return domain.GapSevere
	case gap > ModerateGap:
		return domain.GapModerate
	default:
		return domain.GapBalanced
	}
}
