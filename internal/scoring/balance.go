package scoring

import (
	"math"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// IdealPercentage is the even share every role would hold in a perfectly
// balanced distribution.
const IdealPercentage = 100.0 / domain.RoleCount

// varianceScale caps the normalized variance. One role at 100% gives a
// variance of 1600, so anything at or beyond the cap scores 0. The value is
// fixed for comparability across teams and over time.
const varianceScale = 1000.0

// BalanceScore converts a distribution into a 0-100 evenness score: 100
// for equal positive scores in every role, 0 for a zero total or a
// distribution concentrated in one role.
func BalanceScore(dist domain.RoleScores) int {
	if dist.Total() == 0 {
		return 0
	}

	var sum float64
	for _, pct := range Percentages(dist) {
		d := pct - IdealPercentage
		sum += d * d
	}
	variance := sum / domain.RoleCount

	normalized := math.Min(variance/varianceScale, 1)
	return int(math.Round((1 - normalized) * 100))
}
