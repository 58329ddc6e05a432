package scoring

import (
	"cmp"
	"math"
	"slices"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// ComplementaryThreshold is the distance above which two respondents are
// treated as highly complementary.
const ComplementaryThreshold = 0.4

// Distance returns the dissimilarity of two role-score vectors in [0, 1].
//
// Each vector is first divided by its own highest score so that profiles
// are compared by shape, independent of how many questions were answered
// and of the question bank's scale. The result is the mean of the five
// per-role absolute differences. A zero vector stays zero.
func Distance(a, b domain.RoleScores) float64 {
	return meanAbsDiff(scaleToPeak(a), scaleToPeak(b))
}

// RawDistance is the mean per-role absolute difference of unnormalized
// vectors. Its scale follows the question bank (0-70 per role for the
// reference bank) so it must not be compared with ComplementaryThreshold.
func RawDistance(a, b domain.RoleScores) float64 {
	return meanAbsDiff(a, b)
}

// IsComplementary reports whether a Distance result exceeds the threshold.
func IsComplementary(distance, threshold float64) bool {
	return distance > threshold
}

func scaleToPeak(s domain.RoleScores) domain.RoleScores {
	peak := slices.Max(s[:])
	if peak <= 0 {
		return domain.RoleScores{}
	}
	for i := range s {
		s[i] /= peak
	}
	return s
}

func meanAbsDiff(a, b domain.RoleScores) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum / domain.RoleCount
}

// RecommendPairings returns every pair of members whose Distance exceeds
// threshold, most complementary first. Within a pair the IDs are ordered
// lexically and ties in distance are broken by ID, so the result does not
// depend on member order.
func RecommendPairings(members []domain.MemberScores, threshold float64) []domain.Pairing {
	pairings := make([]domain.Pairing, 0)
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			d := Distance(members[i].Scores, members[j].Scores)
			if !IsComplementary(d, threshold) {
				continue
			}
			first, second := members[i].ID, members[j].ID
			if second < first {
				first, second = second, first
			}
			pairings = append(pairings, domain.Pairing{First: first, Second: second, Distance: d})
		}
	}

	slices.SortFunc(pairings, func(x, y domain.Pairing) int {
		if c := cmp.Compare(y.Distance, x.Distance); c != 0 {
			return c
		}
		if c := cmp.Compare(x.First, y.First); c != 0 {
			return c
		}
		return cmp.Compare(x.Second, y.Second)
	})
	return pairings
}
