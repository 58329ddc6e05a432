package scoring

import "github.com/ahrav/go-rolecall/internal/domain"

// SumAggregator is the domain.Aggregator used for teams and organizations.
var SumAggregator domain.Aggregator = domain.AggregatorFunc(Aggregate)

// Aggregate sums member vectors elementwise into a group distribution.
// An empty input yields the all-zero distribution.
func Aggregate(members []domain.RoleScores) domain.RoleScores {
	var dist domain.RoleScores
	for _, m := range members {
		dist = dist.Plus(m)
	}
	return dist
}

// AggregateMembers is Aggregate over identified member vectors.
func AggregateMembers(members []domain.MemberScores) domain.RoleScores {
	vectors := make([]domain.RoleScores, len(members))
	for i, m := range members {
		vectors[i] = m.Scores
	}
	return Aggregate(vectors)
}

// Percentages returns each role's share of the distribution total in
// percent. A zero total yields all zeros.
func Percentages(dist domain.RoleScores) domain.RoleScores {
	var pct domain.RoleScores
	total := dist.Total()
	if total == 0 {
		return pct
	}
	for i, v := range dist {
		pct[i] = v / total * 100
	}
	return pct
}
