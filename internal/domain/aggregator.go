package domain

// Aggregator combines member role-score vectors into a single group role
// distribution. Implementations must be pure and order-independent: any
// permutation of members yields the same distribution, and an empty slice
// yields the all-zero distribution rather than an error.
//
// Example:
//
//	dist := aggregator.Aggregate([]RoleScores{alice, bob})
type Aggregator interface {
	Aggregate(members []RoleScores) RoleScores
}

// AggregatorFunc adapts an ordinary function to the Aggregator interface.
type AggregatorFunc func(members []RoleScores) RoleScores

// Aggregate calls f(members).
func (f AggregatorFunc) Aggregate(members []RoleScores) RoleScores { return f(members) }
