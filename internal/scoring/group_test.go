package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-rolecall/internal/domain"
)

func TestAggregate(t *testing.T) {
	a := domain.RoleScores{70, 0, 0, 0, 0}
	b := domain.RoleScores{0, 70, 0, 0, 0}
	c := domain.RoleScores{1, 2, 3, 4, 5}

	assert.Equal(t, domain.RoleScores{71, 72, 3, 4, 5}, Aggregate([]domain.RoleScores{a, b, c}))
	assert.Equal(t, Aggregate([]domain.RoleScores{a, b, c}), Aggregate([]domain.RoleScores{c, a, b}))
	assert.Equal(t, domain.RoleScores{}, Aggregate(nil))
	assert.Equal(t, Aggregate([]domain.RoleScores{a, c}), SumAggregator.Aggregate([]domain.RoleScores{c, a}))
}

func TestComposition(t *testing.T) {
	th := DefaultClassifierThresholds()
	profiles := []domain.Profile{
		Classify(domain.RoleScores{20, 5, 0, 0, 0}, th),
		Classify(domain.RoleScores{10, 9.5, 0, 0, 0}, th),
		Classify(domain.RoleScores{0, 0, 0, 8, 2}, th),
		Classify(domain.RoleScores{}, th),
	}

	comp := Composition(profiles, th)

	assert.Equal(t, [domain.RoleCount]int{2, 1, 0, 1, 0}, comp.Primary)
	assert.Equal(t, [domain.RoleCount]int{0, 1, 0, 0, 1}, comp.Secondary)
	assert.Equal(t, 1, comp.Unclassified)
}

func TestAnalyzeGroup(t *testing.T) {
	members := []domain.MemberScores{
		member("a", domain.RoleScores{domain.RoleApostle: 70}),
		member("b", domain.RoleScores{domain.RoleProphet: 70}),
	}

	report := AnalyzeGroup("core", members, DefaultClassifierThresholds())

	assert.Equal(t, "core", report.Name)
	assert.Equal(t, 2, report.Members)
	assert.Equal(t, domain.RoleScores{70, 70, 0, 0, 0}, report.Distribution)
	assert.Equal(t, domain.RoleScores{50, 50, 0, 0, 0}, report.Percentages)
	assert.Equal(t, 40, report.Balance)
	assert.Len(t, report.Gaps, domain.RoleCount)
	assert.Equal(t, [domain.RoleCount]int{1, 1, 0, 0, 0}, report.Composition.Primary)

	empty := AnalyzeGroup("empty", nil, DefaultClassifierThresholds())
	assert.Zero(t, empty.Members)
	assert.Zero(t, empty.Balance)
	assert.True(t, empty.Distribution.IsZero())
}

func TestMergeGroups(t *testing.T) {
	teamA := []domain.MemberScores{
		member("ana", domain.RoleScores{5}),
		member("ben", domain.RoleScores{0, 5}),
	}
	teamB := []domain.MemberScores{
		member("ben", domain.RoleScores{0, 0, 9}),
		member("cy", domain.RoleScores{0, 0, 0, 5}),
	}

	merged := MergeGroups(teamA, teamB)

	ids := make([]string, len(merged))
	for i, m := range merged {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"ana", "ben", "cy"}, ids)
	assert.Equal(t, domain.RoleScores{0, 5}, merged[1].Scores, "first occurrence wins")
	assert.Empty(t, MergeGroups())
}
