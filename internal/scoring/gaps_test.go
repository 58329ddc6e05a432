package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-rolecall/internal/domain"
)

func TestAnalyzeGaps(t *testing.T) {
	t.Run("two roles split", func(t *testing.T) {
		gaps := AnalyzeGaps(domain.RoleScores{70, 70, 0, 0, 0})
		require.Len(t, gaps, domain.RoleCount)

		for i, r := range domain.AllRoles() {
			assert.Equal(t, r, gaps[i].Role, "entries follow priority order")
		}
		for _, g := range gaps[:2] {
			assert.InDelta(t, -30.0, g.PercentageGap, 1e-9)
			assert.Equal(t, domain.GapBalanced, g.Status)
		}
		for _, g := range gaps[2:] {
			assert.InDelta(t, 20.0, g.PercentageGap, 1e-9)
			assert.Equal(t, domain.GapSevere, g.Status)
		}
	})

	t.Run("zero total reports every role missing", func(t *testing.T) {
		for _, g := range AnalyzeGaps(domain.RoleScores{}) {
			assert.Equal(t, IdealPercentage, g.PercentageGap)
			assert.Equal(t, domain.GapSevere, g.Status)
		}
	})

	t.Run("even distribution", func(t *testing.T) {
		for _, g := range AnalyzeGaps(domain.RoleScores{3, 3, 3, 3, 3}) {
			assert.InDelta(t, 0.0, g.PercentageGap, 1e-9)
			assert.Equal(t, domain.GapBalanced, g.Status)
		}
	})

	t.Run("gaps sum to zero", func(t *testing.T) {
		var sum float64
		for _, g := range AnalyzeGaps(domain.RoleScores{9, 1, 4, 0, 6}) {
			sum += g.PercentageGap
		}
		assert.InDelta(t, 0.0, sum, 1e-9)
	})
}

func TestGapStatusFor(t *testing.T) {
	tests := []struct {
		gap  float64
		want domain.GapStatus
	}{
		{20, domain.GapSevere},
		{10.01, domain.GapSevere},
		{10, domain.GapModerate},
		{5.01, domain.GapModerate},
		{5, domain.GapBalanced},
		{0, domain.GapBalanced},
		{-30, domain.GapBalanced},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GapStatusFor(tt.gap), "gap %v", tt.gap)
	}
}
