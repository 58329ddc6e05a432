package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-rolecall/internal/domain"
)

func TestPercentages(t *testing.T) {
	assert.Equal(t, domain.RoleScores{50, 50, 0, 0, 0}, Percentages(domain.RoleScores{70, 70, 0, 0, 0}))
	assert.Equal(t, domain.RoleScores{}, Percentages(domain.RoleScores{}))

	pct := Percentages(domain.RoleScores{3, 1, 7, 2, 9})
	assert.InDelta(t, 100.0, pct.Total(), 1e-9)
}

func TestBalanceScore(t *testing.T) {
	tests := []struct {
		name string
		dist domain.RoleScores
		want int
	}{
		{"perfectly even", domain.RoleScores{14, 14, 14, 14, 14}, 100},
		{"even small values", domain.RoleScores{1, 1, 1, 1, 1}, 100},
		{"single role", domain.RoleScores{0, 0, 0, 42, 0}, 0},
		{"two roles split", domain.RoleScores{70, 70, 0, 0, 0}, 40},
		{"zero total", domain.RoleScores{}, 0},
		// Percentages 40,15,15,15,15: variance (400+4*25)/5 = 100.
		{"one role leads", domain.RoleScores{40, 15, 15, 15, 15}, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BalanceScore(tt.dist))
		})
	}
}

func TestBalanceScoreBounds(t *testing.T) {
	dists := []domain.RoleScores{
		{1, 0, 0, 0, 0},
		{1, 2, 3, 4, 5},
		{100, 1, 1, 1, 1},
		{0, 0, 7, 7, 0},
		{0.5, 0.25, 0, 0, 0.25},
	}
	for _, d := range dists {
		score := BalanceScore(d)
		assert.GreaterOrEqual(t, score, 0, "%v", d)
		assert.LessOrEqual(t, score, 100, "%v", d)
	}
}

func TestBalanceScoreScaleInvariant(t *testing.T) {
	d := domain.RoleScores{12, 3, 8, 0, 5}
	var scaled domain.RoleScores
	for i, v := range d {
		scaled[i] = v * 7
	}
	assert.Equal(t, BalanceScore(d), BalanceScore(scaled))
}
