package scoring

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-rolecall/internal/domain"
)

func TestRank(t *testing.T) {
	tests := []struct {
		name   string
		scores domain.RoleScores
		want   []domain.Role
	}{
		{
			name:   "descending",
			scores: domain.RoleScores{1, 2, 3, 4, 5},
			want: []domain.Role{
				domain.RoleTeacher, domain.RoleHerder, domain.RoleEvangelist,
				domain.RoleProphet, domain.RoleApostle,
			},
		},
		{
			name:   "ties keep priority order",
			scores: domain.RoleScores{0, 7, 0, 7, 0},
			want: []domain.Role{
				domain.RoleProphet, domain.RoleHerder, domain.RoleApostle,
				domain.RoleEvangelist, domain.RoleTeacher,
			},
		},
		{
			name:   "all zero",
			scores: domain.RoleScores{},
			want:   domain.AllRoles(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rank(tt.scores))
		})
	}
}

func TestClassify(t *testing.T) {
	th := DefaultClassifierThresholds()

	tests := []struct {
		name          string
		scores        domain.RoleScores
		wantPrimary   domain.Role
		wantSecondary domain.Role
		wantRatio     float64
		wantType      domain.ProfileType
	}{
		{
			name:          "single role",
			scores:        domain.RoleScores{domain.RoleApostle: 10},
			wantPrimary:   domain.RoleApostle,
			wantSecondary: domain.RoleProphet,
			wantRatio:     1,
			wantType:      domain.ProfileSpecialized,
		},
		{
			name:          "clear lead",
			scores:        domain.RoleScores{domain.RoleHerder: 20, domain.RoleTeacher: 10, domain.RoleProphet: 4},
			wantPrimary:   domain.RoleHerder,
			wantSecondary: domain.RoleTeacher,
			wantRatio:     0.5,
			wantType:      domain.ProfileSpecialized,
		},
		{
			name:          "lead without specialization",
			scores:        domain.RoleScores{10, 8, 5, 0, 0},
			wantPrimary:   domain.RoleApostle,
			wantSecondary: domain.RoleProphet,
			wantRatio:     0.2,
			wantType:      domain.ProfileModerate,
		},
		{
			name:          "top three close",
			scores:        domain.RoleScores{0, 0, 20, 19, 18},
			wantPrimary:   domain.RoleEvangelist,
			wantSecondary: domain.RoleHerder,
			wantRatio:     0.05,
			wantType:      domain.ProfileBalanced,
		},
		{
			name:          "exact tie resolved by priority",
			scores:        domain.RoleScores{domain.RoleProphet: 6, domain.RoleTeacher: 6},
			wantPrimary:   domain.RoleProphet,
			wantSecondary: domain.RoleTeacher,
			wantRatio:     0,
			wantType:      domain.ProfileModerate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Classify(tt.scores, th)
			require.NotNil(t, p.PrimaryRole)
			require.NotNil(t, p.SecondaryRole)
			assert.Equal(t, tt.wantPrimary, *p.PrimaryRole)
			assert.Equal(t, tt.wantSecondary, *p.SecondaryRole)
			assert.InDelta(t, tt.wantRatio, p.DominanceRatio, 1e-9)
			assert.Equal(t, tt.wantType, p.ProfileType)
			assert.Len(t, p.Ranking, domain.RoleCount)
			assert.GreaterOrEqual(t, p.DominanceRatio, 0.0)
			assert.LessOrEqual(t, p.DominanceRatio, 1.0)
		})
	}
}

func TestClassifyZeroVector(t *testing.T) {
	p := Classify(domain.RoleScores{}, DefaultClassifierThresholds())
	assert.Nil(t, p.PrimaryRole)
	assert.Nil(t, p.SecondaryRole)
	assert.Zero(t, p.DominanceRatio)
	assert.Equal(t, domain.ProfileBalanced, p.ProfileType)
	assert.Equal(t, domain.AllRoles(), p.Ranking)
}

func TestClassifierThresholdsTied(t *testing.T) {
	th := DefaultClassifierThresholds()

	assert.True(t, th.Tied(Classify(domain.RoleScores{10, 9.5, 0, 0, 0}, th)))
	assert.False(t, th.Tied(Classify(domain.RoleScores{10, 9, 0, 0, 0}, th)), "ratio 0.10 is not below the threshold")
	assert.False(t, th.Tied(Classify(domain.RoleScores{}, th)))
}

func TestClassifierThresholdsValidation(t *testing.T) {
	validate := validator.New()

	require.NoError(t, validate.Struct(DefaultClassifierThresholds()))

	bad := DefaultClassifierThresholds()
	bad.BalancedSpread = 0.9
	assert.Error(t, validate.Struct(bad))

	bad = DefaultClassifierThresholds()
	bad.Tie = 1.5
	assert.Error(t, validate.Struct(bad))
}
