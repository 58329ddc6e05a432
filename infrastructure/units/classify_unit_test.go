package units

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/scoring"
)

func TestNewClassifyUnit(t *testing.T) {
	tests := []struct {
		name     string
		unitName string
		config   ClassifyConfig
		errorMsg string
	}{
		{name: "defaults", unitName: "cls", config: DefaultClassifyConfig()},
		{name: "empty unit name", unitName: "", config: DefaultClassifyConfig(), errorMsg: "unit name cannot be empty"},
		{
			name:     "tie out of range",
			unitName: "cls",
			config: ClassifyConfig{Thresholds: scoring.ClassifierThresholds{
				Tie: 2, SpecializedDominance: 0.25, SpecializedSpread: 0.4, BalancedSpread: 0.15,
			}},
			errorMsg: "lte",
		},
		{
			name:     "balanced spread above specialized spread",
			unitName: "cls",
			config: ClassifyConfig{Thresholds: scoring.ClassifierThresholds{
				Tie: 0.1, SpecializedDominance: 0.25, SpecializedSpread: 0.4, BalancedSpread: 0.5,
			}},
			errorMsg: "ltefield",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := NewClassifyUnit(tt.unitName, tt.config)
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, unit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.config, unit.config)
		})
	}
}

func TestClassifyUnit_Execute(t *testing.T) {
	unit, err := NewClassifyUnit("cls", DefaultClassifyConfig())
	require.NoError(t, err)

	state := domain.With(domain.NewState(), domain.KeyRoleScores, domain.RoleScores{domain.RoleHerder: 20, domain.RoleTeacher: 5})
	out, err := unit.Execute(context.Background(), state)
	require.NoError(t, err)

	profile, ok := domain.Get(out, domain.KeyProfile)
	require.True(t, ok)
	require.NotNil(t, profile.PrimaryRole)
	assert.Equal(t, domain.RoleHerder, *profile.PrimaryRole)
	assert.Equal(t, domain.ProfileSpecialized, profile.ProfileType)

	zero := domain.With(domain.NewState(), domain.KeyRoleScores, domain.RoleScores{})
	out, err = unit.Execute(context.Background(), zero)
	require.NoError(t, err)
	profile, _ = domain.Get(out, domain.KeyProfile)
	assert.Nil(t, profile.PrimaryRole)

	_, err = unit.Execute(context.Background(), domain.NewState())
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestCreateClassifyUnit(t *testing.T) {
	unit, err := CreateClassifyUnit("cls", map[string]any{"tie": 0.05})
	require.NoError(t, err)
	assert.Equal(t, 0.05, unit.config.Thresholds.Tie)
	assert.Equal(t, scoring.DefaultSpecializedSpread, unit.config.Thresholds.SpecializedSpread,
		"omitted fields keep defaults")

	_, err = CreateClassifyUnit("cls", map[string]any{"balanced_spread": 0.9})
	assert.Error(t, err)
}
