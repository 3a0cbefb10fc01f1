package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/roster-optimizer/internal/models"
)

func TestParseQuotas(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		expected  map[string]int
		expectErr bool
	}{
		{
			name:     "four positions with coach",
			raw:      "Center:2,Forward:4,Guard:4,Head Coach:1",
			expected: map[string]int{"Center": 2, "Forward": 4, "Guard": 4, "Head Coach": 1},
		},
		{
			name:     "three position scheme with whitespace",
			raw:      " Center : 2 , Forward:4,Guard:4 ",
			expected: map[string]int{"Center": 2, "Forward": 4, "Guard": 4},
		},
		{name: "missing separator", raw: "Center2", expectErr: true},
		{name: "negative count", raw: "Center:-1", expectErr: true},
		{name: "empty", raw: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotas, err := ParseQuotas(tt.raw)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, quotas)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 100.0, cfg.DefaultBudget)
	assert.Equal(t, 90.0, cfg.MinBudget)
	assert.Equal(t, 110.0, cfg.MaxBudget)
	assert.Equal(t, 3, cfg.TeamPlayerLimit)
	assert.Equal(t, 0.5, cfg.UpgradeEpsilon)
	assert.Equal(t, 1, cfg.PositionQuotas["Head Coach"])
	assert.Equal(t, 19, cfg.UpstreamLeagueID)
	assert.Len(t, cfg.CorsOrigins, 2)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Setenv("TEAM_PLAYER_LIMIT", "2")
	t.Setenv("POSITION_QUOTAS", "Center:2,Forward:4,Guard:4")
	t.Setenv("ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.TeamPlayerLimit)
	assert.NotContains(t, cfg.PositionQuotas, "Head Coach")
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigRejectsUnknownQuotaPosition(t *testing.T) {
	viper.Reset()
	t.Setenv("POSITION_QUOTAS", "Center:2,Forward:4,Gaurd:4")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnknownPosition)
	assert.Contains(t, err.Error(), "Gaurd")
}

func TestValidateRejectsDuplicateQuotaPosition(t *testing.T) {
	cfg := &Config{
		MinBudget:       90,
		MaxBudget:       110,
		DefaultBudget:   100,
		TeamPlayerLimit: 3,
		PositionQuotas:  map[string]int{"C": 1, "Center": 2, "Guard": 4},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadBudgetRange(t *testing.T) {
	cfg := &Config{MinBudget: 100, MaxBudget: 90, DefaultBudget: 95, TeamPlayerLimit: 3}
	assert.Error(t, cfg.Validate())

	cfg = &Config{MinBudget: 90, MaxBudget: 110, DefaultBudget: 120, TeamPlayerLimit: 3}
	assert.Error(t, cfg.Validate())

	cfg = &Config{MinBudget: 90, MaxBudget: 110, DefaultBudget: 100, TeamPlayerLimit: 3}
	assert.NoError(t, cfg.Validate())
}
