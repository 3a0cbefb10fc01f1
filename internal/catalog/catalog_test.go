package catalog

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/roster-optimizer/internal/models"
)

func TestNormalizeDefaults(t *testing.T) {
	n := NewNormalizer(0)

	p := n.Normalize(models.RawPlayer{ID: 11, FirstName: " Ana ", LastName: "Diaz"})

	assert.Equal(t, 11, p.ID)
	assert.Equal(t, "Ana Diaz", p.Name)
	assert.Equal(t, models.PositionUnknown, p.Position)
	assert.Equal(t, models.UnknownTeamName, p.Team.Name)
	assert.Equal(t, models.UnknownTeamAbbreviation, p.Team.Abbreviation)
	assert.Zero(t, p.Price)
	assert.Zero(t, p.AveragePoints)
	assert.Zero(t, p.PlayingProbability)
	assert.Equal(t, models.StatusOut, p.Status, "missing probability means the player is not expected to play")
}

func TestNormalizeFullRecord(t *testing.T) {
	n := NewNormalizer(0)

	p := n.Normalize(models.RawPlayer{
		ID:                   3,
		FirstName:            "Tom",
		LastName:             "Reed",
		Position:             &models.RawPosition{ID: 1, Name: "Guard"},
		Team:                 &models.RawTeam{ID: 9, Name: "Real Madrid", Abbreviation: "RMB"},
		Opponent:             &models.RawTeam{Abbreviation: "BAR"},
		Quotation:            12.4,
		AvgPts:               18,
		IsOnFire:             true,
		ProbabilityOfPlaying: 1.4,
		Popularity:           -0.2,
		Jersey:               "7",
	})

	assert.Equal(t, models.PositionGuard, p.Position)
	assert.Equal(t, "RMB", p.Team.Abbreviation)
	assert.Equal(t, "BAR", p.Opponent)
	assert.Equal(t, 1.0, p.PlayingProbability)
	assert.Equal(t, 0.0, p.Popularity)
	assert.True(t, p.IsHotStreak)
	assert.Equal(t, "7", p.Jersey)
	assert.Equal(t, models.StatusAvailable, p.Status)
}

func TestNormalizeNonFiniteNumbers(t *testing.T) {
	n := NewNormalizer(0)

	var raw models.RawPlayer
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 4,
		"position": {"name": "Center"},
		"quotation": "NaN",
		"avg_pts": "Infinity",
		"probability_of_playing": "-Inf"
	}`), &raw))

	p := n.Normalize(raw)
	assert.Zero(t, p.Price)
	assert.Zero(t, p.AveragePoints)
	assert.Zero(t, p.PlayingProbability)

	direct := n.Normalize(models.RawPlayer{
		ID:                   5,
		Quotation:            models.FlexFloat(math.NaN()),
		AvgPts:               models.FlexFloat(math.Inf(1)),
		ProbabilityOfPlaying: models.FlexFloat(math.NaN()),
		Popularity:           models.FlexFloat(math.Inf(1)),
	})
	assert.Zero(t, direct.Price)
	assert.Zero(t, direct.AveragePoints)
	assert.Zero(t, direct.PlayingProbability)
	assert.Equal(t, 1.0, direct.Popularity)
}

func TestStatus(t *testing.T) {
	n := NewNormalizer(0.5)

	tests := []struct {
		name     string
		player   models.Player
		expected models.AvailabilityStatus
	}{
		{"coach is always available", models.Player{Position: models.PositionHeadCoach, IsInjured: true}, models.StatusAvailable},
		{"injured is out", models.Player{Position: models.PositionGuard, IsInjured: true, PlayingProbability: 1}, models.StatusOut},
		{"zero probability is out", models.Player{Position: models.PositionGuard}, models.StatusOut},
		{"below threshold is doubtful", models.Player{Position: models.PositionGuard, PlayingProbability: 0.3}, models.StatusDoubtful},
		{"at threshold is available", models.Player{Position: models.PositionGuard, PlayingProbability: 0.5}, models.StatusAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Status(tt.player))
		})
	}
}

func samplePlayers() []models.Player {
	return []models.Player{
		{ID: 1, Position: models.PositionGuard, Price: 10, AveragePoints: 12, PlayingProbability: 0.9, Popularity: 0.2, Status: models.StatusAvailable},
		{ID: 2, Position: models.PositionGuard, Price: 14, AveragePoints: 20, PlayingProbability: 1, Popularity: 0.6, IsHotStreak: true, Status: models.StatusAvailable},
		{ID: 3, Position: models.PositionCenter, Price: 8, AveragePoints: 9, IsInjured: true, Status: models.StatusOut},
		{ID: 4, Position: models.PositionGuard, Price: 6, AveragePoints: 15, Status: models.StatusOut, IsInjured: true},
		{ID: 5, Position: models.PositionCenter, Price: 16, AveragePoints: 25, PlayingProbability: 0.8, Popularity: 0.9, Status: models.StatusAvailable},
	}
}

func ids(players []models.Player) []int {
	out := make([]int, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	players := samplePlayers()

	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(Filter(players, models.PlayerFilters{})))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(Filter(players, models.PlayerFilters{Position: "all"})))
	assert.Equal(t, []int{1, 2, 4}, ids(Filter(players, models.PlayerFilters{Position: "Guard"})))
	assert.Equal(t, []int{1, 2}, ids(Filter(players, models.PlayerFilters{Position: "G", OnlyAvailable: true})))
	assert.Equal(t, []int{2}, ids(Filter(players, models.PlayerFilters{OnlyHotStreak: true})))
}

func TestSort(t *testing.T) {
	tests := []struct {
		key      string
		expected []int
	}{
		{"quotation", []int{4, 3, 1, 2, 5}},
		{"-quotation", []int{5, 2, 1, 3, 4}},
		{"-avg_pts", []int{5, 2, 4, 1, 3}},
		{"-popularity", []int{5, 2, 1, 3, 4}},
		{"probability_of_playing", []int{3, 4, 5, 1, 2}},
		{"bogus", []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			players := samplePlayers()
			Sort(players, tt.key)
			assert.Equal(t, tt.expected, ids(players))
		})
	}

	assert.True(t, IsValidSort("-avg_pts"))
	assert.False(t, IsValidSort("salary"))
}

func TestAlternatives(t *testing.T) {
	players := samplePlayers()
	target := players[0]

	alts := Alternatives(players, target)
	assert.Equal(t, []int{2}, ids(alts), "injured guard and the target itself are excluded")

	var many []models.Player
	for i := 1; i <= 8; i++ {
		many = append(many, models.Player{ID: i, Position: models.PositionForward, AveragePoints: float64(i)})
	}
	alts = Alternatives(many, many[0])
	require.Len(t, alts, 5)
	assert.Equal(t, []int{8, 7, 6, 5, 4}, ids(alts))
}
