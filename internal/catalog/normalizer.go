package catalog

import (
	"math"
	"strings"

	"github.com/jstittsworth/roster-optimizer/internal/models"
)

// Normalizer converts upstream records into Players. Malformed or missing
// fields fall back to defaults; normalization never fails.
type Normalizer struct {
	// MinPlayingProbability marks players below it (but above zero) as doubtful.
	MinPlayingProbability float64
}

func NewNormalizer(minPlayingProbability float64) *Normalizer {
	return &Normalizer{MinPlayingProbability: minPlayingProbability}
}

func (n *Normalizer) Normalize(raw models.RawPlayer) models.Player {
	position := models.PositionUnknown
	if raw.Position != nil {
		position = models.ParsePosition(raw.Position.Name)
	}

	team := models.Team{Name: models.UnknownTeamName, Abbreviation: models.UnknownTeamAbbreviation}
	if raw.Team != nil {
		team.ID = raw.Team.ID
		if name := strings.TrimSpace(raw.Team.Name); name != "" {
			team.Name = name
		}
		if abbr := strings.TrimSpace(raw.Team.Abbreviation); abbr != "" {
			team.Abbreviation = abbr
		}
	}

	var opponent string
	if raw.Opponent != nil {
		opponent = strings.TrimSpace(raw.Opponent.Abbreviation)
	}

	player := models.Player{
		ID:                 raw.ID,
		FirstName:          strings.TrimSpace(raw.FirstName),
		LastName:           strings.TrimSpace(raw.LastName),
		Position:           position,
		Team:               team,
		Opponent:           opponent,
		Jersey:             strings.TrimSpace(string(raw.Jersey)),
		Price:              nonNegative(float64(raw.Quotation)),
		AveragePoints:      nonNegative(float64(raw.AvgPts)),
		FantasyPoints:      nonNegative(float64(raw.FantasyPoints)),
		IsInjured:          raw.IsInjured,
		IsHotStreak:        raw.IsOnFire,
		StartedFromBench:   raw.StartedFromBench,
		PlayingProbability: clampUnit(float64(raw.ProbabilityOfPlaying)),
		Popularity:         clampUnit(float64(raw.Popularity)),
	}
	player.Name = strings.TrimSpace(player.FirstName + " " + player.LastName)
	player.Status = n.Status(player)

	return player
}

// NormalizeAll keeps input order.
func (n *Normalizer) NormalizeAll(raws []models.RawPlayer) []models.Player {
	players := make([]models.Player, 0, len(raws))
	for _, raw := range raws {
		players = append(players, n.Normalize(raw))
	}
	return players
}

// Status derives availability. Coaches are always available.
func (n *Normalizer) Status(p models.Player) models.AvailabilityStatus {
	if p.IsCoach() {
		return models.StatusAvailable
	}
	if p.IsInjured || p.PlayingProbability <= 0 {
		return models.StatusOut
	}
	if p.PlayingProbability < n.MinPlayingProbability {
		return models.StatusDoubtful
	}
	return models.StatusAvailable
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0, math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}
