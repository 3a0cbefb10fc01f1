package optimizer

import (
	"math"

	"github.com/jstittsworth/roster-optimizer/internal/models"
)

const (
	efficiencyWeight  = 10.0
	performanceWeight = 2.0
	hotStreakBoost    = 1.5
	reliabilityWeight = 10.0
	// balancePenalty shrinks a player's score per teammate already rostered
	// when BalanceTeams is set.
	balancePenalty = 0.1

	legacyCoachWeight   = 5.0
	fallbackPriceWeight = 2.0
	legacyPointsWeight  = 2.0
)

// Scorer ranks normalized players under a set of generation preferences.
type Scorer struct {
	prefs models.GenerationPreferences
}

func NewScorer(prefs models.GenerationPreferences) Scorer {
	return Scorer{prefs: prefs}
}

// Efficiency is points per credit scaled by ten. Players without a price
// score zero here; they are excluded by IsEligible anyway.
func Efficiency(p models.Player) float64 {
	if p.Price <= 0 {
		return 0
	}
	return p.AveragePoints / p.Price * efficiencyWeight
}

func (s Scorer) Performance(p models.Player) float64 {
	score := p.AveragePoints * performanceWeight
	if p.IsHotStreak && s.prefs.PrioritizeHotStreak {
		score *= hotStreakBoost
	}
	return score
}

func Reliability(p models.Player) float64 {
	return p.PlayingProbability * reliabilityWeight
}

// Score is efficiency plus performance, plus reliability when
// MaximizeProbability is set. Players without stats (coaches, rookies) fall
// back to twice their price so they still rank above zero.
func (s Scorer) Score(p models.Player) float64 {
	if p.AveragePoints <= 0 {
		return roundTo(math.Max(0, p.Price*fallbackPriceWeight), 1)
	}
	score := Efficiency(p) + s.Performance(p)
	if s.prefs.MaximizeProbability {
		score += Reliability(p)
	}
	return math.Max(0, score)
}

// ContextScore applies the team balance penalty given how many players each
// team already has on the roster (the player being scored must not be
// counted in teamCounts).
func (s Scorer) ContextScore(p models.Player, teamCounts map[string]int) float64 {
	score := s.Score(p)
	if !s.prefs.BalanceTeams || teamCounts == nil {
		return score
	}
	return score / (1 + balancePenalty*float64(teamCounts[p.TeamKey()]))
}

// LegacyScore scores a raw upstream record: coaches get five times their
// price, everyone else twice their average plus fantasy points, falling back
// to twice the price when both are zero. Rounded to one decimal.
func LegacyScore(raw models.RawPlayer) float64 {
	price := float64(raw.Quotation)
	if raw.Position != nil && models.ParsePosition(raw.Position.Name).IsCoach() {
		return math.Max(0, price*legacyCoachWeight)
	}

	score := float64(raw.AvgPts) * legacyPointsWeight
	if fp := float64(raw.FantasyPoints); fp > 0 {
		score += fp
	}
	if score == 0 {
		score = price * fallbackPriceWeight
	}
	return math.Max(0, roundTo(score, 1))
}

// IsEligible gates optimizer candidates. Coaches only need a finite price.
func IsEligible(p models.Player) bool {
	if !(p.Price > 0) || math.IsInf(p.Price, 0) {
		return false
	}
	if p.IsCoach() {
		return true
	}
	return p.Position.IsKnown() &&
		p.Status == models.StatusAvailable &&
		!p.IsInjured &&
		p.PlayingProbability > 0
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
