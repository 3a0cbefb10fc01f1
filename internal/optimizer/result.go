package optimizer

import (
	"github.com/shopspring/decimal"

	"github.com/jstittsworth/roster-optimizer/internal/models"
)

// Stats summarizes a complete roster, coach included.
type Stats struct {
	TotalCost          float64 `json:"total_cost"`
	AverageScore       float64 `json:"average_score"`
	HotStreakCount     int     `json:"hot_streak_count"`
	AverageProbability float64 `json:"average_probability"`
	TeamBalance        int     `json:"team_balance"`
}

type Result struct {
	OptimizationID  string          `json:"optimization_id"`
	Players         []models.Player `json:"players"`
	Coach           *models.Player  `json:"coach,omitempty"`
	IsComplete      bool            `json:"is_complete"`
	TotalBudget     float64         `json:"total_budget"`
	TotalSpend      float64         `json:"total_spend"`
	RemainingBudget float64         `json:"remaining_budget"`
	Swaps           int             `json:"swaps"`
	Reason          string          `json:"reason,omitempty"`
	Stats           *Stats          `json:"stats,omitempty"`
}

// Roster returns the players followed by the coach, if any.
func (r *Result) Roster() []models.Player {
	out := make([]models.Player, 0, len(r.Players)+1)
	out = append(out, r.Players...)
	if r.Coach != nil {
		out = append(out, *r.Coach)
	}
	return out
}

// RoundCredits rounds a credit amount to two decimals.
func RoundCredits(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// sumCredits adds prices as decimals so rounding does not accumulate drift.
func sumCredits(players []models.Player) decimal.Decimal {
	total := decimal.Zero
	for _, p := range players {
		total = total.Add(decimal.NewFromFloat(p.Price))
	}
	return total
}

// assembleResult packages the final state. Incomplete results keep the
// partial spend but carry no stats.
func assembleResult(id string, state *rosterState, rules Rules, scorer Scorer, complete bool, reason string, swaps int) *Result {
	spend := sumCredits(state.all())
	remaining := decimal.NewFromFloat(rules.TotalBudget).Sub(spend)
	if complete && remaining.IsNegative() {
		remaining = decimal.Zero
	}

	players := make([]models.Player, len(state.players))
	copy(players, state.players)

	result := &Result{
		OptimizationID:  id,
		Players:         players,
		IsComplete:      complete,
		TotalBudget:     RoundCredits(rules.TotalBudget),
		TotalSpend:      spend.Round(2).InexactFloat64(),
		RemainingBudget: remaining.Round(2).InexactFloat64(),
		Swaps:           swaps,
		Reason:          reason,
	}
	if state.coach != nil {
		coach := *state.coach
		result.Coach = &coach
	}
	if complete {
		result.Stats = computeStats(result.Roster(), scorer)
	}
	return result
}

func computeStats(roster []models.Player, scorer Scorer) *Stats {
	stats := &Stats{}
	if len(roster) == 0 {
		return stats
	}

	teams := make(map[string]struct{})
	var scoreSum, probSum float64
	for _, p := range roster {
		scoreSum += scorer.Score(p)
		probSum += p.PlayingProbability
		if p.IsHotStreak {
			stats.HotStreakCount++
		}
		teams[p.TeamKey()] = struct{}{}
	}

	n := float64(len(roster))
	stats.TotalCost = sumCredits(roster).Round(2).InexactFloat64()
	stats.AverageScore = RoundCredits(scoreSum / n)
	stats.AverageProbability = RoundCredits(probSum / n)
	stats.TeamBalance = len(teams)
	return stats
}
