package optimizer

import (
	"math"

	"github.com/jstittsworth/roster-optimizer/internal/models"
)

// DefaultUpgradeEpsilon stops the upgrade pass once less than half a credit
// is left to spend.
const DefaultUpgradeEpsilon = 0.5

type swap struct {
	index       int
	replacement models.Player
}

// findSwap scans roster members in order and returns the best-scoring
// upgrade for the first member that has any. An upgrade costs strictly more,
// fits the remaining budget, scores strictly higher and keeps the team cap.
// This is a local search; it does not look for the globally best swap.
func findSwap(state *rosterState, pools map[models.Position][]models.Player, scorer Scorer, rules Rules, remaining float64) (swap, bool) {
	for idx, member := range state.players {
		teams := state.teamsWithout(member)
		memberScore := scorer.ContextScore(member, teams)

		var (
			best      models.Player
			bestScore float64
			found     bool
		)

		for _, candidate := range pools[member.Position] {
			if state.selected[candidate.ID] {
				continue
			}
			if candidate.Price <= member.Price {
				continue
			}
			if candidate.Price > member.Price+remaining+budgetTolerance {
				continue
			}
			if teams[candidate.TeamKey()] >= rules.TeamCap {
				continue
			}
			score := scorer.ContextScore(candidate, teams)
			if score <= memberScore {
				continue
			}
			if !found || betterUpgrade(candidate, score, best, bestScore) {
				best, bestScore, found = candidate, score, true
			}
		}

		if found {
			return swap{index: idx, replacement: best}, true
		}
	}
	return swap{}, false
}

func betterUpgrade(p models.Player, score float64, cur models.Player, curScore float64) bool {
	if score != curScore {
		return score > curScore
	}
	if p.Price != cur.Price {
		return p.Price < cur.Price
	}
	return p.ID < cur.ID
}

// upgradeRoster applies one improving swap at a time until the remaining
// budget drops to epsilon or no swap exists. It returns the spend after each
// applied swap. Every swap strictly raises spend, so the loop is finite; the
// iteration ceiling only guards against a broken invariant.
func upgradeRoster(state *rosterState, pools map[models.Position][]models.Player, scorer Scorer, rules Rules, budget, epsilon float64) []float64 {
	candidates := 0
	for _, p := range pools {
		candidates += len(p)
	}
	ceiling := len(state.players)*candidates + 1

	var history []float64
	for i := 0; i < ceiling; i++ {
		remaining := budget - state.spent
		if remaining <= epsilon {
			break
		}
		next, ok := findSwap(state, pools, scorer, rules, remaining)
		if !ok {
			break
		}
		state.replace(next.index, next.replacement)
		history = append(history, state.spent)
	}
	return history
}

// coachReserve is the price of the cheapest coach that could still join,
// held back from upgrade spending so a coach stays affordable.
func coachReserve(pools map[models.Position][]models.Player, rules Rules) float64 {
	if rules.Quotas[models.PositionHeadCoach] == 0 {
		return 0
	}
	cheapest := math.Inf(1)
	for _, c := range pools[models.PositionHeadCoach] {
		if c.Price <= rules.TotalBudget && c.Price < cheapest {
			cheapest = c.Price
		}
	}
	if math.IsInf(cheapest, 1) {
		return 0
	}
	return cheapest
}

// attachCoach adds the highest-scoring affordable coach that keeps the team
// cap. No affordable coach is not a failure.
func attachCoach(state *rosterState, pools map[models.Position][]models.Player, scorer Scorer, rules Rules) bool {
	if rules.Quotas[models.PositionHeadCoach] == 0 {
		return false
	}
	remaining := rules.TotalBudget - state.spent

	var (
		best      models.Player
		bestScore float64
		found     bool
	)
	for _, c := range pools[models.PositionHeadCoach] {
		if state.selected[c.ID] || c.Price > remaining+budgetTolerance {
			continue
		}
		if state.teams[c.TeamKey()] >= rules.TeamCap {
			continue
		}
		score := scorer.Score(c)
		if !found || betterUpgrade(c, score, best, bestScore) {
			best, bestScore, found = c, score, true
		}
	}
	if !found {
		return false
	}
	state.setCoach(best)
	return true
}
