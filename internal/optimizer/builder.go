package optimizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jstittsworth/roster-optimizer/internal/models"
)

// rosterState tracks a roster under construction.
type rosterState struct {
	players   []models.Player
	coach     *models.Player
	selected  map[int]bool
	teams     map[string]int
	positions map[models.Position]int
	spent     float64
}

func newRosterState() *rosterState {
	return &rosterState{
		selected:  make(map[int]bool),
		teams:     make(map[string]int),
		positions: make(map[models.Position]int),
	}
}

func (s *rosterState) add(p models.Player) {
	s.players = append(s.players, p)
	s.selected[p.ID] = true
	s.teams[p.TeamKey()]++
	s.positions[p.Position]++
	s.spent += p.Price
}

func (s *rosterState) setCoach(p models.Player) {
	s.coach = &p
	s.selected[p.ID] = true
	s.teams[p.TeamKey()]++
	s.positions[p.Position]++
	s.spent += p.Price
}

// replace swaps the member at idx for p, keeping its slot in roster order.
func (s *rosterState) replace(idx int, p models.Player) {
	old := s.players[idx]
	delete(s.selected, old.ID)
	s.teams[old.TeamKey()]--
	s.spent -= old.Price

	s.players[idx] = p
	s.selected[p.ID] = true
	s.teams[p.TeamKey()]++
	s.spent += p.Price
}

// teamsWithout returns the team counts as if p were not on the roster.
func (s *rosterState) teamsWithout(p models.Player) map[string]int {
	counts := make(map[string]int, len(s.teams))
	for team, n := range s.teams {
		counts[team] = n
	}
	counts[p.TeamKey()]--
	return counts
}

func (s *rosterState) all() []models.Player {
	out := make([]models.Player, 0, len(s.players)+1)
	out = append(out, s.players...)
	if s.coach != nil {
		out = append(out, *s.coach)
	}
	return out
}

// rankCandidates orders players hot streak first, then by points per credit
// descending, then by id for a stable result.
func rankCandidates(players []models.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.IsHotStreak != b.IsHotStreak {
			return a.IsHotStreak
		}
		va, vb := valuePerCredit(a), valuePerCredit(b)
		if va != vb {
			return va > vb
		}
		return a.ID < b.ID
	})
}

func valuePerCredit(p models.Player) float64 {
	if p.Price <= 0 {
		return 0
	}
	return p.AveragePoints / p.Price
}

// candidatePools splits eligible players by position and ranks each list.
func candidatePools(players []models.Player) map[models.Position][]models.Player {
	pools := make(map[models.Position][]models.Player)
	for _, p := range players {
		if !IsEligible(p) {
			continue
		}
		pools[p.Position] = append(pools[p.Position], p)
	}
	for pos := range pools {
		rankCandidates(pools[pos])
	}
	return pools
}

// fillPositions greedily fills each non-coach quota in FillOrder. There is
// no backtracking: a pick, once made, stays. It returns the positions left
// short.
func fillPositions(state *rosterState, pools map[models.Position][]models.Player, rules Rules, budget float64) []models.Position {
	var short []models.Position

	for _, pos := range models.FillOrder {
		if pos.IsCoach() {
			continue
		}
		quota := rules.Quotas[pos]
		if quota == 0 {
			continue
		}

		for _, candidate := range pools[pos] {
			if state.positions[pos] >= quota {
				break
			}
			if state.selected[candidate.ID] {
				continue
			}
			if candidate.Price > budget-state.spent+budgetTolerance {
				continue
			}
			if state.teams[candidate.TeamKey()] >= rules.TeamCap {
				continue
			}
			state.add(candidate)
		}

		if state.positions[pos] < quota {
			short = append(short, pos)
		}
	}

	return short
}

func shortfallReason(state *rosterState, short []models.Position, rules Rules) string {
	parts := make([]string, 0, len(short))
	for _, pos := range short {
		parts = append(parts, fmt.Sprintf("%s %d/%d", pos, state.positions[pos], rules.Quotas[pos]))
	}
	return fmt.Sprintf("could not fill every position within budget and team limits (%s)", strings.Join(parts, ", "))
}
