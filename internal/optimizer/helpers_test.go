package optimizer

import (
	"fmt"

	"github.com/jstittsworth/roster-optimizer/internal/models"
)

func testPlayer(id int, pos models.Position, team string, price, avg float64) models.Player {
	return models.Player{
		ID:                 id,
		Name:               fmt.Sprintf("Player %d", id),
		Position:           pos,
		Team:               models.Team{Name: team, Abbreviation: team},
		Price:              price,
		AveragePoints:      avg,
		PlayingProbability: 1,
		Status:             models.StatusAvailable,
	}
}

func testCoach(id int, team string, price float64) models.Player {
	return testPlayer(id, models.PositionHeadCoach, team, price, 0)
}

func playerIDs(players []models.Player) []int {
	out := make([]int, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}

func countBy(players []models.Player, key func(models.Player) string) map[string]int {
	counts := make(map[string]int)
	for _, p := range players {
		counts[key(p)]++
	}
	return counts
}
