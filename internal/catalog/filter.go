package catalog

import (
	"sort"
	"strings"

	"github.com/jstittsworth/roster-optimizer/internal/models"
)

const maxAlternatives = 5

// sortFields maps sort keys onto player accessors.
var sortFields = map[string]func(models.Player) float64{
	"quotation":              func(p models.Player) float64 { return p.Price },
	"avg_pts":                func(p models.Player) float64 { return p.AveragePoints },
	"probability_of_playing": func(p models.Player) float64 { return p.PlayingProbability },
	"popularity":             func(p models.Player) float64 { return p.Popularity },
}

// IsValidSort reports whether key (optionally "-" prefixed) is a known sort.
func IsValidSort(key string) bool {
	_, ok := sortFields[strings.TrimPrefix(key, "-")]
	return ok
}

// Filter returns the players matching filters in pool order. An empty or
// "all" position matches every position.
func Filter(players []models.Player, filters models.PlayerFilters) []models.Player {
	var position models.Position
	if filters.Position != "" && !strings.EqualFold(filters.Position, "all") {
		position = models.ParsePosition(filters.Position)
	}

	out := make([]models.Player, 0, len(players))
	for _, p := range players {
		if position != "" && p.Position != position {
			continue
		}
		if filters.OnlyAvailable && (p.IsInjured || p.Status != models.StatusAvailable) {
			continue
		}
		if filters.OnlyHotStreak && !p.IsHotStreak {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sort orders players in place by key; a leading "-" sorts descending.
// Unknown keys leave the order untouched. Ties keep their relative order.
func Sort(players []models.Player, key string) {
	desc := strings.HasPrefix(key, "-")
	field, ok := sortFields[strings.TrimPrefix(key, "-")]
	if !ok {
		return
	}
	sort.SliceStable(players, func(i, j int) bool {
		a, b := field(players[i]), field(players[j])
		if desc {
			return a > b
		}
		return a < b
	})
}

// Alternatives lists up to five healthy players at the same position as
// target, best average first.
func Alternatives(players []models.Player, target models.Player) []models.Player {
	var out []models.Player
	for _, p := range players {
		if p.ID == target.ID || p.Position != target.Position || p.IsInjured {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AveragePoints > out[j].AveragePoints
	})
	if len(out) > maxAlternatives {
		out = out[:maxAlternatives]
	}
	return out
}
