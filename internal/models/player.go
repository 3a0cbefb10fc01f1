package models

import "sort"

type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "available"
	StatusDoubtful  AvailabilityStatus = "doubtful"
	StatusOut       AvailabilityStatus = "out"
)

const (
	UnknownTeamName         = "Unknown Team"
	UnknownTeamAbbreviation = "UNK"
)

type Team struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// Player is the normalized view of one upstream record. Scores are not
// stored here; they depend on generation preferences and are recomputed.
type Player struct {
	ID                 int                `json:"id"`
	Name               string             `json:"name"`
	FirstName          string             `json:"first_name"`
	LastName           string             `json:"last_name"`
	Position           Position           `json:"position"`
	Team               Team               `json:"team"`
	Opponent           string             `json:"opponent,omitempty"`
	Jersey             string             `json:"jersey,omitempty"`
	Price              float64            `json:"price"`
	AveragePoints      float64            `json:"avg_pts"`
	FantasyPoints      float64            `json:"fantasy_points"`
	IsInjured          bool               `json:"is_injured"`
	IsHotStreak        bool               `json:"is_hot_streak"`
	StartedFromBench   bool               `json:"started_from_bench"`
	PlayingProbability float64            `json:"probability_of_playing"`
	Popularity         float64            `json:"popularity"`
	Status             AvailabilityStatus `json:"status"`
}

func (p Player) IsCoach() bool {
	return p.Position.IsCoach()
}

// TeamKey identifies the real-world team for the per-team cap.
func (p Player) TeamKey() string {
	if p.Team.Abbreviation != "" {
		return p.Team.Abbreviation
	}
	return p.Team.Name
}

// PlayerPool is an immutable snapshot of normalized players used for one
// computation.
type PlayerPool struct {
	Matchday   int      `json:"matchday"`
	Players    []Player `json:"players"`
	byID       map[int]int
	byPosition map[Position][]Player
}

// NewPlayerPool indexes players by id and position. Duplicate ids keep the
// first occurrence.
func NewPlayerPool(matchday int, players []Player) *PlayerPool {
	pool := &PlayerPool{
		Matchday:   matchday,
		Players:    make([]Player, 0, len(players)),
		byID:       make(map[int]int, len(players)),
		byPosition: make(map[Position][]Player),
	}

	for _, player := range players {
		if _, dup := pool.byID[player.ID]; dup {
			continue
		}
		pool.byID[player.ID] = len(pool.Players)
		pool.Players = append(pool.Players, player)
		pool.byPosition[player.Position] = append(pool.byPosition[player.Position], player)
	}

	return pool
}

func (pp *PlayerPool) Len() int {
	if pp == nil {
		return 0
	}
	return len(pp.Players)
}

func (pp *PlayerPool) IsEmpty() bool {
	return pp.Len() == 0
}

// Get returns the player with the given id.
func (pp *PlayerPool) Get(id int) (Player, bool) {
	if pp == nil {
		return Player{}, false
	}
	idx, ok := pp.byID[id]
	if !ok {
		return Player{}, false
	}
	return pp.Players[idx], true
}

// ByPosition returns a copy of the players at a position in pool order.
func (pp *PlayerPool) ByPosition(position Position) []Player {
	if pp == nil {
		return nil
	}
	src := pp.byPosition[position]
	out := make([]Player, len(src))
	copy(out, src)
	return out
}

// Teams lists distinct team keys present in the pool, sorted.
func (pp *PlayerPool) Teams() []string {
	seen := make(map[string]struct{})
	for _, p := range pp.Players {
		seen[p.TeamKey()] = struct{}{}
	}
	teams := make([]string, 0, len(seen))
	for t := range seen {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	return teams
}
