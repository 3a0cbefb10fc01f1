package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexFloat decodes a JSON number, a numeric string or null. Unparseable
// strings and non-finite values ("NaN", "Inf") decode to zero.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flex float: %w", err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = finite(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = finite(v)
	return nil
}

func finite(v float64) FlexFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return FlexFloat(v)
}

// FlexString decodes a JSON string or number as text.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("flex string: %w", err)
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(string(data))
	return nil
}

type RawPosition struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type RawTeam struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// RawPlayer is one record of the upstream players list.
type RawPlayer struct {
	ID                   int          `json:"id"`
	FirstName            string       `json:"first_name"`
	LastName             string       `json:"last_name"`
	Position             *RawPosition `json:"position"`
	Team                 *RawTeam     `json:"team"`
	Opponent             *RawTeam     `json:"opponent,omitempty"`
	Quotation            FlexFloat    `json:"quotation"`
	AvgPts               FlexFloat    `json:"avg_pts"`
	FantasyPoints        FlexFloat    `json:"fantasy_points"`
	IsInjured            bool         `json:"is_injured"`
	IsOnFire             bool         `json:"is_on_fire"`
	StartedFromBench     bool         `json:"started_from_bench"`
	ProbabilityOfPlaying FlexFloat    `json:"probability_of_playing"`
	Popularity           FlexFloat    `json:"popularity"`
	Jersey               FlexString   `json:"jersey"`
}

type PlayersResponse struct {
	Data []RawPlayer `json:"data"`
}

type ScheduleTeam struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Abbreviation string   `json:"abbreviation"`
	Score        *float64 `json:"score,omitempty"`
	IsValid      *bool    `json:"is_valid,omitempty"`
}

type Match struct {
	ID        int          `json:"id"`
	Status    string       `json:"status"`
	OT        bool         `json:"ot"`
	StartedAt string       `json:"started_at"`
	HomeTeam  ScheduleTeam `json:"home_team"`
	AwayTeam  ScheduleTeam `json:"away_team"`
}

type Round struct {
	ID      int     `json:"id"`
	Number  int     `json:"number"`
	Matches []Match `json:"matches"`
}

// Matchday is the schedule of one fantasy matchday.
type Matchday struct {
	ID           int            `json:"id"`
	Number       int            `json:"number"`
	RestingTeams []ScheduleTeam `json:"resting_teams"`
	Rounds       []Round        `json:"rounds"`
}

type ScheduleResponse struct {
	Data *Matchday `json:"data"`
}
