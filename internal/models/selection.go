package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// GenerationPreferences bias scoring; they never change the algorithm.
type GenerationPreferences struct {
	PrioritizeHotStreak bool `json:"prioritize_hot_streak"`
	BalanceTeams        bool `json:"balance_teams"`
	MaximizeProbability bool `json:"maximize_probability"`
}

// PlayerFilters mirrors the catalog filter controls persisted with a selection.
type PlayerFilters struct {
	Position      string `json:"position"`
	OnlyAvailable bool   `json:"only_available"`
	OnlyHotStreak bool   `json:"only_hot_streak"`
}

// DefaultSort lists the most expensive players first.
const DefaultSort = "-quotation"

// SelectionRecord is the local selection cache row. Players are stored as
// snapshots so a selection survives restarts without the upstream pool.
type SelectionRecord struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	Players     datatypes.JSON `json:"players"`
	Budget      float64        `gorm:"not null" json:"budget"`
	Preferences datatypes.JSON `json:"preferences"`
	Filters     datatypes.JSON `json:"filters"`
	Sort        string         `json:"sort"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (SelectionRecord) TableName() string {
	return "roster_selections"
}

// DecodePlayers returns the cached player snapshots in selection order.
func (r *SelectionRecord) DecodePlayers() ([]Player, error) {
	var players []Player
	if len(r.Players) == 0 {
		return players, nil
	}
	if err := json.Unmarshal(r.Players, &players); err != nil {
		return nil, fmt.Errorf("failed to decode players: %w", err)
	}
	return players, nil
}

func (r *SelectionRecord) DecodePreferences() (GenerationPreferences, error) {
	var prefs GenerationPreferences
	if len(r.Preferences) == 0 {
		return prefs, nil
	}
	if err := json.Unmarshal(r.Preferences, &prefs); err != nil {
		return prefs, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return prefs, nil
}

func (r *SelectionRecord) DecodeFilters() (PlayerFilters, error) {
	var filters PlayerFilters
	if len(r.Filters) == 0 {
		return filters, nil
	}
	if err := json.Unmarshal(r.Filters, &filters); err != nil {
		return filters, fmt.Errorf("failed to decode filters: %w", err)
	}
	return filters, nil
}

// EncodeJSON marshals v into a datatypes.JSON column value.
func EncodeJSON(v interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
