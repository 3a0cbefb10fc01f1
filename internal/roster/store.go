package roster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/roster-optimizer/internal/catalog"
	"github.com/jstittsworth/roster-optimizer/internal/models"
	"github.com/jstittsworth/roster-optimizer/internal/optimizer"
)

var ErrBudgetOutOfRange = errors.New("budget out of range")

type Settings struct {
	DefaultBudget float64
	MinBudget     float64
	MaxBudget     float64
	Quotas        models.PositionQuotas
	TeamCap       int
}

// Selection is a read-only view of the store.
type Selection struct {
	Players         []models.Player              `json:"players"`
	Budget          float64                      `json:"budget"`
	Spent           float64                      `json:"spent"`
	RemainingBudget float64                      `json:"remaining_budget"`
	PositionCounts  map[models.Position]int      `json:"position_counts"`
	PositionQuotas  models.PositionQuotas        `json:"position_quotas"`
	TeamCounts      map[string]int               `json:"team_counts"`
	Preferences     models.GenerationPreferences `json:"preferences"`
	Filters         models.PlayerFilters         `json:"filters"`
	Sort            string                       `json:"sort"`
}

// Store owns the selected roster. Every mutation goes through its methods,
// runs under one lock and leaves the roster valid or untouched.
type Store struct {
	mu       sync.Mutex
	settings Settings
	repo     SelectionRepository
	logger   *logrus.Logger

	players []models.Player
	budget  float64
	prefs   models.GenerationPreferences
	filters models.PlayerFilters
	sort    string
}

func NewStore(settings Settings, repo SelectionRepository, logger *logrus.Logger) *Store {
	s := &Store{
		settings: settings,
		repo:     repo,
		logger:   logger,
	}
	s.resetLocked()
	return s
}

// Restore loads the cached selection. Cached players that no longer fit the
// current rules are dropped.
func (s *Store) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	record, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}

	players, err := record.DecodePlayers()
	if err != nil {
		return err
	}
	prefs, err := record.DecodePreferences()
	if err != nil {
		return err
	}
	filters, err := record.DecodeFilters()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if record.Budget >= s.settings.MinBudget && record.Budget <= s.settings.MaxBudget {
		s.budget = record.Budget
	}
	s.prefs = prefs
	s.filters = filters
	if catalog.IsValidSort(record.Sort) {
		s.sort = record.Sort
	}

	s.players = s.players[:0]
	for _, p := range players {
		if err := optimizer.CheckAddition(s.players, p, s.rulesLocked()); err != nil {
			s.logger.WithFields(logrus.Fields{
				"component": "roster_store",
				"player_id": p.ID,
				"reason":    err.Error(),
			}).Warn("Dropping cached player that no longer fits the roster")
			continue
		}
		s.players = append(s.players, p)
	}

	s.logger.WithFields(logrus.Fields{
		"component": "roster_store",
		"players":   len(s.players),
		"budget":    s.budget,
	}).Info("Selection restored")
	return nil
}

// Rules returns the constraints for the current budget.
func (s *Store) Rules() optimizer.Rules {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rulesLocked()
}

func (s *Store) rulesLocked() optimizer.Rules {
	return optimizer.Rules{
		TotalBudget: s.budget,
		Quotas:      s.settings.Quotas,
		TeamCap:     s.settings.TeamCap,
	}
}

func (s *Store) Snapshot() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Contains reports whether the player is selected.
func (s *Store) Contains(playerID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(playerID) >= 0
}

// Toggle removes the player if selected, otherwise adds it from the pool.
// It reports whether the player is selected afterwards. A rejected addition
// returns a *optimizer.ConstraintError and leaves the roster unchanged.
func (s *Store) Toggle(ctx context.Context, pool *models.PlayerPool, playerID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(playerID) >= 0 {
		s.removeLocked(playerID)
		s.persistLocked(ctx)
		return false, nil
	}

	player, ok := pool.Get(playerID)
	if !ok {
		return false, optimizer.NotFoundError(playerID)
	}
	if err := optimizer.CheckAddition(s.players, player, s.rulesLocked()); err != nil {
		return false, err
	}
	s.players = append(s.players, player)
	s.persistLocked(ctx)
	return true, nil
}

func (s *Store) Add(ctx context.Context, player models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := optimizer.CheckAddition(s.players, player, s.rulesLocked()); err != nil {
		return err
	}
	s.players = append(s.players, player)
	s.persistLocked(ctx)
	return nil
}

// Remove always succeeds for a selected player.
func (s *Store) Remove(ctx context.Context, playerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.removeLocked(playerID) {
		return optimizer.NotFoundError(playerID)
	}
	s.persistLocked(ctx)
	return nil
}

// Replace swaps the whole roster, typically for a generated one.
func (s *Store) Replace(ctx context.Context, players []models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := optimizer.ValidateRoster(players, s.rulesLocked()); err != nil {
		return fmt.Errorf("replacement roster rejected: %w", err)
	}
	s.players = append([]models.Player(nil), players...)
	s.persistLocked(ctx)
	return nil
}

// Clear empties the roster, keeping budget and preferences.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players = nil
	s.persistLocked(ctx)
}

// Reset clears the roster and restores default budget, preferences,
// filters and sort.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.persistLocked(ctx)
}

// UpdateBudget rejects budgets outside the configured range and budgets
// below what the current roster already costs.
func (s *Store) UpdateBudget(ctx context.Context, budget float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if math.IsNaN(budget) || budget < s.settings.MinBudget || budget > s.settings.MaxBudget {
		return fmt.Errorf("%w: %.2f not in [%.2f, %.2f]", ErrBudgetOutOfRange, budget, s.settings.MinBudget, s.settings.MaxBudget)
	}
	if spent := optimizer.TotalPrice(s.players); spent > budget {
		return optimizer.BudgetError("Current selection costs %.2f, budget cannot be lower", optimizer.RoundCredits(spent))
	}
	s.budget = budget
	s.persistLocked(ctx)
	return nil
}

func (s *Store) UpdatePreferences(ctx context.Context, prefs models.GenerationPreferences) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs = prefs
	s.persistLocked(ctx)
}

func (s *Store) UpdateFilters(ctx context.Context, filters models.PlayerFilters, sortKey string) error {
	if sortKey != "" && !catalog.IsValidSort(sortKey) {
		return fmt.Errorf("unknown sort %q", sortKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = filters
	if sortKey != "" {
		s.sort = sortKey
	}
	s.persistLocked(ctx)
	return nil
}

func (s *Store) resetLocked() {
	s.players = nil
	s.budget = s.settings.DefaultBudget
	s.prefs = models.GenerationPreferences{}
	s.filters = models.PlayerFilters{}
	s.sort = models.DefaultSort
}

func (s *Store) indexLocked(playerID int) int {
	for i, p := range s.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(playerID int) bool {
	idx := s.indexLocked(playerID)
	if idx < 0 {
		return false
	}
	s.players = append(s.players[:idx], s.players[idx+1:]...)
	return true
}

func (s *Store) snapshotLocked() Selection {
	positions := make(map[models.Position]int)
	teams := make(map[string]int)
	spent := decimal.Zero
	for _, p := range s.players {
		positions[p.Position]++
		teams[p.TeamKey()]++
		spent = spent.Add(decimal.NewFromFloat(p.Price))
	}

	players := make([]models.Player, len(s.players))
	copy(players, s.players)
	quotas := make(models.PositionQuotas, len(s.settings.Quotas))
	for pos, n := range s.settings.Quotas {
		quotas[pos] = n
	}

	return Selection{
		Players:         players,
		Budget:          s.budget,
		Spent:           spent.Round(2).InexactFloat64(),
		RemainingBudget: decimal.NewFromFloat(s.budget).Sub(spent).Round(2).InexactFloat64(),
		PositionCounts:  positions,
		PositionQuotas:  quotas,
		TeamCounts:      teams,
		Preferences:     s.prefs,
		Filters:         s.filters,
		Sort:            s.sort,
	}
}

// persistLocked writes the selection cache. Failures are logged; the
// in-memory selection stays authoritative.
func (s *Store) persistLocked(ctx context.Context) {
	if s.repo == nil {
		return
	}
	record, err := s.recordLocked()
	if err == nil {
		err = s.repo.Save(ctx, record)
	}
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"component": "roster_store",
			"error":     err.Error(),
		}).Warn("Failed to persist selection")
	}
}

func (s *Store) recordLocked() (*models.SelectionRecord, error) {
	players, err := models.EncodeJSON(s.players)
	if err != nil {
		return nil, err
	}
	prefs, err := models.EncodeJSON(s.prefs)
	if err != nil {
		return nil, err
	}
	filters, err := models.EncodeJSON(s.filters)
	if err != nil {
		return nil, err
	}
	return &models.SelectionRecord{
		Players:     players,
		Budget:      s.budget,
		Preferences: prefs,
		Filters:     filters,
		Sort:        s.sort,
	}, nil
}
