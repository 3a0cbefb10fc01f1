package optimizer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/roster-optimizer/internal/models"
	"github.com/jstittsworth/roster-optimizer/pkg/logger"
)

type GenerateConfig struct {
	Rules       Rules                        `json:"-"`
	Preferences models.GenerationPreferences `json:"preferences"`
	// Epsilon is the leftover budget below which upgrading stops.
	Epsilon float64 `json:"epsilon"`
}

// Generate builds a roster from the pool: a greedy quota fill, then the
// upgrade pass, then an optional coach. Infeasibility is reported on the
// result; the error is reserved for invalid configuration.
func Generate(pool *models.PlayerPool, config GenerateConfig) (*Result, error) {
	if err := config.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation config: %w", err)
	}
	if config.Epsilon <= 0 {
		config.Epsilon = DefaultUpgradeEpsilon
	}

	optimizationID := uuid.New().String()
	rules := config.Rules
	scorer := NewScorer(config.Preferences)
	state := newRosterState()

	log := logger.WithGenerationContext(optimizationID, rules.TotalBudget, pool.Len())
	log.WithFields(logrus.Fields{
		"team_cap":    rules.TeamCap,
		"quotas":      rules.Quotas,
		"preferences": config.Preferences,
	}).Info("Starting roster generation")

	if pool.IsEmpty() {
		log.Warn("Player pool is empty, generation infeasible")
		return assembleResult(optimizationID, state, rules, scorer, false, ErrEmptyPool.Error(), 0), nil
	}

	pools := candidatePools(pool.Players)
	reserve := coachReserve(pools, rules)

	log.WithFields(logrus.Fields{
		"eligible_centers":  len(pools[models.PositionCenter]),
		"eligible_forwards": len(pools[models.PositionForward]),
		"eligible_guards":   len(pools[models.PositionGuard]),
		"eligible_coaches":  len(pools[models.PositionHeadCoach]),
		"coach_reserve":     reserve,
	}).Debug("Candidate pools ranked")

	if short := fillPositions(state, pools, rules, rules.TotalBudget); len(short) > 0 {
		reason := shortfallReason(state, short, rules)
		log.WithField("reason", reason).Warn("Roster generation incomplete")
		return assembleResult(optimizationID, state, rules, scorer, false, reason, 0), nil
	}

	// The coach reserve only caps upgrades. A fill that already eats into it
	// upgrades against the full budget and the coach slot may stay empty.
	upgradeBudget := rules.TotalBudget - reserve
	if state.spent > upgradeBudget+budgetTolerance {
		upgradeBudget = rules.TotalBudget
	}

	initialSpend := state.spent
	history := upgradeRoster(state, pools, scorer, rules, upgradeBudget, config.Epsilon)
	log.WithFields(logrus.Fields{
		"swaps":         len(history),
		"initial_spend": RoundCredits(initialSpend),
		"final_spend":   RoundCredits(state.spent),
	}).Debug("Upgrade pass finished")

	if attachCoach(state, pools, scorer, rules) {
		log.WithField("coach_id", state.coach.ID).Debug("Coach attached")
	} else if rules.Quotas[models.PositionHeadCoach] > 0 {
		log.Info("No affordable coach, leaving coach slot empty")
	}

	if err := ValidateRoster(state.all(), rules); err != nil {
		// fillPositions and findSwap enforce every rule; reaching this is a bug.
		log.WithError(err).Error("Generated roster violates roster rules")
		return nil, fmt.Errorf("generated roster is invalid: %w", err)
	}

	result := assembleResult(optimizationID, state, rules, scorer, true, "", len(history))
	log.WithFields(logrus.Fields{
		"total_spend":      result.TotalSpend,
		"remaining_budget": result.RemainingBudget,
		"has_coach":        result.Coach != nil,
	}).Info("Roster generation completed")

	return result, nil
}
