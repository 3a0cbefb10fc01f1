package optimizer

import (
	"errors"
	"fmt"
	"math"

	"github.com/jstittsworth/roster-optimizer/internal/models"
)

// budgetTolerance absorbs float drift when summing credit prices.
const budgetTolerance = 1e-9

var (
	ErrPositionQuota   = errors.New("position quota exceeded")
	ErrTeamCap         = errors.New("max players from same team exceeded")
	ErrBudgetExceeded  = errors.New("budget exceeded")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrDuplicatePlayer = errors.New("duplicate player in roster")
	ErrEmptyPool       = errors.New("player pool is empty")
)

// ConstraintKind names the rule a rejected addition broke.
type ConstraintKind string

const (
	KindPositionQuota ConstraintKind = "PositionQuota"
	KindTeamCap       ConstraintKind = "TeamCap"
	KindBudget        ConstraintKind = "Budget"
	KindNotFound      ConstraintKind = "NotFound"
	KindDuplicate     ConstraintKind = "Duplicate"
)

// ConstraintError is a recoverable rejection; the roster is left unchanged.
type ConstraintError struct {
	Kind    ConstraintKind `json:"kind"`
	Message string         `json:"message"`
	err     error
}

func (e *ConstraintError) Error() string {
	return e.Message
}

func (e *ConstraintError) Unwrap() error {
	return e.err
}

func newConstraintError(kind ConstraintKind, sentinel error, format string, args ...interface{}) *ConstraintError {
	return &ConstraintError{Kind: kind, Message: fmt.Sprintf(format, args...), err: sentinel}
}

// BudgetError reports a budget rejection outside CheckAddition.
func BudgetError(format string, args ...interface{}) *ConstraintError {
	return newConstraintError(KindBudget, ErrBudgetExceeded, format, args...)
}

// NotFoundError reports an unknown player id.
func NotFoundError(playerID int) *ConstraintError {
	return newConstraintError(KindNotFound, ErrPlayerNotFound, "Player %d not found", playerID)
}

// Rules holds the roster limits shared by generation and manual edits.
type Rules struct {
	TotalBudget float64
	Quotas      models.PositionQuotas
	TeamCap     int
}

func DefaultRules() Rules {
	return Rules{
		TotalBudget: 100,
		Quotas:      models.DefaultPositionQuotas(),
		TeamCap:     3,
	}
}

func (r Rules) Validate() error {
	if r.TotalBudget <= 0 {
		return fmt.Errorf("total budget must be positive, got %.2f", r.TotalBudget)
	}
	if r.TeamCap <= 0 {
		return fmt.Errorf("team cap must be positive, got %d", r.TeamCap)
	}
	if r.Quotas.PlayerSlots() == 0 {
		return fmt.Errorf("at least one player position quota is required")
	}
	return nil
}

func WouldExceedPositionQuota(roster []models.Player, candidate models.Player, quotas models.PositionQuotas) bool {
	count := 0
	for _, p := range roster {
		if p.Position == candidate.Position {
			count++
		}
	}
	return count+1 > quotas[candidate.Position]
}

func WouldExceedTeamCap(roster []models.Player, candidate models.Player, teamCap int) bool {
	count := 0
	for _, p := range roster {
		if p.TeamKey() == candidate.TeamKey() {
			count++
		}
	}
	return count+1 > teamCap
}

// WouldExceedBudget treats a non-finite price as never affordable.
func WouldExceedBudget(roster []models.Player, candidate models.Player, totalBudget float64) bool {
	if math.IsNaN(candidate.Price) || math.IsInf(candidate.Price, 0) {
		return true
	}
	return TotalPrice(roster)+candidate.Price > totalBudget+budgetTolerance
}

// CheckAddition reports the first rule (quota, team, then budget) that adding
// candidate would break, or nil.
func CheckAddition(roster []models.Player, candidate models.Player, rules Rules) error {
	for _, p := range roster {
		if p.ID == candidate.ID {
			return newConstraintError(KindDuplicate, ErrDuplicatePlayer, "%s is already selected", candidate.Name)
		}
	}
	if WouldExceedPositionQuota(roster, candidate, rules.Quotas) {
		quota := rules.Quotas[candidate.Position]
		if quota == 0 {
			return newConstraintError(KindPositionQuota, ErrPositionQuota, "No %s slots available", candidate.Position)
		}
		return newConstraintError(KindPositionQuota, ErrPositionQuota, "Maximum %d %s(s) allowed", quota, candidate.Position)
	}
	if WouldExceedTeamCap(roster, candidate, rules.TeamCap) {
		return newConstraintError(KindTeamCap, ErrTeamCap, "Maximum %d players allowed from the same team", rules.TeamCap)
	}
	if WouldExceedBudget(roster, candidate, rules.TotalBudget) {
		return newConstraintError(KindBudget, ErrBudgetExceeded, "Selection would exceed budget limit")
	}
	return nil
}

// ValidateRoster checks every committed-roster invariant.
func ValidateRoster(roster []models.Player, rules Rules) error {
	seen := make(map[int]struct{}, len(roster))
	positions := make(map[models.Position]int)
	teams := make(map[string]int)

	for _, p := range roster {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}

		positions[p.Position]++
		if positions[p.Position] > rules.Quotas[p.Position] {
			return fmt.Errorf("%w: pos=%s max=%d", ErrPositionQuota, p.Position, rules.Quotas[p.Position])
		}

		teams[p.TeamKey()]++
		if teams[p.TeamKey()] > rules.TeamCap {
			return fmt.Errorf("%w: team=%s max=%d", ErrTeamCap, p.TeamKey(), rules.TeamCap)
		}
	}

	if total := TotalPrice(roster); total > rules.TotalBudget+budgetTolerance {
		return fmt.Errorf("%w: cap=%.2f used=%.2f", ErrBudgetExceeded, rules.TotalBudget, total)
	}
	return nil
}

func TotalPrice(players []models.Player) float64 {
	total := 0.0
	for _, p := range players {
		total += p.Price
	}
	return total
}
