package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/roster-optimizer/internal/models"
	"github.com/jstittsworth/roster-optimizer/internal/optimizer"
	"github.com/jstittsworth/roster-optimizer/internal/roster"
	"github.com/jstittsworth/roster-optimizer/pkg/config"
	"github.com/jstittsworth/roster-optimizer/pkg/utils"
)

type OptimizerHandler struct {
	pools    PoolSource
	schedule ScheduleSource
	store    *roster.Store
	config   *config.Config
	logger   *logrus.Logger
}

func NewOptimizerHandler(pools PoolSource, schedule ScheduleSource, store *roster.Store, cfg *config.Config, logger *logrus.Logger) *OptimizerHandler {
	return &OptimizerHandler{
		pools:    pools,
		schedule: schedule,
		store:    store,
		config:   cfg,
		logger:   logger,
	}
}

// OptimizedTeam is the /optimize payload.
type OptimizedTeam struct {
	Players          []models.Player `json:"players"`
	Coach            *models.Player  `json:"coach"`
	TotalCredits     float64         `json:"totalCredits"`
	RemainingCredits float64         `json:"remainingCredits"`
}

func sendFailure(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

// Optimize generates a team for a matchday with the stored rules.
// maxCredits overrides the budget.
func (h *OptimizerHandler) Optimize(c *gin.Context) {
	ctx := c.Request.Context()
	const failure = "Error optimizing team"

	rules := h.store.Rules()
	if raw := c.Query("maxCredits"); raw != "" {
		credits, err := strconv.ParseFloat(raw, 64)
		if err != nil || credits <= 0 {
			sendFailure(c, failure, fmt.Errorf("invalid maxCredits %q", raw))
			return
		}
		rules.TotalBudget = credits
	}

	var (
		pool *models.PlayerPool
		err  error
	)
	if raw := c.Query("matchday"); raw != "" {
		matchday, convErr := strconv.Atoi(raw)
		if convErr != nil || matchday <= 0 {
			sendFailure(c, failure, fmt.Errorf("invalid matchday %q", raw))
			return
		}
		pool, err = h.pools.ForMatchday(ctx, matchday)
	} else {
		pool, err = h.pools.Pool(ctx)
	}
	if err != nil {
		sendFailure(c, failure, err)
		return
	}

	result, err := optimizer.Generate(pool, optimizer.GenerateConfig{
		Rules:       rules,
		Preferences: h.store.Snapshot().Preferences,
		Epsilon:     h.config.UpgradeEpsilon,
	})
	if err != nil {
		sendFailure(c, failure, err)
		return
	}
	if !result.IsComplete {
		sendFailure(c, failure, fmt.Errorf("%w: %s", utils.ErrGenerationFailed, result.Reason))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"team": OptimizedTeam{
			Players:          result.Players,
			Coach:            result.Coach,
			TotalCredits:     result.TotalSpend,
			RemainingCredits: result.RemainingBudget,
		},
	})
}

type generateRequest struct {
	Budget      *float64                      `json:"budget"`
	Quotas      map[string]int                `json:"quotas"`
	TeamCap     *int                          `json:"team_cap"`
	Preferences *models.GenerationPreferences `json:"preferences"`
	Epsilon     float64                       `json:"epsilon" binding:"min=0"`
	Apply       bool                          `json:"apply"`
}

type generateResponse struct {
	*optimizer.Result
	Applied bool `json:"applied"`
}

// Generate runs the optimizer with optional overrides of the stored rules.
// With apply set, a complete result replaces the selected roster.
func (h *OptimizerHandler) Generate(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.SendValidationError(c, "Invalid request body", err.Error())
			return
		}
	}

	snapshot := h.store.Snapshot()
	rules := h.store.Rules()
	prefs := snapshot.Preferences

	if req.Budget != nil {
		if *req.Budget < h.config.MinBudget || *req.Budget > h.config.MaxBudget {
			utils.SendValidationError(c, "Budget out of range",
				fmt.Sprintf("Budget must be between %.1f and %.1f", h.config.MinBudget, h.config.MaxBudget))
			return
		}
		rules.TotalBudget = *req.Budget
	}
	if len(req.Quotas) > 0 {
		quotas, err := models.QuotasFromConfig(req.Quotas)
		if err != nil {
			utils.SendValidationError(c, "Invalid quotas", err.Error())
			return
		}
		rules.Quotas = quotas
	}
	if req.TeamCap != nil {
		rules.TeamCap = *req.TeamCap
	}
	if req.Preferences != nil {
		prefs = *req.Preferences
	}
	epsilon := h.config.UpgradeEpsilon
	if req.Epsilon > 0 {
		epsilon = req.Epsilon
	}

	if err := rules.Validate(); err != nil {
		utils.SendValidationError(c, "Invalid generation rules", err.Error())
		return
	}

	pool, ok := loadPool(c, h.pools)
	if !ok {
		return
	}

	result, err := optimizer.Generate(pool, optimizer.GenerateConfig{
		Rules:       rules,
		Preferences: prefs,
		Epsilon:     epsilon,
	})
	if err != nil {
		_ = c.Error(err)
		utils.SendError(c, http.StatusInternalServerError, utils.NewAppError(utils.ErrCodeGeneration, "Roster generation failed", err.Error()))
		return
	}

	resp := generateResponse{Result: result}
	if req.Apply && result.IsComplete {
		if err := h.store.Replace(c.Request.Context(), result.Roster()); err != nil {
			if !sendConstraintError(c, err) {
				utils.SendConflict(c, utils.ErrCodeConflict, err.Error())
			}
			return
		}
		resp.Applied = true
		h.logger.WithFields(logrus.Fields{
			"optimization_id": result.OptimizationID,
			"players":         len(result.Roster()),
		}).Info("Generated roster applied to selection")
	}

	utils.SendSuccess(c, resp)
}

// GetCurrentMatchday answers {matchday}.
func (h *OptimizerHandler) GetCurrentMatchday(c *gin.Context) {
	matchday, err := h.schedule.GetCurrentMatchday(c.Request.Context())
	if err != nil {
		sendFailure(c, "Error getting current matchday", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matchday": matchday})
}

func (h *OptimizerHandler) GetSchedule(c *gin.Context) {
	schedule, err := h.schedule.GetSchedule(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		utils.SendUpstreamError(c, "Schedule unavailable", err.Error())
		return
	}
	utils.SendSuccess(c, schedule)
}
