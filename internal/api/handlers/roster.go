package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/roster-optimizer/internal/models"
	"github.com/jstittsworth/roster-optimizer/internal/roster"
	"github.com/jstittsworth/roster-optimizer/pkg/utils"
)

type RosterHandler struct {
	store *roster.Store
	pools PoolSource
}

func NewRosterHandler(store *roster.Store, pools PoolSource) *RosterHandler {
	return &RosterHandler{
		store: store,
		pools: pools,
	}
}

func (h *RosterHandler) GetRoster(c *gin.Context) {
	utils.SendSuccess(c, h.store.Snapshot())
}

// TogglePlayer adds or removes a player. Removal never needs the pool.
func (h *RosterHandler) TogglePlayer(c *gin.Context) {
	id, ok := parsePlayerID(c)
	if !ok {
		return
	}

	pool, err := h.pools.Pool(c.Request.Context())
	if err != nil && !h.store.Contains(id) {
		_ = c.Error(err)
		utils.SendUpstreamError(c, "Player pool unavailable", err.Error())
		return
	}

	selected, err := h.store.Toggle(c.Request.Context(), pool, id)
	if err != nil {
		if sendConstraintError(c, err) {
			return
		}
		_ = c.Error(err)
		utils.SendInternalError(c, "Failed to update roster")
		return
	}

	utils.SendSuccess(c, gin.H{
		"player_id": id,
		"selected":  selected,
		"roster":    h.store.Snapshot(),
	})
}

func (h *RosterHandler) RemovePlayer(c *gin.Context) {
	id, ok := parsePlayerID(c)
	if !ok {
		return
	}
	if err := h.store.Remove(c.Request.Context(), id); err != nil {
		if !sendConstraintError(c, err) {
			utils.SendInternalError(c, "Failed to update roster")
		}
		return
	}
	utils.SendSuccess(c, h.store.Snapshot())
}

// ClearRoster empties the roster and keeps budget and preferences.
func (h *RosterHandler) ClearRoster(c *gin.Context) {
	h.store.Clear(c.Request.Context())
	utils.SendSuccess(c, h.store.Snapshot())
}

func (h *RosterHandler) ResetRoster(c *gin.Context) {
	h.store.Reset(c.Request.Context())
	utils.SendSuccess(c, h.store.Snapshot())
}

func (h *RosterHandler) UpdateBudget(c *gin.Context) {
	var req struct {
		Budget float64 `json:"budget" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	if err := h.store.UpdateBudget(c.Request.Context(), req.Budget); err != nil {
		if errors.Is(err, roster.ErrBudgetOutOfRange) {
			utils.SendValidationError(c, "Budget out of range", err.Error())
			return
		}
		if !sendConstraintError(c, err) {
			utils.SendInternalError(c, "Failed to update budget")
		}
		return
	}
	utils.SendSuccess(c, h.store.Snapshot())
}

func (h *RosterHandler) UpdatePreferences(c *gin.Context) {
	var prefs models.GenerationPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	h.store.UpdatePreferences(c.Request.Context(), prefs)
	utils.SendSuccess(c, h.store.Snapshot())
}

func (h *RosterHandler) UpdateFilters(c *gin.Context) {
	var req struct {
		models.PlayerFilters
		Sort string `json:"sort"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := h.store.UpdateFilters(c.Request.Context(), req.PlayerFilters, req.Sort); err != nil {
		utils.SendValidationError(c, "Invalid filters", err.Error())
		return
	}
	utils.SendSuccess(c, h.store.Snapshot())
}
