package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/roster-optimizer/internal/catalog"
	"github.com/jstittsworth/roster-optimizer/internal/models"
	"github.com/jstittsworth/roster-optimizer/internal/roster"
	"github.com/jstittsworth/roster-optimizer/pkg/utils"
)

type PlayerHandler struct {
	pools PoolSource
	store *roster.Store
}

func NewPlayerHandler(pools PoolSource, store *roster.Store) *PlayerHandler {
	return &PlayerHandler{
		pools: pools,
		store: store,
	}
}

// GetPlayers lists the pool filtered and sorted by the query. Without any
// filter parameters the filters saved with the selection apply.
func (h *PlayerHandler) GetPlayers(c *gin.Context) {
	snapshot := h.store.Snapshot()
	filters := snapshot.Filters
	sortKey := snapshot.Sort

	if hasAnyQuery(c, "position", "only_available", "only_hot_streak") {
		filters = models.PlayerFilters{Position: c.Query("position")}
		var ok bool
		if filters.OnlyAvailable, ok = boolQuery(c, "only_available"); !ok {
			return
		}
		if filters.OnlyHotStreak, ok = boolQuery(c, "only_hot_streak"); !ok {
			return
		}
	}
	if s := c.Query("sort"); s != "" {
		if !catalog.IsValidSort(s) {
			utils.SendValidationError(c, "Invalid sort", s)
			return
		}
		sortKey = s
	}

	pool, ok := loadPool(c, h.pools)
	if !ok {
		return
	}

	players := catalog.Filter(pool.Players, filters)
	catalog.Sort(players, sortKey)

	utils.SendSuccessWithMeta(c, players, &utils.Meta{Total: len(players)})
}

// GetAlternatives lists same-position replacements for a player.
func (h *PlayerHandler) GetAlternatives(c *gin.Context) {
	id, ok := parsePlayerID(c)
	if !ok {
		return
	}
	pool, ok := loadPool(c, h.pools)
	if !ok {
		return
	}

	target, found := pool.Get(id)
	if !found {
		utils.SendNotFound(c, "Player not found")
		return
	}

	utils.SendSuccess(c, gin.H{
		"player":       target,
		"alternatives": catalog.Alternatives(pool.Players, target),
	})
}

func hasAnyQuery(c *gin.Context, keys ...string) bool {
	for _, key := range keys {
		if _, ok := c.GetQuery(key); ok {
			return true
		}
	}
	return false
}

// boolQuery parses an optional boolean query parameter, answering 400 on
// malformed input.
func boolQuery(c *gin.Context, key string) (bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		utils.SendValidationError(c, "Invalid "+key, raw)
		return false, false
	}
	return v, true
}
