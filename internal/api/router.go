package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/roster-optimizer/internal/api/handlers"
	"github.com/jstittsworth/roster-optimizer/internal/roster"
	"github.com/jstittsworth/roster-optimizer/internal/services"
	"github.com/jstittsworth/roster-optimizer/pkg/config"
	"github.com/jstittsworth/roster-optimizer/pkg/database"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, db *database.DB, cache *services.CacheService, pools handlers.PoolSource, schedule handlers.ScheduleSource, store *roster.Store, cfg *config.Config, logger *logrus.Logger) {
	healthHandler := handlers.NewHealthHandler(db, cache, pools)
	playerHandler := handlers.NewPlayerHandler(pools, store)
	optimizerHandler := handlers.NewOptimizerHandler(pools, schedule, store, cfg, logger)
	rosterHandler := handlers.NewRosterHandler(store, pools)

	group.GET("/health", healthHandler.GetHealth)

	// Player catalog
	group.GET("/players", playerHandler.GetPlayers)
	group.GET("/players/:id/alternatives", playerHandler.GetAlternatives)

	// Optimization and matchday
	group.GET("/optimize", optimizerHandler.Optimize)
	group.POST("/generate", optimizerHandler.Generate)
	group.GET("/currentMatchday", optimizerHandler.GetCurrentMatchday)
	group.GET("/schedule", optimizerHandler.GetSchedule)

	// Selected roster
	rosterGroup := group.Group("/roster")
	{
		rosterGroup.GET("", rosterHandler.GetRoster)
		rosterGroup.DELETE("", rosterHandler.ClearRoster)
		rosterGroup.POST("/toggle/:id", rosterHandler.TogglePlayer)
		rosterGroup.DELETE("/players/:id", rosterHandler.RemovePlayer)
		rosterGroup.POST("/reset", rosterHandler.ResetRoster)
		rosterGroup.PUT("/budget", rosterHandler.UpdateBudget)
		rosterGroup.PUT("/preferences", rosterHandler.UpdatePreferences)
		rosterGroup.PUT("/filters", rosterHandler.UpdateFilters)
	}
}
