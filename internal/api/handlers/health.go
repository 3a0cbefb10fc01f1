package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/roster-optimizer/internal/services"
	"github.com/jstittsworth/roster-optimizer/pkg/database"
)

type HealthHandler struct {
	db    *database.DB
	cache *services.CacheService
	pools PoolSource
}

func NewHealthHandler(db *database.DB, cache *services.CacheService, pools PoolSource) *HealthHandler {
	return &HealthHandler{
		db:    db,
		cache: cache,
		pools: pools,
	}
}

// GetHealth reports dependency status. The selection cache database is the
// only dependency whose failure makes the service unhealthy.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	checks := gin.H{}

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
			checks["database"] = err.Error()
		} else {
			checks["database"] = "ok"
		}
	}

	switch {
	case !h.cache.Enabled():
		checks["cache"] = "disabled"
	case h.cache.Ping(ctx) != nil:
		checks["cache"] = "unreachable"
		if code == http.StatusOK {
			status = "degraded"
		}
	default:
		checks["cache"] = "ok"
	}

	body := gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"service":   "roster-optimizer",
		"checks":    checks,
	}
	if h.pools != nil {
		body["pool_fetcher"] = h.pools.GetFetchStatus()
	}
	c.JSON(code, body)
}
