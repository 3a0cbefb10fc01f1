package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/roster-optimizer/internal/models"
	"github.com/jstittsworth/roster-optimizer/internal/optimizer"
	"github.com/jstittsworth/roster-optimizer/pkg/utils"
)

// PoolSource serves player pool snapshots.
type PoolSource interface {
	Pool(ctx context.Context) (*models.PlayerPool, error)
	ForMatchday(ctx context.Context, matchday int) (*models.PlayerPool, error)
	GetFetchStatus() map[string]interface{}
}

// ScheduleSource serves matchday information from the upstream.
type ScheduleSource interface {
	GetSchedule(ctx context.Context) (*models.Matchday, error)
	GetCurrentMatchday(ctx context.Context) (int, error)
}

// rejection is the body of a refused roster change.
type rejection struct {
	Success bool                     `json:"success"`
	Kind    optimizer.ConstraintKind `json:"kind"`
	Message string                   `json:"message"`
	Error   *utils.AppError          `json:"error"`
}

var constraintCodes = map[optimizer.ConstraintKind]string{
	optimizer.KindPositionQuota: utils.ErrCodePositionQuota,
	optimizer.KindTeamCap:       utils.ErrCodeTeamCap,
	optimizer.KindBudget:        utils.ErrCodeBudgetExceeded,
	optimizer.KindNotFound:      utils.ErrCodeNotFound,
	optimizer.KindDuplicate:     utils.ErrCodeConflict,
}

// sendConstraintError answers 404 for unknown players and 409 for any other
// rejected change. It reports false when err is not a constraint error.
func sendConstraintError(c *gin.Context, err error) bool {
	var cerr *optimizer.ConstraintError
	if !errors.As(err, &cerr) {
		return false
	}

	status := http.StatusConflict
	if cerr.Kind == optimizer.KindNotFound {
		status = http.StatusNotFound
	}
	code, ok := constraintCodes[cerr.Kind]
	if !ok {
		code = utils.ErrCodeConflict
	}
	c.JSON(status, rejection{
		Success: false,
		Kind:    cerr.Kind,
		Message: cerr.Message,
		Error:   utils.NewAppError(code, cerr.Message),
	})
	return true
}

func parsePlayerID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.SendValidationError(c, "Invalid player ID", c.Param("id"))
		return 0, false
	}
	return id, true
}

func loadPool(c *gin.Context, pools PoolSource) (*models.PlayerPool, bool) {
	pool, err := pools.Pool(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		utils.SendUpstreamError(c, "Player pool unavailable", err.Error())
		return nil, false
	}
	return pool, true
}
