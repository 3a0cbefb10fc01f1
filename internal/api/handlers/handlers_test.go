package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/jstittsworth/roster-optimizer/internal/api"
	"github.com/jstittsworth/roster-optimizer/internal/models"
	"github.com/jstittsworth/roster-optimizer/internal/roster"
	"github.com/jstittsworth/roster-optimizer/internal/services"
	"github.com/jstittsworth/roster-optimizer/pkg/config"
	"github.com/jstittsworth/roster-optimizer/pkg/database"
)

type fakePools struct {
	pool      *models.PlayerPool
	err       error
	matchdays []int
}

func (f *fakePools) Pool(context.Context) (*models.PlayerPool, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pool, nil
}

func (f *fakePools) ForMatchday(_ context.Context, matchday int) (*models.PlayerPool, error) {
	f.matchdays = append(f.matchdays, matchday)
	return f.Pool(context.Background())
}

func (f *fakePools) GetFetchStatus() map[string]interface{} {
	return map[string]interface{}{"is_running": false, "pool_size": f.pool.Len()}
}

type fakeSchedule struct {
	matchday int
	err      error
}

func (f *fakeSchedule) GetSchedule(context.Context) (*models.Matchday, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Matchday{ID: 677, Number: f.matchday}, nil
}

func (f *fakeSchedule) GetCurrentMatchday(context.Context) (int, error) {
	return f.matchday, f.err
}

type HandlersTestSuite struct {
	suite.Suite
	db       *database.DB
	router   *gin.Engine
	pools    *fakePools
	schedule *fakeSchedule
	store    *roster.Store
}

func testPlayers() []models.Player {
	var players []models.Player
	add := func(id int, pos models.Position, team string, price, avg float64) *models.Player {
		players = append(players, models.Player{
			ID:                 id,
			Name:               fmt.Sprintf("Player %d", id),
			Position:           pos,
			Team:               models.Team{Name: team, Abbreviation: team},
			Price:              price,
			AveragePoints:      avg,
			PlayingProbability: 1,
			Status:             models.StatusAvailable,
		})
		return &players[len(players)-1]
	}

	for i := 0; i < 3; i++ {
		add(1+i, models.PositionCenter, fmt.Sprintf("C%d", i+1), 10, float64(20-2*i))
	}
	for i := 0; i < 5; i++ {
		add(11+i, models.PositionForward, fmt.Sprintf("F%d", i+1), 8, float64(15-i))
	}
	for i := 0; i < 5; i++ {
		p := add(21+i, models.PositionGuard, fmt.Sprintf("G%d", i+1), 8, float64(14-i))
		p.IsHotStreak = i == 0
	}
	injured := add(31, models.PositionForward, "F9", 12, 30)
	injured.IsInjured = true
	injured.Status = models.StatusOut
	add(40, models.PositionHeadCoach, "K1", 3, 0)
	return players
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := database.NewConnection("sqlite", ":memory:", false)
	s.Require().NoError(err)
	s.Require().NoError(db.Migrate(&models.SelectionRecord{}))
	s.db = db

	cfg := &config.Config{
		DefaultBudget:   100,
		MinBudget:       90,
		MaxBudget:       110,
		TeamPlayerLimit: 3,
		UpgradeEpsilon:  0.5,
	}

	s.pools = &fakePools{pool: models.NewPlayerPool(12, testPlayers())}
	s.schedule = &fakeSchedule{matchday: 12}
	s.store = roster.NewStore(roster.Settings{
		DefaultBudget: cfg.DefaultBudget,
		MinBudget:     cfg.MinBudget,
		MaxBudget:     cfg.MaxBudget,
		Quotas:        models.DefaultPositionQuotas(),
		TeamCap:       cfg.TeamPlayerLimit,
	}, roster.NewGormSelectionRepository(db), logger)

	s.router = gin.New()
	api.SetupRoutes(s.router.Group("/api/v1"), db, services.NewCacheService(nil), s.pools, s.schedule, s.store, cfg, logger)
}

func (s *HandlersTestSuite) TearDownTest() {
	s.db.Close()
}

func (s *HandlersTestSuite) do(method, path string, body interface{}) (int, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func ids(items interface{}) []int {
	var out []int
	for _, item := range items.([]interface{}) {
		out = append(out, int(item.(map[string]interface{})["id"].(float64)))
	}
	return out
}

func data(body map[string]interface{}) map[string]interface{} {
	return body["data"].(map[string]interface{})
}

func (s *HandlersTestSuite) TestHealth() {
	code, body := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, code)
	s.Equal("ok", body["status"])
	checks := body["checks"].(map[string]interface{})
	s.Equal("ok", checks["database"])
	s.Equal("disabled", checks["cache"])
}

func (s *HandlersTestSuite) TestListPlayers() {
	code, body := s.do(http.MethodGet, "/players", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(15.0, body["meta"].(map[string]interface{})["total"])
	s.Equal(31, ids(body["data"])[0], "most expensive first by default")

	_, body = s.do(http.MethodGet, "/players?position=Guard&only_hot_streak=true", nil)
	s.Equal([]int{21}, ids(body["data"]))

	_, body = s.do(http.MethodGet, "/players?only_available=true&sort=avg_pts", nil)
	got := ids(body["data"])
	s.Len(got, 14)
	s.NotContains(got, 31)
	s.Equal(40, got[0], "coach has the lowest average")

	code, _ = s.do(http.MethodGet, "/players?sort=salary", nil)
	s.Equal(http.StatusBadRequest, code)
	code, _ = s.do(http.MethodGet, "/players?only_available=maybe", nil)
	s.Equal(http.StatusBadRequest, code)
}

func (s *HandlersTestSuite) TestListPlayersUsesSavedFilters() {
	code, _ := s.do(http.MethodPut, "/roster/filters", map[string]interface{}{"position": "Center", "sort": "avg_pts"})
	s.Require().Equal(http.StatusOK, code)

	_, body := s.do(http.MethodGet, "/players", nil)
	s.Equal([]int{3, 2, 1}, ids(body["data"]))
}

func (s *HandlersTestSuite) TestAlternatives() {
	code, body := s.do(http.MethodGet, "/players/11/alternatives", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal([]int{12, 13, 14, 15}, ids(data(body)["alternatives"]))

	code, _ = s.do(http.MethodGet, "/players/999/alternatives", nil)
	s.Equal(http.StatusNotFound, code)
	code, _ = s.do(http.MethodGet, "/players/abc/alternatives", nil)
	s.Equal(http.StatusBadRequest, code)
}

func (s *HandlersTestSuite) TestOptimize() {
	code, body := s.do(http.MethodGet, "/optimize", nil)
	s.Require().Equal(http.StatusOK, code)

	team := body["team"].(map[string]interface{})
	s.Len(team["players"], 10)
	s.Equal(40.0, team["coach"].(map[string]interface{})["id"])
	s.Equal(87.0, team["totalCredits"])
	s.Equal(13.0, team["remainingCredits"])
	s.NotContains(ids(team["players"]), 31)
}

func (s *HandlersTestSuite) TestOptimizeForMatchday() {
	code, _ := s.do(http.MethodGet, "/optimize?matchday=7&maxCredits=95", nil)
	s.Equal(http.StatusOK, code)
	s.Equal([]int{7}, s.pools.matchdays)
}

func (s *HandlersTestSuite) TestOptimizeFailures() {
	code, body := s.do(http.MethodGet, "/optimize?maxCredits=50", nil)
	s.Equal(http.StatusInternalServerError, code)
	s.Equal("Error optimizing team", body["error"])
	s.NotEmpty(body["details"])

	code, _ = s.do(http.MethodGet, "/optimize?matchday=abc", nil)
	s.Equal(http.StatusInternalServerError, code)

	s.pools.err = errors.New("upstream down")
	code, body = s.do(http.MethodGet, "/optimize", nil)
	s.Equal(http.StatusInternalServerError, code)
	s.Equal("upstream down", body["details"])
}

func (s *HandlersTestSuite) TestCurrentMatchdayAndSchedule() {
	code, body := s.do(http.MethodGet, "/currentMatchday", nil)
	s.Equal(http.StatusOK, code)
	s.Equal(12.0, body["matchday"])

	code, body = s.do(http.MethodGet, "/schedule", nil)
	s.Equal(http.StatusOK, code)
	s.Equal(677.0, data(body)["id"])

	s.schedule.err = errors.New("schedule down")
	code, body = s.do(http.MethodGet, "/currentMatchday", nil)
	s.Equal(http.StatusInternalServerError, code)
	s.Equal("Error getting current matchday", body["error"])
	s.Equal("schedule down", body["details"])

	code, _ = s.do(http.MethodGet, "/schedule", nil)
	s.Equal(http.StatusBadGateway, code)
}

func (s *HandlersTestSuite) TestGenerateAndApply() {
	code, body := s.do(http.MethodPost, "/generate", map[string]interface{}{"apply": true})
	s.Require().Equal(http.StatusOK, code)
	result := data(body)
	s.Equal(true, result["is_complete"])
	s.Equal(true, result["applied"])
	s.NotEmpty(result["optimization_id"])

	_, body = s.do(http.MethodGet, "/roster", nil)
	selection := data(body)
	s.Len(selection["players"], 11)
	s.Equal(13.0, selection["remaining_budget"])
}

func (s *HandlersTestSuite) TestGenerateWithoutBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
	s.Empty(s.store.Snapshot().Players, "generation alone does not touch the roster")
}

func (s *HandlersTestSuite) TestGenerateValidation() {
	code, _ := s.do(http.MethodPost, "/generate", map[string]interface{}{"budget": 200})
	s.Equal(http.StatusBadRequest, code)

	code, body := s.do(http.MethodPost, "/generate", map[string]interface{}{"quotas": map[string]int{"Wing": 3}})
	s.Equal(http.StatusBadRequest, code)
	s.Contains(body["error"].(map[string]interface{})["details"], "unknown position")

	code, body = s.do(http.MethodPost, "/generate", map[string]interface{}{"quotas": map[string]int{"c": 1, "center": 2}})
	s.Equal(http.StatusBadRequest, code)
	s.Contains(body["error"].(map[string]interface{})["details"], "more than once")

	code, _ = s.do(http.MethodPost, "/generate", map[string]interface{}{"team_cap": 0})
	s.Equal(http.StatusBadRequest, code)
}

func (s *HandlersTestSuite) TestGenerateIncompleteIsNotApplied() {
	code, body := s.do(http.MethodPost, "/generate", map[string]interface{}{
		"apply":  true,
		"quotas": map[string]int{"Center": 5},
	})
	s.Require().Equal(http.StatusOK, code)
	result := data(body)
	s.Equal(false, result["is_complete"])
	s.Equal(false, result["applied"])
	s.Contains(result["reason"], "Center")
}

func (s *HandlersTestSuite) TestToggle() {
	for _, id := range []int{11, 12, 13, 14} {
		code, body := s.do(http.MethodPost, fmt.Sprintf("/roster/toggle/%d", id), nil)
		s.Require().Equal(http.StatusOK, code)
		s.Equal(true, data(body)["selected"])
	}

	code, body := s.do(http.MethodPost, "/roster/toggle/15", nil)
	s.Equal(http.StatusConflict, code)
	s.Equal("PositionQuota", body["kind"])
	s.Equal("Maximum 4 Forward(s) allowed", body["message"])
	s.Equal("POSITION_QUOTA_EXCEEDED", body["error"].(map[string]interface{})["code"])

	code, body = s.do(http.MethodPost, "/roster/toggle/999", nil)
	s.Equal(http.StatusNotFound, code)
	s.Equal("NotFound", body["kind"])

	code, body = s.do(http.MethodPost, "/roster/toggle/11", nil)
	s.Equal(http.StatusOK, code)
	s.Equal(false, data(body)["selected"])
}

func (s *HandlersTestSuite) TestToggleRemovesWhilePoolDown() {
	code, _ := s.do(http.MethodPost, "/roster/toggle/1", nil)
	s.Require().Equal(http.StatusOK, code)

	s.pools.err = errors.New("upstream down")
	code, _ = s.do(http.MethodPost, "/roster/toggle/2", nil)
	s.Equal(http.StatusBadGateway, code)

	code, body := s.do(http.MethodPost, "/roster/toggle/1", nil)
	s.Equal(http.StatusOK, code)
	s.Equal(false, data(body)["selected"])
}

func (s *HandlersTestSuite) TestRemovePlayer() {
	code, _ := s.do(http.MethodPost, "/roster/toggle/1", nil)
	s.Require().Equal(http.StatusOK, code)

	code, body := s.do(http.MethodDelete, "/roster/players/1", nil)
	s.Equal(http.StatusOK, code)
	s.Empty(data(body)["players"])

	code, _ = s.do(http.MethodDelete, "/roster/players/1", nil)
	s.Equal(http.StatusNotFound, code)
}

func (s *HandlersTestSuite) TestBudgetPreferencesClearReset() {
	code, _ := s.do(http.MethodPut, "/roster/budget", map[string]interface{}{"budget": 80})
	s.Equal(http.StatusBadRequest, code)

	code, body := s.do(http.MethodPut, "/roster/budget", map[string]interface{}{"budget": 95})
	s.Require().Equal(http.StatusOK, code)
	s.Equal(95.0, data(body)["budget"])

	code, body = s.do(http.MethodPut, "/roster/preferences", map[string]interface{}{"balance_teams": true})
	s.Require().Equal(http.StatusOK, code)
	s.Equal(true, data(body)["preferences"].(map[string]interface{})["balance_teams"])

	code, _ = s.do(http.MethodPut, "/roster/filters", map[string]interface{}{"sort": "salary"})
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/roster/toggle/1", nil)
	s.Require().Equal(http.StatusOK, code)

	code, body = s.do(http.MethodDelete, "/roster", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Empty(data(body)["players"])
	s.Equal(95.0, data(body)["budget"])

	code, body = s.do(http.MethodPost, "/roster/reset", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(100.0, data(body)["budget"])
	s.Equal(false, data(body)["preferences"].(map[string]interface{})["balance_teams"])
}

func (s *HandlersTestSuite) TestPoolUnavailable() {
	s.pools.err = errors.New("upstream down")
	code, body := s.do(http.MethodGet, "/players", nil)
	s.Equal(http.StatusBadGateway, code)
	s.Equal("UPSTREAM_ERROR", body["error"].(map[string]interface{})["code"])
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
