package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jstittsworth/roster-optimizer/internal/models"
	"github.com/jstittsworth/roster-optimizer/internal/services"
)

// Cache is the subset of the cache service the client needs.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Breaker runs calls behind a circuit breaker.
type Breaker interface {
	Execute(service string, fn func() (interface{}, error)) (interface{}, error)
}

var ErrInvalidResponse = errors.New("invalid upstream response")

type DunkestConfig struct {
	BaseURL           string
	Token             string
	LeagueID          int
	MatchdayID        int
	RequestsPerMinute int
	Timeout           time.Duration
	CacheTTL          time.Duration
}

// DunkestClient reads the fantasy player list and matchday schedule.
type DunkestClient struct {
	httpClient  *http.Client
	config      DunkestConfig
	rateLimiter *rate.Limiter
	breaker     Breaker
	cache       Cache
	logger      *logrus.Logger
}

func NewDunkestClient(config DunkestConfig, breaker Breaker, cache Cache, logger *logrus.Logger) *DunkestClient {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if config.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(config.RequestsPerMinute))
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &DunkestClient{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:      config,
		rateLimiter: rate.NewLimiter(limit, 1),
		breaker:     breaker,
		cache:       cache,
		logger:      logger,
	}
}

// GetPlayers fetches the raw player list. currentMatchday is forwarded to
// the upstream when positive.
func (c *DunkestClient) GetPlayers(ctx context.Context, currentMatchday int) ([]models.RawPlayer, error) {
	cacheKey := services.PlayersCacheKey(c.config.LeagueID, c.config.MatchdayID, currentMatchday)
	var cached []models.RawPlayer
	if c.cache != nil && c.cache.Get(ctx, cacheKey, &cached) == nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("per_page", "-1")
	params.Set("page", "1")
	params.Set("sort_by", "quotation")
	params.Set("sort_order", "desc")
	if currentMatchday > 0 {
		params.Set("current_matchday", strconv.Itoa(currentMatchday))
	}
	endpoint := fmt.Sprintf("%s/players-lists/%d/matchdays/%d/players?%s",
		c.config.BaseURL, c.config.LeagueID, c.config.MatchdayID, params.Encode())

	var resp models.PlayersResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch players: %w", err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("failed to fetch players: %w: missing data", ErrInvalidResponse)
	}

	c.logger.WithFields(logrus.Fields{
		"component":        "dunkest_client",
		"players":          len(resp.Data),
		"current_matchday": currentMatchday,
	}).Info("Fetched player list")

	c.store(ctx, cacheKey, resp.Data)
	return resp.Data, nil
}

// GetSchedule fetches the configured matchday schedule.
func (c *DunkestClient) GetSchedule(ctx context.Context) (*models.Matchday, error) {
	cacheKey := services.ScheduleCacheKey(c.config.LeagueID, c.config.MatchdayID)
	var cached models.Matchday
	if c.cache != nil && c.cache.Get(ctx, cacheKey, &cached) == nil {
		return &cached, nil
	}

	endpoint := fmt.Sprintf("%s/schedules/%d/matchdays/%d", c.config.BaseURL, c.config.LeagueID, c.config.MatchdayID)

	var resp models.ScheduleResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w: missing data", ErrInvalidResponse)
	}

	c.store(ctx, cacheKey, resp.Data)
	return resp.Data, nil
}

// GetCurrentMatchday returns the matchday number of the configured schedule.
func (c *DunkestClient) GetCurrentMatchday(ctx context.Context) (int, error) {
	schedule, err := c.GetSchedule(ctx)
	if err != nil {
		return 0, err
	}
	if schedule.Number <= 0 {
		return 0, fmt.Errorf("%w: schedule has no matchday number", ErrInvalidResponse)
	}
	return schedule.Number, nil
}

func (c *DunkestClient) store(ctx context.Context, key string, value interface{}) {
	if c.cache == nil || c.config.CacheTTL <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, value, c.config.CacheTTL); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to cache upstream response")
	}
}

func (c *DunkestClient) get(ctx context.Context, endpoint string, dest interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	call := func() (interface{}, error) {
		return c.doGet(ctx, endpoint)
	}

	var (
		body interface{}
		err  error
	)
	if c.breaker != nil {
		body, err = c.breaker.Execute(services.ServiceDunkest, call)
	} else {
		body, err = call()
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body.([]byte), dest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func (c *DunkestClient) doGet(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://fantasy.dunkest.com")
	req.Header.Set("Referer", "https://fantasy.dunkest.com/")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"component": "dunkest_client",
		"url":       endpoint,
		"status":    resp.StatusCode,
		"latency":   time.Since(start),
	}).Debug("Upstream request completed")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	return body, nil
}
