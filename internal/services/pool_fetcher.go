package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/roster-optimizer/internal/models"
)

var ErrPoolUnavailable = errors.New("player pool unavailable")

// PlayerSource supplies raw upstream player records.
type PlayerSource interface {
	GetPlayers(ctx context.Context, currentMatchday int) ([]models.RawPlayer, error)
	GetCurrentMatchday(ctx context.Context) (int, error)
}

// Normalizer turns raw records into players.
type Normalizer interface {
	NormalizeAll(raws []models.RawPlayer) []models.Player
}

// PoolFetcher keeps the latest player pool snapshot, refreshing it on a
// schedule and on demand. A failed refresh keeps the previous snapshot.
type PoolFetcher struct {
	source        PlayerSource
	normalizer    Normalizer
	logger        *logrus.Logger
	cron          *cron.Cron
	fetchInterval time.Duration
	timeout       time.Duration

	mu          sync.RWMutex
	pool        *models.PlayerPool
	lastFetch   time.Time
	lastErr     error
	isRunning   bool
	refreshLock sync.Mutex
}

func NewPoolFetcher(source PlayerSource, normalizer Normalizer, logger *logrus.Logger, fetchInterval, timeout time.Duration) *PoolFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PoolFetcher{
		source:        source,
		normalizer:    normalizer,
		logger:        logger,
		cron:          cron.New(),
		fetchInterval: fetchInterval,
		timeout:       timeout,
	}
}

// Start schedules periodic refreshes. When initialFetch is set a refresh
// runs immediately in the background.
func (f *PoolFetcher) Start(initialFetch bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.isRunning {
		return fmt.Errorf("pool fetcher is already running")
	}

	schedule := fmt.Sprintf("@every %s", f.fetchInterval.String())
	if _, err := f.cron.AddFunc(schedule, f.scheduledRefresh); err != nil {
		return fmt.Errorf("failed to schedule pool fetcher: %w", err)
	}

	f.cron.Start()
	f.isRunning = true

	if initialFetch {
		go f.scheduledRefresh()
	}

	f.logger.WithField("interval", f.fetchInterval.String()).Info("Pool fetcher service started")
	return nil
}

// Stop halts the scheduled refreshes and waits for a running one to finish.
func (f *PoolFetcher) Stop() {
	f.mu.Lock()
	if !f.isRunning {
		f.mu.Unlock()
		return
	}
	f.isRunning = false
	f.mu.Unlock()

	// a running refresh needs f.mu to publish its snapshot
	ctx := f.cron.Stop()
	<-ctx.Done()

	f.logger.Info("Pool fetcher service stopped")
}

func (f *PoolFetcher) scheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if _, err := f.Refresh(ctx); err != nil {
		f.logger.WithError(err).Warn("Scheduled pool refresh failed")
	}
}

// Refresh fetches the current matchday and its players and swaps in a new
// snapshot. Concurrent callers are serialized.
func (f *PoolFetcher) Refresh(ctx context.Context) (*models.PlayerPool, error) {
	f.refreshLock.Lock()
	defer f.refreshLock.Unlock()

	matchday, err := f.source.GetCurrentMatchday(ctx)
	if err != nil {
		f.logger.WithError(err).Warn("Current matchday unavailable, fetching without it")
		matchday = 0
	}

	pool, err := f.fetch(ctx, matchday)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastErr = err
	if err != nil {
		return nil, err
	}
	f.pool = pool
	f.lastFetch = time.Now().UTC()

	f.logger.WithFields(logrus.Fields{
		"component": "pool_fetcher",
		"matchday":  matchday,
		"players":   pool.Len(),
	}).Info("Player pool refreshed")
	return pool, nil
}

// ForMatchday fetches a pool for a specific matchday without replacing the
// shared snapshot.
func (f *PoolFetcher) ForMatchday(ctx context.Context, matchday int) (*models.PlayerPool, error) {
	return f.fetch(ctx, matchday)
}

// Pool returns the current snapshot, fetching one if none exists yet.
func (f *PoolFetcher) Pool(ctx context.Context) (*models.PlayerPool, error) {
	f.mu.RLock()
	pool := f.pool
	f.mu.RUnlock()

	if pool != nil {
		return pool, nil
	}
	return f.Refresh(ctx)
}

func (f *PoolFetcher) fetch(ctx context.Context, matchday int) (*models.PlayerPool, error) {
	raws, err := f.source.GetPlayers(ctx, matchday)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoolUnavailable, err)
	}
	return models.NewPlayerPool(matchday, f.normalizer.NormalizeAll(raws)), nil
}

// GetFetchStatus returns the current status of the fetcher
func (f *PoolFetcher) GetFetchStatus() map[string]interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries := f.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}

	status := map[string]interface{}{
		"is_running":     f.isRunning,
		"fetch_interval": f.fetchInterval.String(),
		"next_runs":      nextRuns,
		"pool_size":      f.pool.Len(),
	}
	if !f.lastFetch.IsZero() {
		status["last_fetch"] = f.lastFetch
	}
	if f.pool != nil {
		status["matchday"] = f.pool.Matchday
	}
	if f.lastErr != nil {
		status["last_error"] = f.lastErr.Error()
	}
	return status
}
