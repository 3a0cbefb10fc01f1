package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/roster-optimizer/internal/api"
	"github.com/jstittsworth/roster-optimizer/internal/api/middleware"
	"github.com/jstittsworth/roster-optimizer/internal/catalog"
	"github.com/jstittsworth/roster-optimizer/internal/models"
	"github.com/jstittsworth/roster-optimizer/internal/providers"
	"github.com/jstittsworth/roster-optimizer/internal/roster"
	"github.com/jstittsworth/roster-optimizer/internal/services"
	"github.com/jstittsworth/roster-optimizer/pkg/config"
	"github.com/jstittsworth/roster-optimizer/pkg/database"
	"github.com/jstittsworth/roster-optimizer/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Selection cache database
	db, err := database.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(&models.SelectionRecord{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis is optional; without it upstream responses are not cached
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.WithError(err).Warn("Redis unreachable, continuing without cache")
			redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}
	cacheService := services.NewCacheService(redisClient)

	breaker := services.NewCircuitBreakerService(cfg.CircuitBreakerThreshold, 60*time.Second, log)
	dunkest := providers.NewDunkestClient(providers.DunkestConfig{
		BaseURL:           cfg.UpstreamAPIURL,
		Token:             cfg.UpstreamAPIToken,
		LeagueID:          cfg.UpstreamLeagueID,
		MatchdayID:        cfg.UpstreamMatchdayID,
		RequestsPerMinute: cfg.UpstreamRateLimit,
		Timeout:           cfg.ExternalAPITimeout,
		CacheTTL:          cfg.PoolCacheExpiration,
	}, breaker, cacheService, log)

	fetchInterval, err := time.ParseDuration(cfg.DataFetchInterval)
	if err != nil || fetchInterval <= 0 {
		log.Warnf("Invalid fetch interval %q, using default 30m", cfg.DataFetchInterval)
		fetchInterval = 30 * time.Minute
	}

	normalizer := catalog.NewNormalizer(cfg.MinPlayingProbability)
	poolFetcher := services.NewPoolFetcher(dunkest, normalizer, log, fetchInterval, 2*cfg.ExternalAPITimeout)
	if err := poolFetcher.Start(!cfg.SkipInitialDataFetch); err != nil {
		log.Errorf("Failed to start pool fetcher: %v", err)
	}
	defer poolFetcher.Stop()

	quotas, err := models.QuotasFromConfig(cfg.PositionQuotas)
	if err != nil {
		log.Fatalf("Invalid position quotas: %v", err)
	}
	store := roster.NewStore(roster.Settings{
		DefaultBudget: cfg.DefaultBudget,
		MinBudget:     cfg.MinBudget,
		MaxBudget:     cfg.MaxBudget,
		Quotas:        quotas,
		TeamCap:       cfg.TeamPlayerLimit,
	}, roster.NewGormSelectionRepository(db), log)
	if err := store.Restore(context.Background()); err != nil {
		log.WithError(err).Warn("Failed to restore saved selection, starting empty")
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorLogger(log))
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Liveness probe outside the versioned API
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, db, cacheService, poolFetcher, dunkest, store, cfg, log)

	for _, route := range router.Routes() {
		log.Debugf("%s %s", route.Method, route.Path)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
