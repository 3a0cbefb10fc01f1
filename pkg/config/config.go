package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jstittsworth/roster-optimizer/internal/models"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Database ("sqlite" or "postgres")
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`

	// Redis, empty disables the cache
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Upstream fantasy API
	UpstreamAPIURL          string        `mapstructure:"DUNKEST_API_URL"`
	UpstreamAPIToken        string        `mapstructure:"DUNKEST_API_TOKEN"`
	UpstreamLeagueID        int           `mapstructure:"DUNKEST_LEAGUE_ID"`
	UpstreamMatchdayID      int           `mapstructure:"DUNKEST_MATCHDAY_ID"`
	UpstreamRateLimit       int           `mapstructure:"UPSTREAM_RATE_LIMIT"`
	DataFetchInterval       string        `mapstructure:"DATA_FETCH_INTERVAL"`
	PoolCacheExpiration     time.Duration `mapstructure:"POOL_CACHE_EXPIRATION"`
	ExternalAPITimeout      time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`
	SkipInitialDataFetch    bool          `mapstructure:"SKIP_INITIAL_DATA_FETCH"`

	// Roster rules
	DefaultBudget         float64        `mapstructure:"DEFAULT_BUDGET"`
	MinBudget             float64        `mapstructure:"MIN_BUDGET"`
	MaxBudget             float64        `mapstructure:"MAX_BUDGET"`
	TeamPlayerLimit       int            `mapstructure:"TEAM_PLAYER_LIMIT"`
	PositionQuotas        map[string]int `mapstructure:"-"`
	UpgradeEpsilon        float64        `mapstructure:"UPGRADE_EPSILON"`
	MinPlayingProbability float64        `mapstructure:"MIN_PLAYING_PROBABILITY"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_URL", "roster.db")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("DUNKEST_API_URL", "https://fantaking-api.dunkest.com/api/v1")
	viper.SetDefault("DUNKEST_API_TOKEN", "")
	viper.SetDefault("DUNKEST_LEAGUE_ID", 19)
	viper.SetDefault("DUNKEST_MATCHDAY_ID", 677)
	viper.SetDefault("UPSTREAM_RATE_LIMIT", 30) // requests per minute
	viper.SetDefault("DATA_FETCH_INTERVAL", "30m")
	viper.SetDefault("POOL_CACHE_EXPIRATION", "15m")
	viper.SetDefault("EXTERNAL_API_TIMEOUT", "10s")
	viper.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)
	viper.SetDefault("SKIP_INITIAL_DATA_FETCH", false)

	viper.SetDefault("DEFAULT_BUDGET", 100)
	viper.SetDefault("MIN_BUDGET", 90)
	viper.SetDefault("MAX_BUDGET", 110)
	viper.SetDefault("TEAM_PLAYER_LIMIT", 3)
	viper.SetDefault("POSITION_QUOTAS", "Center:2,Forward:4,Guard:4,Head Coach:1")
	viper.SetDefault("UPGRADE_EPSILON", 0.5)
	viper.SetDefault("MIN_PLAYING_PROBABILITY", 0)

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	quotas, err := ParseQuotas(viper.GetString("POSITION_QUOTAS"))
	if err != nil {
		return nil, err
	}
	config.PositionQuotas = quotas

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ParseQuotas reads a "Position:count" comma-separated list.
func ParseQuotas(raw string) (map[string]int, error) {
	quotas := make(map[string]int)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, count, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid position quota %q: expected name:count", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid position quota %q: count must be a non-negative integer", part)
		}
		quotas[strings.TrimSpace(name)] = n
	}
	if len(quotas) == 0 {
		return nil, fmt.Errorf("no position quotas configured")
	}
	return quotas, nil
}

func (c *Config) Validate() error {
	if c.MinBudget <= 0 || c.MaxBudget < c.MinBudget {
		return fmt.Errorf("invalid budget range [%.2f, %.2f]", c.MinBudget, c.MaxBudget)
	}
	if c.DefaultBudget < c.MinBudget || c.DefaultBudget > c.MaxBudget {
		return fmt.Errorf("default budget %.2f outside [%.2f, %.2f]", c.DefaultBudget, c.MinBudget, c.MaxBudget)
	}
	if c.TeamPlayerLimit <= 0 {
		return fmt.Errorf("team player limit must be positive, got %d", c.TeamPlayerLimit)
	}
	if _, err := models.QuotasFromConfig(c.PositionQuotas); err != nil {
		return fmt.Errorf("invalid POSITION_QUOTAS: %w", err)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
