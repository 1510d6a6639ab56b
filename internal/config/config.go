// Package config reads the settings of the sloper services from the
// environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/innermond/sloper"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Config holds all configuration for the API and the CLI.
type Config struct {
	// Server configuration
	Port string

	// Profile store. A postgres:// URL selects PostgreSQL, anything else is
	// a SQLite file.
	DatabaseURL string

	// Render cache; empty disables caching
	RedisURL string
	CacheTTL time.Duration

	Environment string

	// YAML file of drafting rule overrides
	RulesPath string

	// Debug keeps stack traces on errors and turns on debug logs.
	Debug bool

	// MaxConcurrent bounds the drafts served at once.
	MaxConcurrent int

	// Throttle spaces api requests; zero leaves them unthrottled.
	Throttle time.Duration
}

// New creates a new Config with values from environment variables or defaults.
func New() *Config {
	_, debug := os.LookupEnv("SLOPER_DEBUG")
	return &Config{
		Port:          getEnv("SLOPER_PORT", "2222"),
		DatabaseURL:   getEnv("SLOPER_DATABASE_URL", "sloper.db"),
		RedisURL:      getEnv("SLOPER_REDIS_URL", ""),
		CacheTTL:      time.Duration(getEnvInt("SLOPER_CACHE_TTL", 600)) * time.Second,
		Environment:   getEnv("SLOPER_ENVIRONMENT", "development"),
		RulesPath:     getEnv("SLOPER_RULES", ""),
		Debug:         debug,
		MaxConcurrent: getEnvInt("SLOPER_MAX_CONCURRENT", 8),
		Throttle:      time.Duration(getEnvInt("SLOPER_THROTTLE_MS", 0)) * time.Millisecond,
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsPostgres reports whether profiles live in PostgreSQL.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// Logger builds a development logger in development and a production one
// otherwise. Debug lowers the level of either to debug.
func (c *Config) Logger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.IsDevelopment() {
		zc = zap.NewDevelopmentConfig()
	}
	if c.Debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := zc.Build()
	return l, errors.Wrap(err, "build logger")
}

// Rules loads the rule overrides, or returns the defaults when none are
// configured.
func (c *Config) Rules() (sloper.Rules, error) {
	if c.RulesPath == "" {
		return sloper.DefaultRules(), nil
	}
	return sloper.LoadRules(c.RulesPath)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
