package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/innermond/sloper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultValues(t *testing.T) {
	for _, key := range []string{
		"SLOPER_PORT", "SLOPER_DATABASE_URL", "SLOPER_REDIS_URL", "SLOPER_CACHE_TTL",
		"SLOPER_ENVIRONMENT", "SLOPER_RULES", "SLOPER_DEBUG", "SLOPER_MAX_CONCURRENT", "SLOPER_THROTTLE_MS",
	} {
		if v, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			defer os.Setenv(key, v)
		}
	}

	cfg := New()

	assert.Equal(t, "2222", cfg.Port)
	assert.Equal(t, "sloper.db", cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "development", cfg.Environment)
	assert.Empty(t, cfg.RulesPath)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 8, cfg.MaxConcurrent)
	assert.Zero(t, cfg.Throttle)
}

func TestNew_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SLOPER_PORT", "9000")
	t.Setenv("SLOPER_DATABASE_URL", "postgres://u:p@db:5432/sloper")
	t.Setenv("SLOPER_REDIS_URL", "redis://cache:6379")
	t.Setenv("SLOPER_CACHE_TTL", "30")
	t.Setenv("SLOPER_ENVIRONMENT", "production")
	t.Setenv("SLOPER_DEBUG", "")
	t.Setenv("SLOPER_MAX_CONCURRENT", "not_a_number")
	t.Setenv("SLOPER_THROTTLE_MS", "50")

	cfg := New()

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsPostgres())
	assert.Equal(t, "redis://cache:6379", cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.False(t, cfg.IsDevelopment())
	// set, even empty, means on
	assert.True(t, cfg.Debug)
	assert.Equal(t, 8, cfg.MaxConcurrent)
	assert.Equal(t, 50*time.Millisecond, cfg.Throttle)
}

func TestIsPostgres(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"postgres://localhost/sloper", true},
		{"postgresql://localhost/sloper", true},
		{"sloper.db", false},
		{"file:sloper.db?cache=shared", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := &Config{DatabaseURL: tt.url}
			assert.Equal(t, tt.expected, cfg.IsPostgres())
		})
	}
}

func TestLogger(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		cfg := &Config{Environment: env, Debug: true}
		l, err := cfg.Logger()
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(-1), env)
	}
}

func TestRules(t *testing.T) {
	r, err := (&Config{}).Rules()
	require.NoError(t, err)
	assert.Equal(t, sloper.DefaultRules(), r)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("waist_ease: 4\n"), 0o644))
	r, err = (&Config{RulesPath: path}).Rules()
	require.NoError(t, err)
	assert.Equal(t, 4.0, r.WaistEase)
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("TEST_INT", 10))

	t.Setenv("TEST_INVALID_INT", "not_a_number")
	assert.Equal(t, 10, getEnvInt("TEST_INVALID_INT", 10))

	assert.Equal(t, 100, getEnvInt("NON_EXISTING_INT", 100))
}
