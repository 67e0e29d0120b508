package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PG_HOST", "localhost")
	t.Setenv("PG_USER", "app")
	t.Setenv("PG_PASSWORD", "secret")
	t.Setenv("PG_DATABASE", "review")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Leaderboard.CacheTTL)
	assert.Equal(t, 15*time.Second, cfg.Leaderboard.RefreshInterval)
	assert.Equal(t, 5, cfg.Quiz.RankedDailyLimit)
}

func TestLoadRefreshIntervalIndependentOfCacheTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LEADERBOARD_CACHE_TTL", "2m")
	t.Setenv("LEADERBOARD_REFRESH_INTERVAL", "5s")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Leaderboard.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Leaderboard.RefreshInterval)
}
