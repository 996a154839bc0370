package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DraftStoreMemory, cfg.DraftStore)
	assert.Equal(t, 10*time.Minute, cfg.DraftTTL)
	assert.Equal(t, 12, cfg.MaxTurns)
	assert.Equal(t, 4000, cfg.MaxTurnChars)
	assert.Empty(t, cfg.NATSURL)
	assert.False(t, cfg.TrustCallerContext)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DRAFT_STORE", "redis")
	t.Setenv("DRAFT_TTL", "2m")
	t.Setenv("MAX_TURNS", "20")
	t.Setenv("TRUST_CALLER_CONTEXT", "true")
	t.Setenv("RATE_LIMIT_REQUESTS", "not-a-number")

	cfg := Load()

	assert.Equal(t, DraftStoreRedis, cfg.DraftStore)
	assert.Equal(t, 2*time.Minute, cfg.DraftTTL)
	assert.Equal(t, 20, cfg.MaxTurns)
	assert.True(t, cfg.TrustCallerContext)
	assert.Equal(t, 30, cfg.RateLimitRequests)
}
