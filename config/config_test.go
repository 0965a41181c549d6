package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))
	t.Setenv("FRONTEND_URL", "https://coach.example.org/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.org/, ,https://b.example.org")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://coach.example.org", cfg.FrontendURL)
	assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, cfg.AllowedOrigins)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry())
	assert.Equal(t, 15*time.Second, cfg.EmbeddingTimeout())
	assert.Equal(t, 5, cfg.RateLimitLoginThreshold)
	assert.Equal(t, 50, cfg.BotScoreThreshold)
}

func TestLoadConfig_IntFallback(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))
	t.Setenv("SESSION_TTL_MINUTES", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL())
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{JWTSecret: strings.Repeat("s", 32), EmbeddingProvider: "none", SessionTTLMinutes: 60}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.JWTSecret = "short"
	assert.ErrorContains(t, c.Validate(), "JWT_SECRET")

	c = base()
	c.EmbeddingProvider = "openai"
	assert.ErrorContains(t, c.Validate(), "LLM_API_KEY")

	c = base()
	c.EmbeddingProvider = "gemini"
	assert.ErrorContains(t, c.Validate(), "GEMINI_API_KEY")

	c = base()
	c.EmbeddingProvider = "cohere"
	assert.Error(t, c.Validate())

	c = base()
	c.SessionTTLMinutes = 0
	assert.Error(t, c.Validate())
}
