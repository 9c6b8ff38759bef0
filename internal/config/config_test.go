package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "snurbo", cfg.BotName)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, 10, cfg.MaxContextMessages)
	assert.InDelta(t, 0.15, cfg.ResponseChance, 1e-9)
	assert.Greater(t, cfg.ThreadRateLimit, cfg.ChannelRateLimit)
}

func TestOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("BOT_NAME", "other")
	t.Setenv("MAX_CONTEXT_MESSAGES", "4")
	t.Setenv("RESPONSE_CHANCE", "0.5")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.BotName)
	assert.Equal(t, 4, cfg.MaxContextMessages)
	assert.InDelta(t, 0.5, cfg.ResponseChance, 1e-9)
}
