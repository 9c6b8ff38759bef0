package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings. Read once at startup, immutable after.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	BotName      string `env:"BOT_NAME" envDefault:"snurbo"`

	OllamaURL    string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	DefaultModel string `env:"OLLAMA_MODEL" envDefault:"llama3.2"`

	MaxContextMessages int     `env:"MAX_CONTEXT_MESSAGES" envDefault:"10"`
	ResponseChance     float64 `env:"RESPONSE_CHANCE" envDefault:"0.15"`

	// Per-minute caps. Threads get a looser channel cap than regular channels.
	UserRateLimit    int `env:"USER_RATE_LIMIT" envDefault:"8"`
	ChannelRateLimit int `env:"CHANNEL_RATE_LIMIT" envDefault:"15"`
	ThreadRateLimit  int `env:"THREAD_RATE_LIMIT" envDefault:"20"`
}

// New loads .env (if present) and parses the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, using system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.MaxContextMessages <= 0 {
		cfg.MaxContextMessages = 10
	}
	return cfg, nil
}
