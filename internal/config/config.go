package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full environment surface of the server. Values come
// from the process environment; main loads a .env file first in
// development.
type Config struct {
	Port          int    `env:"PORT" envDefault:"8080"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`

	// Bot decision provider. "llm" prompts Anthropic and needs
	// AnthropicAPIKey; without a key the server falls back to
	// "scripted", which runs fully offline with deterministic
	// decisions.
	BotProvider     string        `env:"BOT_PROVIDER" envDefault:"llm"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string        `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-20241022"`
	BotTimeout      time.Duration `env:"BOT_TIMEOUT" envDefault:"10s"`

	// Cosmetic thinking delay applied before each gateway call.
	BotMinDelay time.Duration `env:"BOT_MIN_DELAY" envDefault:"2s"`
	BotMaxDelay time.Duration `env:"BOT_MAX_DELAY" envDefault:"4s"`

	DefaultDuration time.Duration `env:"DEFAULT_DURATION" envDefault:"8m"`

	// Optional NATS mirror for outbound session events. Disabled when
	// empty.
	NATSURL string `env:"NATS_URL"`
}

// Parse loads configuration from the environment.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.BotProvider != "llm" && cfg.BotProvider != "scripted" {
		return Config{}, fmt.Errorf("unknown BOT_PROVIDER %q", cfg.BotProvider)
	}
	if cfg.BotMaxDelay < cfg.BotMinDelay {
		return Config{}, fmt.Errorf("BOT_MAX_DELAY %v below BOT_MIN_DELAY %v", cfg.BotMaxDelay, cfg.BotMinDelay)
	}
	return cfg, nil
}
