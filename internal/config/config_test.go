package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.BotProvider != "llm" {
		t.Errorf("BotProvider = %q, want llm", cfg.BotProvider)
	}
	if cfg.BotTimeout != 10*time.Second {
		t.Errorf("BotTimeout = %s, want 10s", cfg.BotTimeout)
	}
	if cfg.DefaultDuration != 8*time.Minute {
		t.Errorf("DefaultDuration = %s, want 8m", cfg.DefaultDuration)
	}
}

func TestParseOverridesAndValidation(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BOT_PROVIDER", "scripted")
	t.Setenv("BOT_MIN_DELAY", "0s")
	t.Setenv("BOT_MAX_DELAY", "1s")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Port != 9090 || cfg.BotProvider != "scripted" {
		t.Errorf("overrides not applied: %+v", cfg)
	}

	t.Setenv("BOT_PROVIDER", "psychic")
	if _, err := Parse(); err == nil {
		t.Error("unknown provider accepted")
	}

	t.Setenv("BOT_PROVIDER", "scripted")
	t.Setenv("BOT_MAX_DELAY", "0s")
	t.Setenv("BOT_MIN_DELAY", "2s")
	if _, err := Parse(); err == nil {
		t.Error("max delay below min delay accepted")
	}
}
