package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxTurns != 500 {
		t.Errorf("MaxTurns = %d, want 500", cfg.MaxTurns)
	}
	if cfg.OpenRouter.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("BaseURL = %s", cfg.OpenRouter.BaseURL)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	os.Clearenv()
	os.Setenv("RUN_SEED", "123")
	os.Setenv("OPENROUTER_API_KEY", "sk-test")
	defer os.Clearenv()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Seed != 123 {
		t.Errorf("Seed = %d, want 123", cfg.Seed)
	}
	if cfg.OpenRouter.APIKey != "sk-test" {
		t.Errorf("APIKey = %s, want sk-test", cfg.OpenRouter.APIKey)
	}
}
