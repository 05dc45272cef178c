// Package config loads process configuration the way the teacher's
// pkg/config does: environment variables decoded via envdecode, with
// an optional .env file loaded first via godotenv.
package config

import (
	"fmt"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/obslog"
)

// OpenRouterConfig controls the remote model client.
type OpenRouterConfig struct {
	APIKey           string `env:"OPENROUTER_API_KEY"`
	BaseURL          string `env:"OPENROUTER_BASE_URL,default=https://openrouter.ai/api/v1"`
	TimeoutSeconds   int    `env:"OPENROUTER_TIMEOUT_SECONDS,default=30"`
	MaxRetries       int    `env:"OPENROUTER_MAX_RETRIES,default=2"`
	RatePerSecond    int    `env:"OPENROUTER_RATE_PER_SECOND,default=5"`
	CircuitThreshold int    `env:"OPENROUTER_CIRCUIT_THRESHOLD,default=5"`
}

// DatabaseConfig controls telemetry persistence.
type DatabaseConfig struct {
	DSN string `env:"DATABASE_DSN"`
}

// RunConfig controls one benchmark run.
type RunConfig struct {
	Seed        int64    `env:"RUN_SEED,default=1"`
	PlayerIDs   []string `env:"RUN_PLAYER_IDS,default=p1,p2,p3,p4"`
	ModelID     string   `env:"RUN_MODEL_ID,default=openrouter/auto"`
	MaxTurns    int      `env:"RUN_MAX_TURNS,default=500"`
	StartTSMs   int64    `env:"RUN_START_TS_MS,default=0"`
	TSStepMs    int64    `env:"RUN_TS_STEP_MS,default=10"`
	ArtifactDir string   `env:"RUN_ARTIFACT_DIR,default=./artifacts"`

	Logging     obslog.Config    `env:""`
	OpenRouter  OpenRouterConfig `env:""`
	Database    DatabaseConfig   `env:""`
}

// Load reads a RunConfig from the environment, optionally loading envPath
// (e.g. ".env") first. Missing envPath is not an error — exactly like
// godotenv.Load being best-effort in the teacher's config loader.
func Load(envPath string) (*RunConfig, error) {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	var cfg RunConfig
	if err := envdecode.Decode(&cfg); err != nil {
		// envdecode errors when no tagged fields are present in the
		// environment; treat that as "no overrides" so local/test runs
		// work without exporting every variable.
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	return &cfg, nil
}
