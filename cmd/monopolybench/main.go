// Command monopolybench is the benchmark runner's composition root: it
// loads configuration, wires the remote model client, telemetry
// backend, Prometheus metrics, and the run coordinator together, then
// drives one run to completion from the command line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/config"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/coordinator"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/engine"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/llmclient"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/obslog"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/obsmetrics"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/pipeline"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/summary"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/telemetry"
)

func main() {
	envPath := flag.String("env", ".env", "path to a .env file (best-effort; missing file is not an error)")
	maxTurns := flag.Int("max-turns", 0, "override RUN_MAX_TURNS (0 keeps the configured value)")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *maxTurns > 0 {
		cfg.MaxTurns = *maxTurns
	}

	// sessionID correlates every log line from this process invocation,
	// the way the teacher's infrastructure/logging assigns a fresh
	// request id per unit of work; it plays no part in the run's own
	// deterministic run id (computeRunID), which is derived from the
	// seed and player ids alone.
	sessionID := uuid.New().String()
	logger := obslog.New(cfg.Logging)
	zapLog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("build zap logger: %v", err)
	}
	defer zapLog.Sync()
	sugar := zapLog.Sugar()

	if err := os.MkdirAll(cfg.ArtifactDir, 0o755); err != nil {
		logger.WithField("dir", cfg.ArtifactDir).WithField("error", err).Fatal("create artifact dir")
	}

	clientCfg := llmclient.DefaultConfig(cfg.OpenRouter.APIKey)
	clientCfg.BaseURL = cfg.OpenRouter.BaseURL
	clientCfg.Timeout = time.Duration(cfg.OpenRouter.TimeoutSeconds) * time.Second
	clientCfg.Backoff.MaxAttempts = cfg.OpenRouter.MaxRetries
	clientCfg.CircuitBreaker.MaxFailures = cfg.OpenRouter.CircuitThreshold
	clientCfg.RateLimit.RequestsPerSecond = float64(cfg.OpenRouter.RatePerSecond)
	client := llmclient.New(clientCfg)

	telemetryLog, summaryReader, closeTelemetry := mustTelemetry(cfg, logger)
	defer closeTelemetry()

	metrics := obsmetrics.New(nil)

	coord := coordinator.New(client, logger, sugar, telemetryLog)
	coord.SetMetrics(metrics)
	coord.OnRunFinished(func(runID string, sum coordinator.RunSummary) {
		writeFullSummary(cfg.ArtifactDir, sum, summaryReader, logger)
	})

	players, playerConfigs := buildPlayers(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received, stopping run")
		coord.StopRun("signal_received")
		cancel()
	}()

	runID, err := coord.StartRun(coordinator.RunRequest{
		Seed:          cfg.Seed,
		Players:       players,
		PlayerConfigs: playerConfigs,
		MaxTurns:      cfg.MaxTurns,
		StartTSMs:     cfg.StartTSMs,
		TSStepMs:      cfg.TSStepMs,
		ArtifactDir:   cfg.ArtifactDir,
	})
	if err != nil {
		logger.WithField("error", err).Fatal("start run")
	}
	logger.WithField("run_id", runID).WithField("session_id", sessionID).Info("benchmark run started")

	<-ctx.Done()
}

// mustTelemetry picks a Telemetry backend per cfg.Database.DSN: a
// Postgres-backed log when a DSN is configured, otherwise a JSONL log
// under the run's artifact directory. summaryReader is non-nil only
// for the JSONL backend, since Postgres's full history lives in the
// database rather than in process memory.
func mustTelemetry(cfg *config.RunConfig, logger *obslog.Logger) (coordinator.Telemetry, summary.LogReader, func()) {
	if dsn := cfg.Database.DSN; dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		db, err := telemetry.OpenDB(ctx, dsn)
		if err != nil {
			logger.WithField("error", err).Fatal("open telemetry database")
		}
		pg, err := telemetry.NewPostgres(ctx, db)
		if err != nil {
			logger.WithField("error", err).Fatal("apply telemetry migrations")
		}
		pg.OnError(func(err error) {
			logger.WithField("error", err).Error("telemetry write failed")
		})
		return pg, nil, func() { db.Close() }
	}

	dir := filepath.Join(cfg.ArtifactDir, "telemetry")
	jsonlLog, err := telemetry.NewJSONL(dir)
	if err != nil {
		logger.WithField("dir", dir).WithField("error", err).Fatal("open jsonl telemetry log")
	}
	return jsonlLog, jsonlLog, func() {}
}

// writeFullSummary derives the rich summary.Report from reader (when
// available) and writes it alongside the coordinator's minimal
// summary.json. A nil reader (the Postgres backend) leaves report
// derivation to an offline query against the database instead.
func writeFullSummary(artifactDir string, sum coordinator.RunSummary, reader summary.LogReader, logger *obslog.Logger) {
	if reader == nil {
		return
	}
	report := summary.BuildFromReader(sum.RunID, sum.Winner, sum.StopReason, reader)

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.WithField("error", err).Error("marshal full summary")
		return
	}
	path := filepath.Join(artifactDir, "summary_full.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		logger.WithField("path", path).WithField("error", err).Error("write full summary")
		return
	}
	logger.WithField("path", path).Info("wrote full run summary")
}

// buildPlayers turns cfg's flat player id list into engine seats and a
// matching pipeline.PlayerConfig per seat, all sharing one model id
// since the benchmark is configured per-process rather than per-seat.
func buildPlayers(cfg *config.RunConfig) ([]engine.PlayerSpec, map[string]pipeline.PlayerConfig) {
	players := make([]engine.PlayerSpec, len(cfg.PlayerIDs))
	configs := make(map[string]pipeline.PlayerConfig, len(cfg.PlayerIDs))
	for i, id := range cfg.PlayerIDs {
		players[i] = engine.PlayerSpec{ID: id, Name: fmt.Sprintf("Player %d", i+1)}
		configs[id] = pipeline.PlayerConfig{
			ModelID:      cfg.ModelID,
			SystemPrompt: defaultSystemPrompt,
		}
	}
	return players, configs
}

const defaultSystemPrompt = `You are playing Monopoly against three other AI agents. ` +
	`On each decision, choose exactly one legal action from the list provided and return it via the ` +
	`supplied tool call. Keep any public message short and keep your private reasoning in the private ` +
	`thought field rather than the public one.`
