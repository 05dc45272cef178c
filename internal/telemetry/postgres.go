package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/coordinator"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/pipeline"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/telemetry/migrations"
)

// OpenDB establishes a PostgreSQL connection and verifies connectivity
// with a ping, the way the teacher's platform/database.Open does.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Postgres is a Log backed by a PostgreSQL database, for runs that
// need to survive the process and be queried by the summary builder.
type Postgres struct {
	db  *sql.DB
	log func(err error)
}

// NewPostgres applies the telemetry schema and returns a Postgres log.
func NewPostgres(ctx context.Context, db *sql.DB) (*Postgres, error) {
	if err := migrations.Apply(ctx, db); err != nil {
		return nil, err
	}
	return &Postgres{db: db, log: func(error) {}}, nil
}

// OnError installs a callback invoked whenever a persistence write
// fails; Log methods themselves never return an error since the
// runner must not block on telemetry (spec.md §5).
func (p *Postgres) OnError(fn func(err error)) {
	if fn != nil {
		p.log = fn
	}
}

func (p *Postgres) AppendEvents(runID string, events []event.Event) {
	for _, ev := range events {
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			p.log(err)
			continue
		}
		_, err = p.db.Exec(
			`INSERT INTO bench_events (run_id, seq, event_id, turn_index, ts_ms, actor_kind, actor_player_id, type, payload)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (run_id, seq) DO NOTHING`,
			runID, ev.Seq, ev.EventID, ev.TurnIndex, ev.TSMs, string(ev.Actor.Kind), ev.Actor.PlayerID, ev.Type, payload,
		)
		if err != nil {
			p.log(fmt.Errorf("insert event %s: %w", ev.EventID, err))
		}
	}
}

func (p *Postgres) RecordSnapshot(runID string, turnIndex int, reason string, snap model.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		p.log(err)
		return
	}
	if _, err := p.db.Exec(
		`INSERT INTO bench_snapshots (run_id, turn_index, reason, snapshot) VALUES ($1, $2, $3, $4)`,
		runID, turnIndex, reason, payload,
	); err != nil {
		p.log(fmt.Errorf("insert snapshot: %w", err))
	}
}

func (p *Postgres) RecordDecision(runID, decisionID string, outcome pipeline.Outcome, durationMs int64) {
	rec := newDecisionRecord(runID, decisionID, outcome, durationMs)
	if _, err := p.db.Exec(
		`INSERT INTO bench_decisions (run_id, decision_id, action, retry_used, fallback_used, fallback_reason, attempts, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (run_id, decision_id) DO UPDATE SET
		   action = EXCLUDED.action, retry_used = EXCLUDED.retry_used,
		   fallback_used = EXCLUDED.fallback_used, fallback_reason = EXCLUDED.fallback_reason,
		   attempts = EXCLUDED.attempts, duration_ms = EXCLUDED.duration_ms`,
		rec.RunID, rec.DecisionID, rec.Action, rec.RetryUsed, rec.FallbackUsed, rec.FallbackReason, rec.Attempts, rec.DurationMs,
	); err != nil {
		p.log(fmt.Errorf("insert decision %s: %w", decisionID, err))
	}
}

func (p *Postgres) FinishRun(runID string, summary coordinator.RunSummary) {
	if _, err := p.db.Exec(
		`INSERT INTO bench_runs (run_id, turns_played, winner, stop_reason)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id) DO UPDATE SET
		   turns_played = EXCLUDED.turns_played, winner = EXCLUDED.winner, stop_reason = EXCLUDED.stop_reason`,
		runID, summary.TurnsPlayed, summary.Winner, summary.StopReason,
	); err != nil {
		p.log(fmt.Errorf("insert run summary %s: %w", runID, err))
	}
}
