package telemetry

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/coordinator"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/pipeline"
)

func newMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	pg, err := NewPostgres(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	return pg, mock
}

func TestNewPostgresAppliesMigrations(t *testing.T) {
	newMockPostgres(t)
}

func TestAppendEventsInsertsEachEvent(t *testing.T) {
	pg, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO bench_events").
		WithArgs("run-1", 0, "run-1-000000", 2, int64(1000), "PLAYER", "p1", event.TypePropertyPurchased, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	pg.AppendEvents("run-1", []event.Event{
		{
			RunID:     "run-1",
			Seq:       0,
			EventID:   "run-1-000000",
			TurnIndex: 2,
			TSMs:      1000,
			Actor:     event.Actor{Kind: event.ActorPlayer, PlayerID: "p1"},
			Type:      event.TypePropertyPurchased,
			Payload:   map[string]any{"space_key": "boardwalk"},
		},
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSnapshotInserts(t *testing.T) {
	pg, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO bench_snapshots").
		WithArgs("run-1", 3, "TURN_ENDED", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	pg.RecordSnapshot("run-1", 3, "TURN_ENDED", model.Snapshot{RunID: "run-1", TurnIndex: 3})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDecisionUpserts(t *testing.T) {
	pg, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO bench_decisions").
		WithArgs("run-1", "dec-1", "BUY", false, true, "transport_error", 1, int64(120)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	pg.RecordDecision("run-1", "dec-1", pipeline.Outcome{
		Action:         action.Request{Name: "BUY"},
		FallbackUsed:   true,
		FallbackReason: "transport_error",
		Attempts:       []pipeline.AttemptRecord{{Attempt: 1}},
	}, 120)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishRunUpserts(t *testing.T) {
	pg, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO bench_runs").
		WithArgs("run-1", 40, "p1", "max_turns_reached").
		WillReturnResult(sqlmock.NewResult(1, 1))

	pg.FinishRun("run-1", coordinator.RunSummary{
		RunID:       "run-1",
		TurnsPlayed: 40,
		Winner:      "p1",
		StopReason:  "max_turns_reached",
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOnErrorCallbackFiresOnFailure(t *testing.T) {
	pg, mock := newMockPostgres(t)

	var gotErr error
	pg.OnError(func(err error) { gotErr = err })

	mock.ExpectExec("INSERT INTO bench_runs").WillReturnError(require.AnError)

	pg.FinishRun("run-1", coordinator.RunSummary{RunID: "run-1"})

	require.Error(t, gotErr)
}
