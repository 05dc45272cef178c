package obsmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordDecisionUpdatesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordDecision("BuyOrAuction", 0.5, true, false, "")
	m.RecordDecision("BuyOrAuction", 0.2, false, true, "transport_error")

	require.Equal(t, float64(2), testutil.ToFloat64(m.DecisionsTotal.WithLabelValues("BuyOrAuction")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.RetriesTotal.WithLabelValues("BuyOrAuction")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("BuyOrAuction", "transport_error")))
}

func TestRunAndSubscriberCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordRunStarted()
	m.RecordRunFinished("max_turns_reached")
	m.RecordTurnPlayed()
	m.RecordTurnPlayed()
	m.SetSubscribersConnected(3)
	m.AddSubscriberDrops(2)
	m.AddSubscriberDrops(0)

	require.Equal(t, float64(1), testutil.ToFloat64(m.RunsStartedTotal))
	require.Equal(t, float64(1), testutil.ToFloat64(m.RunsFinishedTotal.WithLabelValues("max_turns_reached")))
	require.Equal(t, float64(2), testutil.ToFloat64(m.TurnsPlayedTotal))
	require.Equal(t, float64(3), testutil.ToFloat64(m.SubscribersConnected))
	require.Equal(t, float64(2), testutil.ToFloat64(m.SubscriberDropsTotal))
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) })
}
