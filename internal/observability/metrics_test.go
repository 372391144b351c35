package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Unregistered(t *testing.T) {
	m1 := NewMetricsForTesting()
	m2 := NewMetricsForTesting()

	m1.EventsProcessed.Inc()
	m1.SelectionCache.WithLabelValues("hit").Inc()
	m1.SinkWrites.WithLabelValues("file", "success").Add(2)

	assert.InDelta(t, 1, testutil.ToFloat64(m1.EventsProcessed), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m2.EventsProcessed), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m1.SinkWrites.WithLabelValues("file", "success")), 0)
}

func TestMetrics_RegisterOnFreshRegistry(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()

	require.NoError(t, reg.Register(m.EventsProcessed))
	require.NoError(t, reg.Register(m.EventErrors))
	require.NoError(t, reg.Register(m.StationsSelected))

	m.EventErrors.WithLabelValues("no_arrivals").Inc()
	count, err := testutil.GatherAndCount(reg, "iloc_etl_event_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
