package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry("scheduler", reg)

	m.ObserveOperation("book", "ok")
	m.ObserveOperation("book", "ok")
	m.ObserveOperation("book", "CAPACITY_EXCEEDED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("scheduler", "book", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("scheduler", "book", "CAPACITY_EXCEEDED")))
}

func TestMetrics_HTTPStatusBuckets(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry("scheduler", reg)

	m.ObserveHTTPRequest("GET", "/api/v1/appointments/{appointmentId}", 404, 5*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/v1/appointments/{appointmentId}", 200, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("scheduler", "GET", "/api/v1/appointments/{appointmentId}", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("scheduler", "GET", "/api/v1/appointments/{appointmentId}", "2xx")))
}

func TestMetrics_DBQueryHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry("scheduler", reg)

	m.ObserveDBQuery("query", 3*time.Millisecond)
	m.ObserveDBQuery("query", 300*time.Millisecond)
	m.SetDBConnections("in_use", 4)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}

	hist := byName["db_query_duration_seconds"]
	require.NotNil(t, hist)
	require.Len(t, hist.GetMetric(), 1)
	assert.Equal(t, uint64(2), hist.GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, "service", hist.GetMetric()[0].GetLabel()[1].GetName())

	gauge := byName["db_connections"]
	require.NotNil(t, gauge)
	assert.Equal(t, 4.0, gauge.GetMetric()[0].GetGauge().GetValue())
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveOperation("book", "ok")
		m.ObserveDBQuery("query", time.Millisecond)
		m.ObserveSideEffectFailure("email")
		m.SetDBConnections("idle", 1)
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	})
}
