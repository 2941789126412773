package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.Transitions.WithLabelValues("trade.completed").Inc()
	assert.Equal(t, float64(1), counterValue(t, m.Transitions.WithLabelValues("trade.completed")))

	_, err = New(reg)
	assert.Error(t, err, "duplicate registration must fail")
}

func TestObserveSweep(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveSweep("ok", 3, 1, 0)
	m.ObserveSweep("ok", 2, 0, 1)

	assert.Equal(t, float64(2), counterValue(t, m.SweepRuns.WithLabelValues("ok")))
	assert.Equal(t, float64(5), counterValue(t, m.SweepTrades.WithLabelValues("finalized")))
	assert.Equal(t, float64(1), counterValue(t, m.SweepTrades.WithLabelValues("skipped_disputed")))
	assert.Equal(t, float64(1), counterValue(t, m.SweepTrades.WithLabelValues("failed")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveSweep("ok", 1, 1, 1)
	m.ObserveJob("sweep", time.Now())
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, c.Write(&out))
	return out.GetCounter().GetValue()
}
