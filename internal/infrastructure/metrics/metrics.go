package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cardswap"

// Metrics holds the Prometheus collectors exported by the service.
type Metrics struct {
	Transitions    *prometheus.CounterVec
	FraudFlags     *prometheus.CounterVec
	SweepRuns      *prometheus.CounterVec
	SweepTrades    *prometheus.CounterVec
	JobDuration    *prometheus.HistogramVec
	HTTPRequests   *prometheus.CounterVec
	HTTPLatency    *prometheus.HistogramVec
	NotifyFailures *prometheus.CounterVec
}

// New builds the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Committed state transitions by action.",
		}, []string{"action"}),
		FraudFlags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fraud_flags_total",
			Help:      "Fraud flags raised by type.",
		}, []string{"flag_type"}),
		SweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Auto-finalize sweep runs by result.",
		}, []string{"result"}),
		SweepTrades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_trades_total",
			Help:      "Trades handled by the auto-finalize sweep by outcome.",
		}, []string{"outcome"}),
		JobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Background job duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		NotifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "Notifier delivery failures by sink.",
		}, []string{"sink"}),
	}

	for _, c := range []prometheus.Collector{
		m.Transitions, m.FraudFlags, m.SweepRuns, m.SweepTrades,
		m.JobDuration, m.HTTPRequests, m.HTTPLatency, m.NotifyFailures,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveJob records how long a background job took.
func (m *Metrics) ObserveJob(job string, started time.Time) {
	if m == nil {
		return
	}
	m.JobDuration.WithLabelValues(job).Observe(time.Since(started).Seconds())
}

// ObserveSweep records one sweep run.
func (m *Metrics) ObserveSweep(result string, finalized, skipped, failed int) {
	if m == nil {
		return
	}
	m.SweepRuns.WithLabelValues(result).Inc()
	m.SweepTrades.WithLabelValues("finalized").Add(float64(finalized))
	m.SweepTrades.WithLabelValues("skipped_disputed").Add(float64(skipped))
	m.SweepTrades.WithLabelValues("failed").Add(float64(failed))
}
